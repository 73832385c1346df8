// Package main is the litescan command-line entry point.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cbrgm/litescan/internal/litescan"
)

// CLI defines the command-line interface using Kong.
var CLI struct {
	DBInfo DBInfoCmd `cmd:"" name:".dbinfo" help:"Print the page size and table count"`
	Tables TablesCmd `cmd:"" name:".tables" help:"List user table names"`
	Schema SchemaCmd `cmd:"" name:".schema" help:"Print the stored CREATE statement for each table"`
	Tree   TreeCmd   `cmd:"" name:".tree" help:"Print a table's b-tree structure"`
	Query  QueryCmd  `cmd:"" name:"query" default:"withargs" help:"Run a SELECT statement"`
}

// DBInfoCmd implements ".dbinfo": the page size and schema object count.
type DBInfoCmd struct {
	Database string `arg:"" help:"Path to the SQLite database file"`
}

func (c *DBInfoCmd) Run() error {
	s, err := litescan.Open(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	schemas, err := s.Schemas()
	if err != nil {
		return err
	}

	fmt.Printf("database page size: %d\n", s.PageSize())
	fmt.Printf("number of tables: %d\n", len(schemas))
	return nil
}

// TablesCmd implements ".tables": the name of every user table.
type TablesCmd struct {
	Database string `arg:"" help:"Path to the SQLite database file"`
}

func (c *TablesCmd) Run() error {
	s, err := litescan.Open(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.TableNames()
	if err != nil {
		return err
	}
	for i, n := range names {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(n)
	}
	fmt.Println()
	return nil
}

// SchemaCmd implements ".schema": the stored CREATE SQL for every table.
type SchemaCmd struct {
	Database string `arg:"" help:"Path to the SQLite database file"`
}

func (c *SchemaCmd) Run() error {
	s, err := litescan.Open(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	schemas, err := s.Schemas()
	if err != nil {
		return err
	}
	for _, obj := range schemas {
		if obj.Type != litescan.ObjectTable {
			continue
		}
		fmt.Println(obj.SQL)
	}
	return nil
}

// TreeCmd implements ".tree": a recursive, indented dump of a table's
// b-tree structure, for interactive inspection only.
type TreeCmd struct {
	Database string `arg:"" help:"Path to the SQLite database file"`
	Table    string `arg:"" help:"Table name"`
}

func (c *TreeCmd) Run() error {
	s, err := litescan.Open(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	tree, err := s.TableTree(c.Table)
	if err != nil {
		return err
	}
	return tree.WalkPages(func(depth int, info litescan.PageInfo) error {
		indent := strings.Repeat("  ", depth)
		if len(info.Children) == 0 {
			fmt.Printf("%spage %d: %s, cells=%d\n", indent, info.Number, info.Type, info.CellCount)
			return nil
		}
		fmt.Printf("%spage %d: %s, cells=%d, children=%v\n", indent, info.Number, info.Type, info.CellCount, info.Children)
		return nil
	})
}

// QueryCmd runs a raw SQL SELECT statement and prints its result.
type QueryCmd struct {
	Database string `arg:"" help:"Path to the SQLite database file"`
	SQL      string `arg:"" help:"SQL statement to execute"`
}

func (c *QueryCmd) Run() error {
	s, err := litescan.Open(c.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Execute(c.SQL)
	if err != nil {
		return err
	}

	if result.IsCount {
		fmt.Println(result.Count)
		return nil
	}

	f := litescan.NewPipeFormatter(os.Stdout)
	for _, row := range result.Rows {
		fmt.Println(f.FormatRow(row))
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("litescan"),
		kong.Description("Read-only SQLite file inspector and query runner"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		log.SetFlags(0)
		log.SetOutput(os.Stderr)
		ctx.FatalIfErrorf(err)
	}
}
