package litescan

import (
	"strings"

	"github.com/xwb1989/sqlparser"
)

// ObjectType distinguishes the kinds of schema object page 1 can describe.
// Only Table and Index are queryable; View and Trigger are recorded for
// completeness but excluded from table/index listings.
type ObjectType uint8

const (
	ObjectTable ObjectType = iota
	ObjectIndex
	ObjectView
	ObjectTrigger
)

func parseObjectType(s string) ObjectType {
	switch strings.ToLower(s) {
	case "table":
		return ObjectTable
	case "index":
		return ObjectIndex
	case "view":
		return ObjectView
	case "trigger":
		return ObjectTrigger
	default:
		return ObjectTable
	}
}

// SchemaObject is one row of the sqlite_master catalog: a table, index,
// view, or trigger definition.
type SchemaObject struct {
	Type     ObjectType
	Name     string
	TblName  string
	RootPage int
	SQL      string
}

// Column describes one column of a table, as declared in its CREATE TABLE
// statement.
type Column struct {
	Name     string
	Declared string
	Affinity Affinity
	Index    int
}

// TableSchema is the resolved definition of one user table: its columns,
// root page, and the indexes defined against it.
type TableSchema struct {
	Name     string
	RootPage int
	Columns  []Column
	Indexes  []IndexSchema
}

// IndexSchema is the resolved definition of one index: the table and
// column it covers, and its own root page.
type IndexSchema struct {
	Name     string
	Table    string
	Column   string
	RootPage int
}

func (t *TableSchema) columnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// catalog holds every resolved table and index, bootstrapped once from
// page 1 and cached for the lifetime of the Session.
type catalog struct {
	objects []SchemaObject
	tables  map[string]*TableSchema
}

// loadCatalog reads the sqlite_master table b-tree (always rooted at page
// 1, leaf or interior) and resolves every table and index definition it
// describes.
func loadCatalog(p *pager) (*catalog, error) {
	root, err := p.loadPage(1)
	if err != nil {
		return nil, wrapErr("load_catalog", err, nil)
	}

	objects, err := schemaObjectsFromTableLeaf(p, root)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*TableSchema)
	for _, obj := range objects {
		if obj.Type != ObjectTable {
			continue
		}
		cols, err := parseTableColumns(obj.SQL)
		if err != nil {
			// A table whose DDL this core cannot parse is skipped rather
			// than failing catalog load entirely: callers
			// asking for it by name get ErrUnknownTable.
			continue
		}
		tables[obj.Name] = &TableSchema{Name: obj.Name, RootPage: obj.RootPage, Columns: cols}
	}

	resolveIndexes(objects, tables)

	return &catalog{objects: objects, tables: tables}, nil
}

// resolveIndexes attaches each index object in objects to the TableSchema
// it covers, recovering the indexed column either from the CREATE INDEX
// body or, when sql is empty (an implicit UNIQUE/PRIMARY KEY autoindex),
// from the sqlite_autoindex_<table>_<column> naming convention.
func resolveIndexes(objects []SchemaObject, tables map[string]*TableSchema) {
	for _, obj := range objects {
		if obj.Type != ObjectIndex {
			continue
		}
		tblName := parseIndexTableName(obj.SQL)
		if tblName == "" {
			tblName = obj.TblName
		}

		var column string
		if obj.SQL != "" {
			cols := parseIndexColumns(obj.SQL)
			if len(cols) == 0 {
				continue
			}
			column = cols[0]
		} else {
			name, ok := autoindexColumn(obj.Name, tblName)
			if !ok {
				continue
			}
			column = name
		}

		tbl, ok := tables[tblName]
		if !ok {
			continue
		}
		tbl.Indexes = append(tbl.Indexes, IndexSchema{
			Name: obj.Name, Table: tblName, Column: column, RootPage: obj.RootPage,
		})
	}
}

// autoindexColumn recovers the indexed column for an implicit autoindex
// from its name, which follows the sqlite_autoindex_<table>_<column>
// convention when no CREATE INDEX statement exists to parse.
func autoindexColumn(indexName, tblName string) (string, bool) {
	prefix := "sqlite_autoindex_" + tblName + "_"
	if !strings.HasPrefix(indexName, prefix) {
		return "", false
	}
	suffix := strings.TrimPrefix(indexName, prefix)
	if suffix == "" {
		return "", false
	}
	return suffix, true
}

// schemaObjectsFromTableLeaf walks a possibly-multi-page table b-tree
// rooted at root and decodes each cell's record as a sqlite_master row.
// The traversal mirrors TableTree.Scan but is written out here over raw
// pages.
func schemaObjectsFromTableLeaf(p *pager, pg *page) ([]SchemaObject, error) {
	var out []SchemaObject
	var walk func(pg *page) error
	walk = func(pg *page) error {
		switch pg.Header.Type {
		case pageTypeTableLeaf:
			for _, cell := range pg.TableLeafCells {
				obj, err := schemaObjectFromRecord(cell.Record)
				if err != nil {
					return err
				}
				out = append(out, obj)
			}
			return nil
		case pageTypeTableInterior:
			for _, cell := range pg.TableInteriorCells {
				child, err := p.loadPage(int(cell.LeftChild))
				if err != nil {
					return err
				}
				if err := walk(child); err != nil {
					return err
				}
			}
			rightmost, err := p.loadPage(int(pg.Header.RightMostPointer))
			if err != nil {
				return err
			}
			return walk(rightmost)
		default:
			return wrapErr("schema_objects_from_table_leaf", ErrUnknownPageType, map[string]interface{}{"type": pg.Header.Type})
		}
	}
	if err := walk(pg); err != nil {
		return nil, err
	}
	return out, nil
}

// schemaObjectFromRecord decodes a sqlite_master row: (type, name, tbl_name,
// rootpage, sql). RootPage is read as the record's actual integer value,
// not truncated to a byte, since a database with more than 255 pages is
// common.
func schemaObjectFromRecord(rec *Record) (SchemaObject, error) {
	if rec.NumColumns() < 5 {
		return SchemaObject{}, wrapErr("schema_object_from_record", ErrUnsupportedSchema, map[string]interface{}{"columns": rec.NumColumns()})
	}
	typeVal, err := rec.Column(0)
	if err != nil {
		return SchemaObject{}, err
	}
	nameVal, err := rec.Column(1)
	if err != nil {
		return SchemaObject{}, err
	}
	tblNameVal, err := rec.Column(2)
	if err != nil {
		return SchemaObject{}, err
	}
	rootPageVal, err := rec.Column(3)
	if err != nil {
		return SchemaObject{}, err
	}
	sqlVal, err := rec.Column(4)
	if err != nil {
		return SchemaObject{}, err
	}

	rootPage := 0
	if rootPageVal.Kind == KindInt {
		rootPage = int(rootPageVal.Int)
	}

	return SchemaObject{
		Type:     parseObjectType(typeVal.String()),
		Name:     nameVal.String(),
		TblName:  tblNameVal.String(),
		RootPage: rootPage,
		SQL:      sqlVal.String(),
	}, nil
}

// normalizeSQLiteToMySQL rewrites SQLite-specific DDL syntax so the MySQL-
// dialect sqlparser can parse it: it strips SQLite's double-quoted
// identifiers (sqlparser reserves double quotes for string literals) and
// reorders "PRIMARY KEY AUTOINCREMENT" to the syntax sqlparser expects.
func normalizeSQLiteToMySQL(sql string) string {
	normalized := strings.ReplaceAll(sql, `"`, "")
	normalized = strings.ReplaceAll(normalized, "primary key autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "PRIMARY KEY AUTOINCREMENT", "AUTO_INCREMENT PRIMARY KEY")
	return strings.TrimSpace(normalized)
}

// parseTableColumns extracts the declared columns of a CREATE TABLE
// statement via sqlparser's MySQL-dialect DDL parser.
func parseTableColumns(createSQL string) ([]Column, error) {
	stmt, err := sqlparser.Parse(normalizeSQLiteToMySQL(createSQL))
	if err != nil {
		return nil, wrapErr("parse_table_columns", ErrUnsupportedSchema, map[string]interface{}{"sql": createSQL, "cause": err.Error()})
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return nil, wrapErr("parse_table_columns", ErrUnsupportedSchema, map[string]interface{}{"sql": createSQL})
	}

	cols := make([]Column, len(ddl.TableSpec.Columns))
	for i, c := range ddl.TableSpec.Columns {
		declared := c.Type.Type
		cols[i] = Column{
			Name:     c.Name.String(),
			Declared: declared,
			Affinity: affinityFromType(declared),
			Index:    i,
		}
	}
	return cols, nil
}

// parseIndexColumns extracts the parenthesized column list of a CREATE
// INDEX statement by string inspection, the same approach the wider corpus
// uses for index DDL sqlparser's DDL type does not model directly.
func parseIndexColumns(sql string) []string {
	start := strings.Index(sql, "(")
	end := strings.LastIndex(sql, ")")
	if start == -1 || end == -1 || start >= end {
		return nil
	}
	parts := strings.Split(sql[start+1:end], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols
}

// parseIndexTableName extracts the table name following "ON" in a CREATE
// INDEX statement.
func parseIndexTableName(sql string) string {
	upper := strings.ToUpper(sql)
	onIdx := strings.Index(upper, " ON ")
	if onIdx == -1 {
		return ""
	}
	rest := sql[onIdx+4:]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	name := fields[0]
	if paren := strings.Index(name, "("); paren != -1 {
		name = name[:paren]
	}
	return strings.TrimSpace(name)
}
