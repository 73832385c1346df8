package litescan

import (
	"errors"
	"os"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// Session is a read-only handle onto one SQLite database file. It owns the
// pager and the lazily-loaded schema catalog and is the entry point every
// other operation in this package hangs off of.
type Session struct {
	cfg     sessionConfig
	pager   *pager
	header  *databaseHeader
	catalog *catalog
	resMgr  resourceManager
}

// Open opens path, reads and validates its database header, and returns a
// Session ready to answer schema and query requests. It does not eagerly
// read the schema catalog; that happens on first use.
func Open(path string, opts ...Option) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, o := range opts {
		o(&cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr("open", ErrIo, map[string]interface{}{"path": path, "cause": err.Error()})
	}

	var rm resourceManager
	rm.add(f)

	headerBytes := make([]byte, databaseHeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		rm.close()
		return nil, wrapErr("open", ErrTruncated, map[string]interface{}{"path": path})
	}
	header, err := parseDatabaseHeader(headerBytes)
	if err != nil {
		rm.close()
		return nil, err
	}
	if cfg.Validate {
		if !strings.HasPrefix(string(headerBytes), magicPrefix) {
			rm.close()
			return nil, wrapErr("open", ErrUnsupportedSchema, map[string]interface{}{"path": path, "reason": "bad magic"})
		}
		ps := header.actualPageSize()
		if ps < 512 || ps > 65536 || ps&(ps-1) != 0 {
			rm.close()
			return nil, wrapErr("open", ErrUnsupportedSchema, map[string]interface{}{"page_size": ps})
		}
	}

	p := newPager(f, header.actualPageSize(), cfg.PageCacheEnabled)

	return &Session{cfg: cfg, pager: p, header: header, resMgr: rm}, nil
}

// Close releases the underlying file handle.
func (s *Session) Close() error {
	return s.resMgr.close()
}

// PageSize returns the database's resolved page size.
func (s *Session) PageSize() int {
	return s.header.actualPageSize()
}

// Schemas returns every schema object recorded on page 1, loading the
// catalog on first call.
func (s *Session) Schemas() ([]SchemaObject, error) {
	c, err := s.catalogOnce()
	if err != nil {
		return nil, err
	}
	return c.objects, nil
}

// TableNames returns the name of every user table, excluding sqlite_master.
func (s *Session) TableNames() ([]string, error) {
	c, err := s.catalogOnce()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names, nil
}

func (s *Session) catalogOnce() (*catalog, error) {
	if s.catalog != nil {
		return s.catalog, nil
	}
	c, err := loadCatalog(s.pager)
	if err != nil {
		return nil, err
	}
	s.catalog = c
	return c, nil
}

func (s *Session) tableSchema(name string) (*TableSchema, error) {
	c, err := s.catalogOnce()
	if err != nil {
		return nil, err
	}
	tbl, ok := c.tables[name]
	if !ok {
		return nil, wrapErr("table_schema", ErrUnknownTable, map[string]interface{}{"table": name})
	}
	return tbl, nil
}

// TableTree returns the b-tree handle for the named table.
func (s *Session) TableTree(name string) (*TableTree, error) {
	tbl, err := s.tableSchema(name)
	if err != nil {
		return nil, err
	}
	return newTableTree(s.pager, tbl.RootPage), nil
}

// IndexTree returns the b-tree handle for the named column's index on
// table, if one exists.
func (s *Session) IndexTree(table, column string) (*IndexTree, error) {
	tbl, err := s.tableSchema(table)
	if err != nil {
		return nil, err
	}
	for _, idx := range tbl.Indexes {
		if strings.EqualFold(idx.Column, column) {
			return newIndexTree(s.pager, idx.RootPage), nil
		}
	}
	return nil, wrapErr("index_tree", ErrUnsupportedSchema, map[string]interface{}{"table": table, "column": column})
}

// QueryResult is the resolved output of Execute: either a row set with its
// column headers or a scalar COUNT(*) result.
type QueryResult struct {
	Columns []string
	Rows    [][]CellValue
	IsCount bool
	Count   int
}

// Execute parses and runs a single SELECT statement against this session's
// database: SELECT <projection,...> FROM <table> [WHERE <predicate>], or
// SELECT COUNT(*) FROM <table> [WHERE <predicate>].
func (s *Session) Execute(sql string) (*QueryResult, error) {
	pq, err := parseSelect(sql)
	if err != nil {
		return nil, err
	}
	schema, err := s.tableSchema(pq.table)
	if err != nil {
		return nil, err
	}
	tree := newTableTree(s.pager, schema.RootPage)

	if len(pq.projections) == 1 && pq.projections[0].isCount {
		count, err := s.executeCount(tree, schema, pq.where)
		if err != nil {
			return nil, err
		}
		return &QueryResult{IsCount: true, Count: count}, nil
	}

	projections := resolveProjections(pq.projections, schema)
	columns := make([]string, len(projections))
	for i, p := range projections {
		columns[i] = p.column
	}

	rowids, usedIndex, err := s.planRowids(schema, pq.where)
	if err != nil {
		return nil, err
	}

	var rows [][]CellValue
	collect := func(r Row) error {
		if pq.where != nil && !usedIndex {
			ok, err := evaluateWhere(pq.where, r)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		vals := make([]CellValue, len(projections))
		for i, p := range projections {
			v, err := r.Column(p.column)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		rows = append(rows, vals)
		return nil
	}

	if usedIndex {
		for _, id := range rowids {
			rec, err := tree.Get(id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				return nil, err
			}
			if err := collect(Row{Rowid: id, Record: rec, schema: schema}); err != nil {
				return nil, err
			}
		}
	} else {
		if err := tree.Scan(func(tr TableRow) error {
			return collect(Row{Rowid: tr.Rowid, Record: tr.Record, schema: schema})
		}); err != nil {
			return nil, err
		}
	}

	return &QueryResult{Columns: columns, Rows: rows}, nil
}

// planRowids chooses an index-assisted plan when the WHERE clause is a
// single equality predicate on a column that carries a single-column
// index; anything else (no WHERE, AND/OR, inequality, an unindexed
// column) falls back to a sequential scan.
func (s *Session) planRowids(schema *TableSchema, where sqlparser.Expr) ([]int64, bool, error) {
	idx, key, ok := planIndexEquality(where, schema)
	if !ok {
		return nil, false, nil
	}
	tree := newIndexTree(s.pager, idx.RootPage)
	ids, err := tree.RowIds(key)
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// executeCount evaluates SELECT COUNT(*) by sequential scan, applying the
// WHERE predicate per row when present. A leaf-cell-count shortcut would
// only be valid without a WHERE clause, and keeping one code path avoids a
// second counting mechanism that could silently drift from the scanned
// total.
func (s *Session) executeCount(tree *TableTree, schema *TableSchema, where sqlparser.Expr) (int, error) {
	count := 0
	err := tree.Scan(func(tr TableRow) error {
		if where != nil {
			row := Row{Rowid: tr.Rowid, Record: tr.Record, schema: schema}
			ok, err := evaluateWhere(where, row)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
