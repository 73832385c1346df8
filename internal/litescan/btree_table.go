package litescan

// TableTree is the b-tree rooted at a table's root page, exposing the two
// access patterns needed for table reads: a full ordered scan and a point lookup
// by rowid.
type TableTree struct {
	pager    *pager
	rootPage int
}

func newTableTree(p *pager, rootPage int) *TableTree {
	return &TableTree{pager: p, rootPage: rootPage}
}

// TableRow pairs a rowid with its decoded record.
type TableRow struct {
	Rowid  int64
	Record *Record
}

// Scan visits every row of the table in ascending rowid order, calling fn
// for each. It stops and returns fn's error immediately if fn returns one.
func (t *TableTree) Scan(fn func(TableRow) error) error {
	return t.scanPage(t.rootPage, fn)
}

func (t *TableTree) scanPage(pageNumber int, fn func(TableRow) error) error {
	pg, err := t.pager.loadPage(pageNumber)
	if err != nil {
		return err
	}
	switch pg.Header.Type {
	case pageTypeTableLeaf:
		for _, cell := range pg.TableLeafCells {
			if err := fn(TableRow{Rowid: cell.Rowid, Record: cell.Record}); err != nil {
				return err
			}
		}
		return nil
	case pageTypeTableInterior:
		for _, cell := range pg.TableInteriorCells {
			if err := t.scanPage(int(cell.LeftChild), fn); err != nil {
				return err
			}
		}
		return t.scanPage(int(pg.Header.RightMostPointer), fn)
	default:
		return wrapErr("table_tree_scan", ErrUnknownPageType, map[string]interface{}{"type": pg.Header.Type})
	}
}

// PageInfo describes one page of a table b-tree for diagnostic display:
// its number, type, cell count, and (for interior pages) the page numbers
// of its children in left-to-right order, rightmost pointer last.
type PageInfo struct {
	Number    int
	Type      string
	CellCount int
	Children  []int
}

// WalkPages visits every page of the tree in depth-first, left-to-right
// order, calling fn with each page's nesting depth (root is 0) and
// PageInfo. It stops and returns fn's error immediately if fn returns one.
func (t *TableTree) WalkPages(fn func(depth int, info PageInfo) error) error {
	return t.walkPage(t.rootPage, 0, fn)
}

func (t *TableTree) walkPage(pageNumber, depth int, fn func(int, PageInfo) error) error {
	pg, err := t.pager.loadPage(pageNumber)
	if err != nil {
		return err
	}

	switch pg.Header.Type {
	case pageTypeTableLeaf:
		return fn(depth, PageInfo{
			Number:    pageNumber,
			Type:      "table-leaf",
			CellCount: len(pg.TableLeafCells),
		})
	case pageTypeTableInterior:
		children := make([]int, 0, len(pg.TableInteriorCells)+1)
		for _, cell := range pg.TableInteriorCells {
			children = append(children, int(cell.LeftChild))
		}
		children = append(children, int(pg.Header.RightMostPointer))

		if err := fn(depth, PageInfo{
			Number:    pageNumber,
			Type:      "table-interior",
			CellCount: len(pg.TableInteriorCells),
			Children:  children,
		}); err != nil {
			return err
		}
		for _, child := range children {
			if err := t.walkPage(child, depth+1, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		return wrapErr("table_tree_walk_pages", ErrUnknownPageType, map[string]interface{}{"type": pg.Header.Type})
	}
}

// Get looks up the row with the given rowid by descending the tree,
// returning ErrNotFound if no such row exists.
func (t *TableTree) Get(rowid int64) (*Record, error) {
	return t.getFromPage(t.rootPage, rowid)
}

func (t *TableTree) getFromPage(pageNumber int, rowid int64) (*Record, error) {
	pg, err := t.pager.loadPage(pageNumber)
	if err != nil {
		return nil, err
	}
	switch pg.Header.Type {
	case pageTypeTableLeaf:
		for _, cell := range pg.TableLeafCells {
			if cell.Rowid == rowid {
				return cell.Record, nil
			}
		}
		return nil, wrapErr("table_tree_get", ErrNotFound, map[string]interface{}{"rowid": rowid})
	case pageTypeTableInterior:
		for _, cell := range pg.TableInteriorCells {
			if rowid <= cell.Rowid {
				return t.getFromPage(int(cell.LeftChild), rowid)
			}
		}
		return t.getFromPage(int(pg.Header.RightMostPointer), rowid)
	default:
		return nil, wrapErr("table_tree_get", ErrUnknownPageType, map[string]interface{}{"type": pg.Header.Type})
	}
}
