package litescan

// IndexTree is the b-tree rooted at an index's root page, exposing the
// single access pattern needed for index-assisted lookups: collecting
// every rowid whose indexed column equals a given key.
type IndexTree struct {
	pager    *pager
	rootPage int
}

func newIndexTree(p *pager, rootPage int) *IndexTree {
	return &IndexTree{pager: p, rootPage: rootPage}
}

// RowIds returns every rowid whose indexed column equals key, in
// unspecified order, with duplicates preserved as stored.
func (t *IndexTree) RowIds(key CellValue) ([]int64, error) {
	var out []int64
	err := t.search(t.rootPage, key, &out)
	return out, err
}

func (t *IndexTree) search(pageNumber int, key CellValue, out *[]int64) error {
	pg, err := t.pager.loadPage(pageNumber)
	if err != nil {
		return err
	}
	switch pg.Header.Type {
	case pageTypeIndexLeaf:
		for _, cell := range pg.IndexLeafCells {
			cmp, err := compareSameKind(cell.Key, key)
			if err != nil {
				// Differing kinds never match; keep scanning the rest of
				// the leaf instead of failing the whole search.
				continue
			}
			if cmp == 0 {
				*out = append(*out, cell.Rowid)
			}
		}
		return nil
	case pageTypeIndexInterior:
		// An index interior cell's key is the separator between its left
		// subtree and everything to its right: every key in the left
		// subtree is <= the separator. Because equal keys can spill across
		// more than one child, any subtree whose range may
		// contain key must be descended into; the rightmost pointer is
		// followed only when no separator on the page is > key.
		for _, cell := range pg.IndexInteriorCells {
			cmp, err := compareSameKind(cell.Key, key)
			if err != nil {
				// Type mismatch: still must check this subtree, since the
				// comparison gives no ordering information either way.
				if err := t.search(int(cell.LeftChild), key, out); err != nil {
					return err
				}
				continue
			}
			if cmp >= 0 {
				if err := t.search(int(cell.LeftChild), key, out); err != nil {
					return err
				}
			}
			if cmp == 0 {
				*out = append(*out, cell.Rowid)
			}
			if cmp < 0 {
				continue
			}
			if cmp > 0 {
				// Every key to the right of this separator is strictly
				// greater than key; no further cell in this page (nor the
				// rightmost child) can match.
				return nil
			}
		}
		return t.search(int(pg.Header.RightMostPointer), key, out)
	default:
		return wrapErr("index_tree_search", ErrUnknownPageType, map[string]interface{}{"type": pg.Header.Type})
	}
}
