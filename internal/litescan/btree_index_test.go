package litescan

import "testing"

// memPages backs a pager with an in-memory, page-numbered byte image for
// tests that need to exercise multi-page b-tree traversal without a real
// database file.
type memPages struct {
	pageSize int
	pages    map[int][]byte
}

func (m *memPages) ReadAt(p []byte, off int64) (int, error) {
	pageNum := int(off)/m.pageSize + 1
	page, ok := m.pages[pageNum]
	if !ok {
		page = make([]byte, m.pageSize)
	}
	return copy(p, page), nil
}

func newMemPager(pageSize int) (*pager, *memPages) {
	mp := &memPages{pageSize: pageSize, pages: make(map[int][]byte)}
	return newPager(mp, pageSize, false), mp
}

// buildIndexLeafPage assembles a minimal index-leaf page whose records are
// (key-text, rowid) pairs, encoded as single-byte-varint cells.
func buildIndexLeafPage(pageSize int, entries []struct {
	key   string
	rowid int64
}) []byte {
	page := make([]byte, pageSize)

	var cells [][]byte
	for _, e := range entries {
		serialTypes := []byte{byte(13 + 2*len(e.key)), 1}
		payload := append([]byte(e.key), byte(e.rowid))
		record := buildRecord(serialTypes, payload)
		cell := append([]byte{byte(len(record))}, record...)
		cells = append(cells, cell)
	}

	contentStart := pageSize
	var pointers []int
	for _, c := range cells {
		contentStart -= len(c)
		copy(page[contentStart:], c)
		pointers = append(pointers, contentStart)
	}

	page[0] = byte(pageTypeIndexLeaf)
	page[4] = byte(len(entries))
	page[5] = byte(contentStart >> 8)
	page[6] = byte(contentStart)

	for i, p := range pointers {
		off := 8 + i*2
		page[off] = byte(p >> 8)
		page[off+1] = byte(p)
	}
	return page
}

// buildIndexInteriorPage assembles an index-interior page whose cells are
// (left-child page, separator key, separator rowid) triples, with
// rightMost as the page's final child pointer. A separator cell's
// key/rowid is itself a full index entry, distinct from anything stored
// in a leaf page.
func buildIndexInteriorPage(pageSize int, cells []struct {
	leftChild uint32
	key       string
	rowid     int64
}, rightMost uint32) []byte {
	page := make([]byte, pageSize)

	var rawCells [][]byte
	for _, c := range cells {
		serialTypes := []byte{byte(13 + 2*len(c.key)), 1}
		payload := append([]byte(c.key), byte(c.rowid))
		record := buildRecord(serialTypes, payload)
		cell := []byte{
			byte(c.leftChild >> 24), byte(c.leftChild >> 16), byte(c.leftChild >> 8), byte(c.leftChild),
			byte(len(record)),
		}
		cell = append(cell, record...)
		rawCells = append(rawCells, cell)
	}

	contentStart := pageSize
	var pointers []int
	for _, c := range rawCells {
		contentStart -= len(c)
		copy(page[contentStart:], c)
		pointers = append(pointers, contentStart)
	}

	page[0] = byte(pageTypeIndexInterior)
	page[3] = byte(len(cells) >> 8)
	page[4] = byte(len(cells))
	page[5] = byte(contentStart >> 8)
	page[6] = byte(contentStart)
	page[7] = 0
	page[8] = byte(rightMost >> 24)
	page[9] = byte(rightMost >> 16)
	page[10] = byte(rightMost >> 8)
	page[11] = byte(rightMost)

	for i, p := range pointers {
		off := 12 + i*2
		page[off] = byte(p >> 8)
		page[off+1] = byte(p)
	}
	return page
}

// TestIndexTreeMultiLevel builds a 2-level index tree: root page 5
// (interior) with one separator cell ("bob"/11) pointing at leaf page 2,
// and a rightmost pointer at leaf page 3. It covers a search key equal to
// the interior separator (the match must come from the separator cell
// itself, not a leaf) and a search key that only exists in the rightmost
// child.
func TestIndexTreeMultiLevel(t *testing.T) {
	p, mp := newMemPager(512)

	mp.pages[2] = buildIndexLeafPage(512, []struct {
		key   string
		rowid int64
	}{{key: "ann", rowid: 10}})

	mp.pages[3] = buildIndexLeafPage(512, []struct {
		key   string
		rowid int64
	}{{key: "cap", rowid: 12}, {key: "zeb", rowid: 13}})

	mp.pages[5] = buildIndexInteriorPage(512, []struct {
		leftChild uint32
		key       string
		rowid     int64
	}{
		{leftChild: 2, key: "bob", rowid: 11},
	}, 3)

	tree := newIndexTree(p, 5)

	ids, err := tree.RowIds(textValue("bob"))
	if err != nil {
		t.Fatalf("RowIds(bob) error = %v", err)
	}
	if len(ids) != 1 || ids[0] != 11 {
		t.Errorf("RowIds(bob) = %v, want [11] (the interior separator entry)", ids)
	}

	ids, err = tree.RowIds(textValue("cap"))
	if err != nil {
		t.Fatalf("RowIds(cap) error = %v", err)
	}
	if len(ids) != 1 || ids[0] != 12 {
		t.Errorf("RowIds(cap) = %v, want [12] (found only via the rightmost child)", ids)
	}
}

func TestIndexTreeRowIdsSingleLeaf(t *testing.T) {
	p, mp := newMemPager(512)
	mp.pages[2] = buildIndexLeafPage(512, []struct {
		key   string
		rowid int64
	}{
		{key: "bob", rowid: 1},
		{key: "ann", rowid: 2},
		{key: "bob", rowid: 3},
	})

	tree := newIndexTree(p, 2)
	ids, err := tree.RowIds(textValue("bob"))
	if err != nil {
		t.Fatalf("RowIds() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("RowIds() = %v, want 2 entries for duplicate key", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[1] || !seen[3] {
		t.Errorf("RowIds() = %v, want rowids 1 and 3", ids)
	}
}

func TestIndexTreeRowIdsNoMatch(t *testing.T) {
	p, mp := newMemPager(512)
	mp.pages[2] = buildIndexLeafPage(512, []struct {
		key   string
		rowid int64
	}{
		{key: "ann", rowid: 2},
	})

	tree := newIndexTree(p, 2)
	ids, err := tree.RowIds(textValue("zzz"))
	if err != nil {
		t.Fatalf("RowIds() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("RowIds() = %v, want no matches", ids)
	}
}
