package litescan

import "testing"

// buildTableLeafPage assembles a minimal table-leaf page containing the
// given (rowid, column-value) pairs, each column encoded as a single
// 8-bit integer serial type, padding to pageSize bytes.
func buildTableLeafPage(pageSize int, rows []struct {
	rowid int64
	value byte
}) []byte {
	page := make([]byte, pageSize)

	var cells [][]byte
	for _, r := range rows {
		record := buildRecord([]byte{1}, []byte{r.value})
		cell := []byte{byte(len(record)), byte(r.rowid)}
		cell = append(cell, record...)
		cells = append(cells, cell)
	}

	contentStart := pageSize
	var pointers []int
	for _, c := range cells {
		contentStart -= len(c)
		copy(page[contentStart:], c)
		pointers = append(pointers, contentStart)
	}

	page[0] = byte(pageTypeTableLeaf)
	page[3] = 0
	page[4] = byte(len(rows))
	page[5] = byte(contentStart >> 8)
	page[6] = byte(contentStart)
	page[7] = 0

	for i, p := range pointers {
		off := 8 + i*2
		page[off] = byte(p >> 8)
		page[off+1] = byte(p)
	}

	return page
}

func TestParsePageTableLeaf(t *testing.T) {
	page := buildTableLeafPage(512, []struct {
		rowid int64
		value byte
	}{
		{rowid: 1, value: 10},
		{rowid: 2, value: 20},
	})

	p, err := parsePage(page, 1, 0)
	if err != nil {
		t.Fatalf("parsePage() error = %v", err)
	}
	if p.Header.Type != pageTypeTableLeaf {
		t.Fatalf("Type = %v, want table leaf", p.Header.Type)
	}
	if len(p.TableLeafCells) != 2 {
		t.Fatalf("len(TableLeafCells) = %d, want 2", len(p.TableLeafCells))
	}
	if p.TableLeafCells[0].Rowid != 1 || p.TableLeafCells[1].Rowid != 2 {
		t.Errorf("rowids = %d, %d, want 1, 2", p.TableLeafCells[0].Rowid, p.TableLeafCells[1].Rowid)
	}

	v, err := p.TableLeafCells[0].Record.Column(0)
	if err != nil || v.Kind != KindInt || v.Int != 10 {
		t.Errorf("Column(0) = %+v, err %v, want int 10", v, err)
	}
}

func TestParsePageUnknownType(t *testing.T) {
	page := make([]byte, 64)
	page[0] = 0x07 // not a valid b-tree page type
	if _, err := parsePage(page, 1, 0); err == nil {
		t.Fatal("parsePage() expected error for unknown page type")
	}
}

func TestParsePageHeaderContentStartZeroMeans65536(t *testing.T) {
	raw := make([]byte, 16)
	raw[0] = byte(pageTypeTableLeaf)
	raw[5] = 0
	raw[6] = 0
	h, err := parsePageHeader(raw, 0)
	if err != nil {
		t.Fatalf("parsePageHeader() error = %v", err)
	}
	if h.ContentStart != 65536 {
		t.Errorf("ContentStart = %d, want 65536", h.ContentStart)
	}
}
