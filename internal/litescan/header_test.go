package litescan

import "testing"

func buildHeaderBytes(pageSize uint16) []byte {
	raw := make([]byte, databaseHeaderSize)
	copy(raw, magicPrefix)
	raw[16] = byte(pageSize >> 8)
	raw[17] = byte(pageSize)
	return raw
}

func TestParseDatabaseHeader(t *testing.T) {
	raw := buildHeaderBytes(4096)
	h, err := parseDatabaseHeader(raw)
	if err != nil {
		t.Fatalf("parseDatabaseHeader() error = %v", err)
	}
	if h.actualPageSize() != 4096 {
		t.Errorf("actualPageSize() = %d, want 4096", h.actualPageSize())
	}
}

func TestParseDatabaseHeaderPageSizeOneMeans65536(t *testing.T) {
	raw := buildHeaderBytes(1)
	h, err := parseDatabaseHeader(raw)
	if err != nil {
		t.Fatalf("parseDatabaseHeader() error = %v", err)
	}
	if h.actualPageSize() != 65536 {
		t.Errorf("actualPageSize() = %d, want 65536", h.actualPageSize())
	}
}

func TestParseDatabaseHeaderTruncated(t *testing.T) {
	if _, err := parseDatabaseHeader(make([]byte, 50)); err == nil {
		t.Fatal("parseDatabaseHeader() expected error for short input")
	}
}
