package litescan

import "testing"

// buildRecord assembles a minimal record: (header-size varint)(serial
// types...)(payload bytes...), all single-byte varints, with no padding on
// either side; callers prepend bytes themselves to test bodyStart != 0.
func buildRecord(serialTypes []byte, payload []byte) []byte {
	headerSize := byte(1 + len(serialTypes))
	buf := []byte{headerSize}
	buf = append(buf, serialTypes...)
	buf = append(buf, payload...)
	return buf
}

func TestDecodeRecord(t *testing.T) {
	// Two columns: an 8-bit int (serial type 1) and a 3-byte text
	// (serial type 13 + 3*2 = 19).
	raw := buildRecord([]byte{1, 19}, []byte{0x2a, 'f', 'o', 'o'})
	page := append([]byte{0xde, 0xad}, raw...) // leading junk to prove bodyStart is honored

	header, end, err := decodeRecord(page, 2)
	if err != nil {
		t.Fatalf("decodeRecord() error = %v", err)
	}
	if end != len(page) {
		t.Errorf("end = %d, want %d", end, len(page))
	}

	rec := &Record{page: page, header: header}
	if rec.NumColumns() != 2 {
		t.Fatalf("NumColumns() = %d, want 2", rec.NumColumns())
	}

	col0, err := rec.Column(0)
	if err != nil || col0.Kind != KindInt || col0.Int != 0x2a {
		t.Errorf("Column(0) = %+v, err %v, want int 42", col0, err)
	}

	col1, err := rec.Column(1)
	if err != nil || col1.Kind != KindText || col1.Text != "foo" {
		t.Errorf("Column(1) = %+v, err %v, want text foo", col1, err)
	}
}

func TestDecodeRecordTruncatedPayload(t *testing.T) {
	// Declares a 3-byte text column but supplies only 1 payload byte.
	raw := buildRecord([]byte{19}, []byte{'f'})
	_, _, err := decodeRecord(raw, 0)
	if err == nil {
		t.Fatal("decodeRecord() expected error for truncated payload")
	}
}

func TestDecodeRecordHeaderPastPage(t *testing.T) {
	// Header size varint claims 50 bytes of header but the page is tiny.
	raw := []byte{50, 1}
	_, _, err := decodeRecord(raw, 0)
	if err == nil {
		t.Fatal("decodeRecord() expected error for header running past page")
	}
}

func TestRecordColumnOutOfRange(t *testing.T) {
	raw := buildRecord([]byte{8}, nil) // serial type 8: literal zero, no payload
	header, _, err := decodeRecord(raw, 0)
	if err != nil {
		t.Fatalf("decodeRecord() error = %v", err)
	}
	rec := &Record{page: raw, header: header}
	if _, err := rec.Column(1); err == nil {
		t.Error("Column(1) expected error for out-of-range index")
	}
}
