package litescan

// recordHeader holds the decoded serial-type list of a record together with
// the page offset and size of each column's payload bytes. Computing these
// offsets is cheap (integer arithmetic only); the expensive part — turning
// bytes into a CellValue, including string/blob allocation — is deferred to
// Record.Column, called on demand by row materialization and predicate
// evaluation so that selecting a handful of columns from a wide table never
// pays to decode the rest.
type recordHeader struct {
	serialTypes []int64
	offsets     []int
	sizes       []int
}

// decodeRecord parses a record's header starting at bodyStart within page
// (the offset of the record's header-size varint) and returns the column
// offset table plus the absolute offset one past the end of the record.
func decodeRecord(page []byte, bodyStart int) (*recordHeader, int, error) {
	headerSize, n, err := readVarint(page, bodyStart)
	if err != nil {
		return nil, 0, wrapErr("decode_record_header_size", err, map[string]interface{}{"offset": bodyStart})
	}
	if headerSize < int64(n) {
		return nil, 0, wrapErr("decode_record_header_size", ErrTruncated, map[string]interface{}{"header_size": headerSize})
	}

	headerEnd := bodyStart + int(headerSize)
	if headerEnd > len(page) {
		return nil, 0, wrapErr("decode_record_header", ErrOffsetOutOfPage, map[string]interface{}{"header_end": headerEnd, "page_len": len(page)})
	}

	var serialTypes []int64
	off := bodyStart + n
	for off < headerEnd {
		st, m, err := readVarint(page, off)
		if err != nil {
			return nil, 0, wrapErr("decode_record_serial_type", err, map[string]interface{}{"offset": off})
		}
		serialTypes = append(serialTypes, st)
		off += m
	}

	offsets := make([]int, len(serialTypes))
	sizes := make([]int, len(serialTypes))
	cursor := headerEnd
	for i, st := range serialTypes {
		size, err := serialTypeSize(st)
		if err != nil {
			return nil, 0, err
		}
		offsets[i] = cursor
		sizes[i] = size
		cursor += size
	}
	if cursor > len(page) {
		// Payload would run past the bytes we have in hand. Since overflow
		// page chains are out of scope, this can only mean
		// a spilled payload we cannot follow: fail rather than return a
		// truncated/incorrect value.
		return nil, 0, wrapErr("decode_record_body", ErrTruncated, map[string]interface{}{"need": cursor, "have": len(page)})
	}

	return &recordHeader{serialTypes: serialTypes, offsets: offsets, sizes: sizes}, cursor, nil
}

// Record is a lazy view over a decoded record's columns, backed by the page
// bytes that hold it. Record values are decoded on first access and are not
// cached; callers that read the same column repeatedly should cache the
// CellValue themselves.
type Record struct {
	page   []byte
	header *recordHeader
}

// NumColumns returns the number of columns this record's header describes.
func (r *Record) NumColumns() int {
	if r == nil || r.header == nil {
		return 0
	}
	return len(r.header.serialTypes)
}

// Column decodes and returns the value of column i.
func (r *Record) Column(i int) (CellValue, error) {
	if r == nil || r.header == nil || i < 0 || i >= len(r.header.serialTypes) {
		return CellValue{}, wrapErr("record_column", ErrUnknownColumn, map[string]interface{}{"index": i})
	}
	st := r.header.serialTypes[i]
	size := r.header.sizes[i]
	off := r.header.offsets[i]
	data := r.page[off : off+size]
	return decodeSerialValue(st, data)
}
