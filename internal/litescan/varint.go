package litescan

// readVarint decodes the file's big-endian, 7-bits-per-byte, up-to-9-byte
// variable-length integer starting at offset in data. It returns the decoded
// value and the number of bytes consumed. The 9th byte, if reached,
// contributes all 8 of its bits rather than 7.
func readVarint(data []byte, offset int) (value int64, n int, err error) {
	var result uint64
	for i := 0; i < 9; i++ {
		if offset+i >= len(data) {
			return 0, 0, wrapErr("read_varint", ErrTruncated, map[string]interface{}{
				"offset": offset, "byte_index": i,
			})
		}
		b := data[offset+i]
		if i == 8 {
			result = (result << 8) | uint64(b)
			return int64(result), i + 1, nil
		}
		result = (result << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return int64(result), i + 1, nil
		}
	}
	// unreachable: the loop above always returns by i == 8
	return int64(result), 9, nil
}

// varintLen returns the number of bytes readVarint consumes to decode the
// value at offset.
func varintLen(data []byte, offset int) (int, error) {
	_, n, err := readVarint(data, offset)
	return n, err
}
