package litescan

import "encoding/binary"

const (
	databaseHeaderSize = 100
	magicPrefix        = "SQLite format 3\x00"
)

// databaseHeader is the fixed 100-byte prefix at file offset 0. Only
// PageSize is the only header field this core semantically requires; the remaining
// fields are read but not interpreted, since nothing downstream needs them to
// tolerate fields this core does not use.
type databaseHeader struct {
	PageSize        uint16
	FileFormatWrite uint8
	FileFormatRead  uint8
	ReservedBytes   uint8
	MaxPayload      uint8
	MinPayload      uint8
	LeafPayload     uint8
	FileChangeCount uint32
	DatabaseSize    uint32
	FirstFreePage   uint32
	FreePageCount   uint32
	SchemaCookie    uint32
	SchemaFormat    uint32
	DefaultCache    uint32
	LargestBTree    uint32
	TextEncoding    uint32
	UserVersion     uint32
	IncrVacuum      uint32
	AppID           uint32
}

// parseDatabaseHeader decodes the 100-byte database header. It checks only
// the input length; the magic string and page-size range are checked by
// Open when validation is enabled.
func parseDatabaseHeader(raw []byte) (*databaseHeader, error) {
	if len(raw) != databaseHeaderSize {
		return nil, wrapErr("parse_database_header", ErrTruncated, map[string]interface{}{
			"have": len(raw), "want": databaseHeaderSize,
		})
	}

	h := &databaseHeader{
		PageSize:        binary.BigEndian.Uint16(raw[16:18]),
		FileFormatWrite: raw[18],
		FileFormatRead:  raw[19],
		ReservedBytes:   raw[20],
		MaxPayload:      raw[21],
		MinPayload:      raw[22],
		LeafPayload:     raw[23],
		FileChangeCount: binary.BigEndian.Uint32(raw[24:28]),
		DatabaseSize:    binary.BigEndian.Uint32(raw[28:32]),
		FirstFreePage:   binary.BigEndian.Uint32(raw[32:36]),
		FreePageCount:   binary.BigEndian.Uint32(raw[36:40]),
		SchemaCookie:    binary.BigEndian.Uint32(raw[40:44]),
		SchemaFormat:    binary.BigEndian.Uint32(raw[44:48]),
		DefaultCache:    binary.BigEndian.Uint32(raw[48:52]),
		LargestBTree:    binary.BigEndian.Uint32(raw[52:56]),
		TextEncoding:    binary.BigEndian.Uint32(raw[56:60]),
		UserVersion:     binary.BigEndian.Uint32(raw[60:64]),
		IncrVacuum:      binary.BigEndian.Uint32(raw[64:68]),
		AppID:           binary.BigEndian.Uint32(raw[68:72]),
	}

	return h, nil
}

// actualPageSize returns the real page size, resolving the SQLite
// convention that a stored value of 1 denotes 65536.
func (h *databaseHeader) actualPageSize() int {
	if h.PageSize == 1 {
		return 65536
	}
	return int(h.PageSize)
}

// textEncodingIsUTF8 reports whether the header's text encoding field
// selects UTF-8 (1) as opposed to UTF-16 variants (2, 3), which this core
// does not support.
func (h *databaseHeader) textEncodingIsUTF8() bool {
	return h.TextEncoding == 0 || h.TextEncoding == 1
}
