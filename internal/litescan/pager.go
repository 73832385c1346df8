package litescan

import "io"

// pager reads fixed-size pages from the database file. Every read is an
// absolute ReadAt, never a Seek followed by a Read: the source carries no
// cursor state, so concurrent readers (were any ever added) could never
// interleave incorrectly, and a single-threaded caller never needs to
// reason about file position. src is an io.ReaderAt rather than
// *os.File so tests can back a pager with an in-memory page image.
type pager struct {
	src      io.ReaderAt
	pageSize int

	cacheEnabled bool
	cache        map[int][]byte
}

func newPager(src io.ReaderAt, pageSize int, cacheEnabled bool) *pager {
	p := &pager{src: src, pageSize: pageSize, cacheEnabled: cacheEnabled}
	if cacheEnabled {
		p.cache = make(map[int][]byte)
	}
	return p
}

// readPage returns the raw bytes of page n (1-indexed). The returned slice
// must not be mutated by the caller: it may be the pager's cached copy.
func (p *pager) readPage(n int) ([]byte, error) {
	if n < 1 {
		return nil, wrapErr("read_page", ErrOffsetOutOfPage, map[string]interface{}{"page": n})
	}
	if p.cacheEnabled {
		if cached, ok := p.cache[n]; ok {
			return cached, nil
		}
	}

	buf := make([]byte, p.pageSize)
	offset := int64(n-1) * int64(p.pageSize)
	if _, err := p.src.ReadAt(buf, offset); err != nil {
		return nil, wrapErr("read_page", ErrTruncated, map[string]interface{}{"page": n, "offset": offset, "cause": err.Error()})
	}

	if p.cacheEnabled {
		p.cache[n] = buf
	}
	return buf, nil
}

// pageHeaderOffset returns the offset within a page's raw bytes at which
// the b-tree page header begins: page 1 carries the 100-byte database
// header first, every other page starts with its b-tree header at 0.
func pageHeaderOffset(pageNumber int) int {
	if pageNumber == 1 {
		return databaseHeaderSize
	}
	return 0
}

// loadPage reads and decodes page n.
func (p *pager) loadPage(n int) (*page, error) {
	raw, err := p.readPage(n)
	if err != nil {
		return nil, err
	}
	return parsePage(raw, n, pageHeaderOffset(n))
}
