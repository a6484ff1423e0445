package format

import (
	"fmt"
	"io"
)

// PageType is the type field of a page header.
type PageType uint16

const (
	PageMeta PageType = 0
	PageData PageType = 256
	PageMix1 PageType = 512
	PageMix2 PageType = 640
	PageAMD  PageType = 1024
	PageMetc PageType = 16384
)

// IsMix reports whether t is one of the mixed metadata and data types.
func (t PageType) IsMix() bool {
	return t == PageMix1 || t == PageMix2
}

// HasMetadata reports whether pages of type t carry schema subheaders.
func (t PageType) HasMetadata() bool {
	return t == PageMeta || t == PageAMD || t.IsMix()
}

// HasRows reports whether pages of type t carry uncompressed rows after the
// page header.
func (t PageType) HasRows() bool {
	return t == PageData || t.IsMix()
}

func (t PageType) String() string {
	switch t {
	case PageMeta:
		return "meta"
	case PageData:
		return "data"
	case PageMix1, PageMix2:
		return "mix"
	case PageAMD:
		return "amd"
	case PageMetc:
		return "metc"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
}

// Subheader pointer compression codes.
const (
	PointerTruncated  = 1
	PointerCompressed = 4
	// PointerTypeData marks a subheader that holds a row.
	PointerTypeData = 1
)

// SubheaderPointer locates one subheader inside its page.
type SubheaderPointer struct {
	Offset      int
	Length      int
	Compression byte
	Type        byte
}

// Page is one decoded page. Buf is only valid until the next ReadPage call
// on the PageReader that produced it.
type Page struct {
	Index          int
	Type           PageType
	BlockCount     int
	SubheaderCount int
	Buf            []byte
}

// Pointers decodes the subheader pointer table, dropping empty and
// truncated entries. A pointer that addresses bytes outside the page is an
// ErrFormat.
func (p *Page) Pointers(l Layout) ([]SubheaderPointer, error) {
	c := NewCursor(p.Buf, l)
	w := l.IntSize()
	base := l.PageBitOffset() + 8
	if !c.Has(base, p.SubheaderCount*l.PointerSize()) {
		return nil, fmt.Errorf("%w: page %d: %d subheader pointers overflow the page", ErrFormat, p.Index, p.SubheaderCount)
	}

	ptrs := make([]SubheaderPointer, 0, p.SubheaderCount)
	for i := 0; i < p.SubheaderCount; i++ {
		off := base + i*l.PointerSize()
		ptr := SubheaderPointer{
			Offset:      c.Int(off),
			Length:      c.Int(off + w),
			Compression: c.Byte(off + 2*w),
			Type:        c.Byte(off + 2*w + 1),
		}
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("page %d pointer %d: %w", p.Index, i, err)
		}
		if ptr.Length == 0 || ptr.Compression == PointerTruncated {
			continue
		}
		if !c.Has(ptr.Offset, ptr.Length) {
			return nil, fmt.Errorf("%w: page %d pointer %d: subheader [%d,+%d) outside page", ErrFormat, p.Index, i, ptr.Offset, ptr.Length)
		}
		ptrs = append(ptrs, ptr)
	}
	return ptrs, nil
}

// RowsOffset returns the offset of the first inline row. Data pages start
// right after the page header; mixed pages start after the pointer table,
// rounded up to a multiple of eight.
func (p *Page) RowsOffset(l Layout) int {
	off := l.PageBitOffset() + 8
	if p.Type.IsMix() {
		off += p.SubheaderCount * l.PointerSize()
		off += off % 8
	}
	return off
}

// PageReader reads pages by index through an io.ReaderAt. It owns a single
// page buffer that is reused between calls.
type PageReader struct {
	r      io.ReaderAt
	header Header
	buf    []byte
	page   Page
}

// NewPageReader returns a PageReader for the pages described by h.
func NewPageReader(r io.ReaderAt, h Header) *PageReader {
	return &PageReader{r: r, header: h, buf: make([]byte, h.PageLength)}
}

// PageCount returns the number of pages declared by the header.
func (pr *PageReader) PageCount() int {
	return pr.header.PageCount
}

// ReadPage reads page n. It returns io.EOF once n reaches the declared
// page count and ErrTruncatedFile if a declared page is short.
func (pr *PageReader) ReadPage(n int) (*Page, error) {
	if n < 0 || n >= pr.header.PageCount {
		return nil, io.EOF
	}
	off := int64(pr.header.HeaderLength) + int64(n)*int64(pr.header.PageLength)
	if err := readFull(pr.r, pr.buf, off); err != nil {
		return nil, fmt.Errorf("read page %d: %w", n, err)
	}

	c := NewCursor(pr.buf, pr.header.Layout)
	bit := pr.header.PageBitOffset()
	pr.page = Page{
		Index:          n,
		Type:           PageType(c.Uint16(bit)),
		BlockCount:     int(c.Uint16(bit + 2)),
		SubheaderCount: int(c.Uint16(bit + 4)),
		Buf:            pr.buf,
	}
	return &pr.page, nil
}
