package sas7bdat

import (
	"bytes"
	"fmt"

	"github.com/eunmann/sas7bdat/pkg/format"
	"github.com/rs/zerolog"
)

type subheaderKind uint8

const (
	shUnknown subheaderKind = iota
	shRowSize
	shColumnSize
	shCounts
	shText
	shName
	shAttrs
	shFormat
	shList
)

func (k subheaderKind) String() string {
	return [...]string{"unknown", "row size", "column size", "subheader counts",
		"column text", "column name", "column attributes", "format and label",
		"column list"}[k]
}

type signature struct {
	kind subheaderKind
	sig  []byte
}

// Signatures are the first address-width bytes of a subheader. Both byte
// orders are listed where they differ.
var (
	signatures32 = []signature{
		{shRowSize, []byte{0xF7, 0xF7, 0xF7, 0xF7}},
		{shColumnSize, []byte{0xF6, 0xF6, 0xF6, 0xF6}},
		{shCounts, []byte{0x00, 0xFC, 0xFF, 0xFF}},
		{shCounts, []byte{0xFF, 0xFF, 0xFC, 0x00}},
		{shText, []byte{0xFD, 0xFF, 0xFF, 0xFF}},
		{shText, []byte{0xFF, 0xFF, 0xFF, 0xFD}},
		{shName, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{shAttrs, []byte{0xFC, 0xFF, 0xFF, 0xFF}},
		{shAttrs, []byte{0xFF, 0xFF, 0xFF, 0xFC}},
		{shFormat, []byte{0xFE, 0xFB, 0xFF, 0xFF}},
		{shFormat, []byte{0xFF, 0xFF, 0xFB, 0xFE}},
		{shList, []byte{0xFE, 0xFF, 0xFF, 0xFF}},
		{shList, []byte{0xFF, 0xFF, 0xFF, 0xFE}},
	}
	signatures64 = []signature{
		{shRowSize, []byte{0x00, 0x00, 0x00, 0x00, 0xF7, 0xF7, 0xF7, 0xF7}},
		{shRowSize, []byte{0xF7, 0xF7, 0xF7, 0xF7, 0x00, 0x00, 0x00, 0x00}},
		{shColumnSize, []byte{0x00, 0x00, 0x00, 0x00, 0xF6, 0xF6, 0xF6, 0xF6}},
		{shColumnSize, []byte{0xF6, 0xF6, 0xF6, 0xF6, 0x00, 0x00, 0x00, 0x00}},
		{shCounts, []byte{0x00, 0xFC, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{shCounts, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC, 0x00}},
		{shText, []byte{0xFD, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{shText, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFD}},
		{shName, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{shAttrs, []byte{0xFC, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{shAttrs, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFC}},
		{shFormat, []byte{0xFE, 0xFB, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{shFormat, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFB, 0xFE}},
		{shList, []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{shList, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}},
	}
)

type textRef struct {
	index, offset, length int
}

type attribute struct {
	offset, length int
	kind           Kind
}

// metadata accumulates schema pieces across pages. Text references are kept
// as (blob, offset, length) triples and only resolved once every column
// text blob has been seen.
type metadata struct {
	layout format.Layout
	props  *Properties
	log    zerolog.Logger
	sigs   []signature
	c      *format.Cursor

	sawRowSize bool
	texts      [][]byte
	firstText  []byte
	names      []textRef
	formats    []textRef
	labels     []textRef
	attrs      []attribute
}

func newMetadata(props *Properties, log zerolog.Logger) *metadata {
	m := &metadata{
		layout: props.Layout,
		props:  props,
		log:    log,
		sigs:   signatures32,
		c:      format.NewCursor(nil, props.Layout),
	}
	if props.Width == format.Width64 {
		m.sigs = signatures64
	}
	return m
}

func (m *metadata) lcsOffset() int {
	if m.layout.Width == format.Width64 {
		return 682
	}
	return 354
}

func (m *metadata) lcpOffset() int {
	if m.layout.Width == format.Width64 {
		return 706
	}
	return 378
}

func (m *metadata) compressionOffset() int {
	if m.layout.Width == format.Width64 {
		return 20
	}
	return 16
}

func (m *metadata) match(sub []byte) subheaderKind {
	w := m.layout.IntSize()
	if len(sub) < w {
		return shUnknown
	}
	for _, s := range m.sigs {
		if bytes.Equal(sub[:w], s.sig) {
			return s.kind
		}
	}
	return shUnknown
}

// isRow reports whether ptr addresses a row stored as a subheader. Such
// rows only exist in compressed files. Compressed rows are recognized from
// the pointer alone; uncompressed ones only when no signature matches.
func (m *metadata) isRow(ptr format.SubheaderPointer, sub []byte) bool {
	if m.props.Compression == CompressionNone || ptr.Type != format.PointerTypeData {
		return false
	}
	switch ptr.Compression {
	case format.PointerCompressed:
		return true
	case 0:
		return m.match(sub) == shUnknown
	}
	return false
}

// rowPointers returns the row subheaders of a page without touching schema
// state.
func (m *metadata) rowPointers(p *format.Page) ([]format.SubheaderPointer, error) {
	ptrs, err := p.Pointers(m.layout)
	if err != nil {
		return nil, err
	}
	rows := ptrs[:0]
	for _, ptr := range ptrs {
		if m.isRow(ptr, p.Buf[ptr.Offset:ptr.Offset+ptr.Length]) {
			rows = append(rows, ptr)
		}
	}
	return rows, nil
}

// processPage decodes every schema subheader of a metadata page and returns
// its row subheaders.
func (m *metadata) processPage(p *format.Page) ([]format.SubheaderPointer, error) {
	ptrs, err := p.Pointers(m.layout)
	if err != nil {
		return nil, err
	}
	var rows []format.SubheaderPointer
	for i, ptr := range ptrs {
		sub := p.Buf[ptr.Offset : ptr.Offset+ptr.Length]
		if m.isRow(ptr, sub) {
			rows = append(rows, ptr)
			continue
		}
		kind := m.match(sub)
		if err := m.processSubheader(kind, sub); err != nil {
			return nil, fmt.Errorf("page %d subheader %d (%s): %w", p.Index, i, kind, err)
		}
	}
	return rows, nil
}

func (m *metadata) processSubheader(kind subheaderKind, sub []byte) error {
	c := m.c
	c.Reset(sub)
	w := m.layout.IntSize()

	switch kind {
	case shRowSize:
		m.sawRowSize = true
		m.props.LCS = int(c.Uint16(m.lcsOffset()))
		m.props.LCP = int(c.Uint16(m.lcpOffset()))
		m.props.RowLength = c.Int(5 * w)
		m.props.RowCount = c.Int(6 * w)
		m.props.ColCountP1 = c.Int(9 * w)
		m.props.ColCountP2 = c.Int(10 * w)
		m.props.MixPageRowCount = c.Int(15 * w)
		m.log.Debug().
			Int("row_length", m.props.RowLength).
			Int("row_count", m.props.RowCount).
			Int("mix_page_row_count", m.props.MixPageRowCount).
			Msg("row size subheader")

	case shColumnSize:
		m.props.ColumnCount = c.Int(w)
		if m.props.ColCountP1+m.props.ColCountP2 != m.props.ColumnCount {
			m.log.Warn().
				Int("column_count", m.props.ColumnCount).
				Int("col_count_p1", m.props.ColCountP1).
				Int("col_count_p2", m.props.ColCountP2).
				Msg("column count mismatch")
		}

	case shText:
		n := int(c.Uint16(w))
		blob := c.Bytes(w, n)
		if c.Err() != nil {
			break
		}
		m.texts = append(m.texts, bytes.Clone(blob))
		if len(m.texts) == 1 {
			m.firstText = bytes.Clone(sub)
			switch {
			case bytes.Contains(blob, []byte(rleMarker)):
				m.props.Compression = CompressionRLE
			case bytes.Contains(blob, []byte(rdcMarker)):
				m.props.Compression = CompressionRDC
			}
		}

	case shName:
		last := len(sub) - 12 - w
		for off := w + 8; off <= last; off += 8 {
			m.names = append(m.names, m.readRef(off))
		}

	case shAttrs:
		last := len(sub) - 12 - w
		for off := w + 8; off <= last; off += w + 8 {
			a := attribute{
				offset: c.Int(off),
				length: int(c.Uint32(off + w)),
				kind:   KindCharacter,
			}
			if c.Byte(off+w+6) == 1 {
				a.kind = KindNumeric
			}
			m.attrs = append(m.attrs, a)
		}

	case shFormat:
		base := 3 * w
		m.formats = append(m.formats, m.readRef(base+22))
		m.labels = append(m.labels, m.readRef(base+28))

	case shCounts, shList:

	default:
		m.log.Debug().Err(ErrUnsupportedSubheader).Hex("signature", sub[:min(len(sub), w)]).Msg("skipping subheader")
	}
	return c.Err()
}

func (m *metadata) readRef(off int) textRef {
	return textRef{
		index:  int(m.c.Uint16(off)),
		offset: int(m.c.Uint16(off + 2)),
		length: int(m.c.Uint16(off + 4)),
	}
}

// text resolves a reference into the text blobs. References outside the
// blobs resolve to "", as do those starting with a non-printable byte.
func (m *metadata) text(ref textRef) string {
	if ref.index >= len(m.texts) {
		return ""
	}
	blob := m.texts[ref.index]
	off := min(ref.offset, len(blob))
	n := min(ref.length, len(blob)-off)
	if n == 0 || !format.IsPrint(blob[off]) {
		return ""
	}
	return format.TrimField(blob[off : off+n])
}

// resolveCreator decodes the creator fields from the first text subheader.
// Their location depends on the compression marker and on lcs/lcp.
func (m *metadata) resolveCreator() {
	if m.firstText == nil {
		return
	}
	c := format.NewCursor(m.firstText, m.layout)
	off := m.compressionOffset()
	p := m.props
	switch marker := c.String(off, 8); {
	case marker == "":
		p.LCS = 0
		p.CreatorProc = c.String(off+16, p.LCP)
	case marker == rleMarker:
		p.CreatorProc = c.String(off+24, p.LCP)
	case p.LCS > 0:
		p.LCP = 0
		p.Creator = c.String(off, p.LCS)
	}
	if err := c.Err(); err != nil {
		m.log.Debug().Err(err).Msg("creator fields out of range")
	}
}

// columns builds the full schema once every metadata page has been seen.
func (m *metadata) columns() ([]Column, error) {
	p := m.props
	if !m.sawRowSize {
		return nil, fmt.Errorf("%w: no row size subheader", ErrFormat)
	}
	m.resolveCreator()

	n := p.ColumnCount
	if len(m.names) < n {
		return nil, fmt.Errorf("%w: %d column names for %d columns", ErrFormat, len(m.names), n)
	}
	if len(m.attrs) < n {
		return nil, fmt.Errorf("%w: %d column attributes for %d columns", ErrFormat, len(m.attrs), n)
	}

	order := m.layout.Endian.ByteOrder()
	cols := make([]Column, n)
	for i := range cols {
		a := m.attrs[i]
		if a.offset+a.length > p.RowLength {
			return nil, fmt.Errorf("%w: column %d spans [%d,%d) past row length %d", ErrFormat, i, a.offset, a.offset+a.length, p.RowLength)
		}
		col := Column{
			Name:   m.text(m.names[i]),
			Index:  i,
			Offset: a.offset,
			Length: a.length,
			kind:   a.kind,
			order:  order,
		}
		if i < len(m.formats) {
			col.Format = m.text(m.formats[i])
			col.Label = m.text(m.labels[i])
		}
		col.Type = columnType(col.kind, col.Length, col.Format)
		if col.Type == TypeUnknown {
			m.log.Debug().Str("column", col.Name).Int("length", col.Length).Msg("unsupported column layout")
		}
		cols[i] = col
	}
	return cols, nil
}
