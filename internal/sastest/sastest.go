// Package sastest builds small synthetic SAS7BDAT files for tests.
//
// The output follows the on-disk layout closely enough for the reader:
// header block, metadata pages with row size, column size, text, name,
// attribute and format subheaders, then rows as inline data, mixed page
// rows, or compressed data subheaders.
package sastest

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

// Compression selects how rows are stored.
type Compression int

const (
	None Compression = iota
	RLE
	RDC
)

// Layout selects where uncompressed rows are stored.
type Layout int

const (
	// DataPages stores rows on data pages after the metadata pages.
	DataPages Layout = iota
	// MixPage stores as many rows as fit on the last metadata page, turning
	// it into a mixed page, and the rest on data pages.
	MixPage
)

// Column describes one column of a synthetic file.
type Column struct {
	Name    string
	Label   string
	Format  string
	Numeric bool
	Length  int
}

// Num returns an 8-byte numeric column.
func Num(name string) Column {
	return Column{Name: name, Numeric: true, Length: 8}
}

// Str returns a character column of the given length.
func Str(name string, length int) Column {
	return Column{Name: name, Length: length}
}

// File describes a synthetic file. Row values are float64, int, nil
// (missing numeric), string or []byte.
type File struct {
	BigEndian   bool
	Is64        bool
	Compression Compression
	Layout      Layout
	PageLength  int

	DatasetName string
	FileType    string
	Release     string
	ServerType  string
	OSType      string
	OSName      string
	CreatorProc string
	Platform    byte
	Encoding    byte
	Created     float64
	Modified    float64

	// UnknownSubheader adds a subheader with an unrecognized signature.
	UnknownSubheader bool

	// MetcPage, when positive, inserts an empty metc page before the
	// page with that index.
	MetcPage int

	// DamageRow, when set, replaces the packed bytes of each compressed row.
	DamageRow func(index int, packed []byte) []byte

	Columns []Column
	Rows    [][]any
}

// signature values, written in the file byte order at the subheader start.
const (
	sigRowSize    = 0xF7F7F7F7
	sigColumnSize = 0xF6F6F6F6
	sigCounts     = 0xFFFFFFFFFFFFFC00
	sigText       = 0xFFFFFFFFFFFFFFFD
	sigName       = 0xFFFFFFFFFFFFFFFF
	sigAttrs      = 0xFFFFFFFFFFFFFFFC
	sigFormat     = 0xFFFFFFFFFFFFFBFE
	sigList       = 0xFFFFFFFFFFFFFFFE
	sigUnknown    = 0xFFFFFFFFFFFFFBFD
)

const headerLength = 1024

type subheader struct {
	data []byte
	comp byte
	typ  byte
}

type page struct {
	typ  uint16
	subs []subheader
	rows [][]byte
}

type builder struct {
	f       File
	order   binary.ByteOrder
	w       int
	bitoff  int
	ptrSize int
	rowLen  int
}

// Bytes encodes the file.
func (f File) Bytes() []byte {
	if f.PageLength == 0 {
		f.PageLength = 4096
	}
	if f.FileType == "" {
		f.FileType = "DATA"
	}
	if f.Platform == 0 {
		f.Platform = '1'
	}
	if f.Encoding == 0 {
		f.Encoding = 20
	}
	b := &builder{f: f, order: binary.LittleEndian, w: 4, bitoff: 16}
	if f.BigEndian {
		b.order = binary.BigEndian
	}
	if f.Is64 {
		b.w = 8
		b.bitoff = 32
	}
	b.ptrSize = 3 * b.w
	for _, c := range f.Columns {
		b.rowLen += c.Length
	}
	return b.build()
}

func (b *builder) putUint(buf []byte, off int, v uint64) {
	if b.w == 8 {
		b.order.PutUint64(buf[off:], v)
	} else {
		b.order.PutUint32(buf[off:], uint32(v))
	}
}

func (b *builder) signature(buf []byte, sig uint64) {
	if b.w == 4 {
		sig &= 0xFFFFFFFF
	}
	b.putUint(buf, 0, sig)
}

func (b *builder) build() []byte {
	rowSize := b.rowSizeSubheader()
	meta := []subheader{
		{data: rowSize},
		{data: b.columnSizeSubheader()},
		{data: b.countsSubheader()},
	}
	text, refs := b.textSubheader()
	meta = append(meta,
		subheader{data: text},
		subheader{data: b.nameSubheader(refs)},
		subheader{data: b.attrsSubheader()},
	)
	for i := range b.f.Columns {
		meta = append(meta, subheader{data: b.formatSubheader(refs[i])})
	}
	meta = append(meta, subheader{data: b.listSubheader()})
	if b.f.UnknownSubheader {
		unknown := make([]byte, 4*b.w)
		b.signature(unknown, sigUnknown)
		meta = append(meta, subheader{data: unknown})
	}

	rows := make([][]byte, len(b.f.Rows))
	for i, r := range b.f.Rows {
		rows[i] = b.encodeRow(r)
	}

	pages := b.pack(meta)
	mixRows := 0
	switch {
	case b.f.Compression != None:
		pages = b.packCompressed(pages, rows)
	case b.f.Layout == MixPage && len(rows) > 0:
		last := &pages[len(pages)-1]
		for mixRows < len(rows) && b.fits(last, nil, mixRows+1) {
			mixRows++
		}
		if mixRows > 0 {
			last.typ = 512
		}
		last.rows = rows[:mixRows]
		pages = b.packData(pages, rows[mixRows:])
	default:
		pages = b.packData(pages, rows)
	}
	if mixRows == 0 {
		mixRows = b.rowsPerDataPage()
	}
	b.putUint(rowSize, 15*b.w, uint64(mixRows))

	if n := b.f.MetcPage; n > 0 && n <= len(pages) {
		pages = slices.Insert(pages, n, page{typ: 16384})
	}

	out := b.header(len(pages))
	for _, p := range pages {
		out = append(out, b.encodePage(p)...)
	}
	return out
}

func (b *builder) rowsPerDataPage() int {
	if b.rowLen == 0 {
		return 0
	}
	return (b.f.PageLength - b.bitoff - 8) / b.rowLen
}

// fits reports whether p can take extra as one more subheader while holding
// nrows inline rows.
func (b *builder) fits(p *page, extra []byte, nrows int) bool {
	nsubs := len(p.subs)
	used := 0
	for _, s := range p.subs {
		used += len(s.data)
	}
	if extra != nil {
		nsubs++
		used += len(extra)
	}
	end := b.bitoff + 8 + nsubs*b.ptrSize
	if nrows > 0 {
		end += end % 8
		end += nrows * b.rowLen
	}
	return end+used <= b.f.PageLength
}

func (b *builder) pack(subs []subheader) []page {
	pages := []page{{typ: 0}}
	for _, s := range subs {
		cur := &pages[len(pages)-1]
		if !b.fits(cur, s.data, 0) {
			if len(cur.subs) == 0 {
				panic(fmt.Sprintf("sastest: subheader of %d bytes does not fit a page", len(s.data)))
			}
			pages = append(pages, page{typ: 0})
			cur = &pages[len(pages)-1]
		}
		cur.subs = append(cur.subs, s)
	}
	return pages
}

func (b *builder) packCompressed(pages []page, rows [][]byte) []page {
	var subs []subheader
	for i, r := range rows {
		packed := b.compress(r)
		if len(packed) < len(r) {
			if b.f.DamageRow != nil {
				packed = b.f.DamageRow(i, packed)
			}
			subs = append(subs, subheader{data: packed, comp: 4, typ: 1})
		} else {
			subs = append(subs, subheader{data: r, comp: 0, typ: 1})
		}
	}
	for _, s := range subs {
		cur := &pages[len(pages)-1]
		if !b.fits(cur, s.data, 0) {
			pages = append(pages, page{typ: 0})
			cur = &pages[len(pages)-1]
		}
		cur.subs = append(cur.subs, s)
	}
	return pages
}

func (b *builder) packData(pages []page, rows [][]byte) []page {
	per := b.rowsPerDataPage()
	for len(rows) > 0 {
		n := min(per, len(rows))
		pages = append(pages, page{typ: 256, rows: rows[:n]})
		rows = rows[n:]
	}
	return pages
}

func (b *builder) compress(row []byte) []byte {
	if b.f.Compression == RDC {
		return EncodeRDC(row)
	}
	return EncodeRLE(row)
}

func (b *builder) encodePage(p page) []byte {
	buf := make([]byte, b.f.PageLength)
	blockCount := len(p.rows)
	if p.typ != 256 {
		blockCount += len(p.subs)
	}
	b.order.PutUint16(buf[b.bitoff:], p.typ)
	b.order.PutUint16(buf[b.bitoff+2:], uint16(blockCount))
	b.order.PutUint16(buf[b.bitoff+4:], uint16(len(p.subs)))

	pos := len(buf)
	for i, s := range p.subs {
		pos -= len(s.data)
		copy(buf[pos:], s.data)
		ptr := b.bitoff + 8 + i*b.ptrSize
		b.putUint(buf, ptr, uint64(pos))
		b.putUint(buf, ptr+b.w, uint64(len(s.data)))
		buf[ptr+2*b.w] = s.comp
		buf[ptr+2*b.w+1] = s.typ
	}

	off := b.bitoff + 8
	if p.typ != 256 {
		off += len(p.subs) * b.ptrSize
		off += off % 8
	}
	for _, r := range p.rows {
		copy(buf[off:], r)
		off += b.rowLen
	}
	return buf
}

func (b *builder) header(pageCount int) []byte {
	buf := make([]byte, headerLength)
	copy(buf, magic[:])
	a1, total := 0, 0
	if b.w == 8 {
		buf[32] = '3'
		buf[35] = '3'
		a1, total = 4, 8
	} else {
		buf[32] = '2'
		buf[35] = '2'
	}
	if !b.f.BigEndian {
		buf[37] = 0x01
	}
	buf[39] = b.f.Platform
	buf[70] = b.f.Encoding
	padded(buf[92:156], b.f.DatasetName)
	padded(buf[156:164], b.f.FileType)
	b.order.PutUint64(buf[164+a1:], math.Float64bits(b.f.Created))
	b.order.PutUint64(buf[172+a1:], math.Float64bits(b.f.Modified))
	b.order.PutUint32(buf[196+a1:], headerLength)
	b.order.PutUint32(buf[200+a1:], uint32(b.f.PageLength))
	b.putUint(buf, 204+a1, uint64(pageCount))
	padded(buf[216+total:224+total], b.f.Release)
	padded(buf[224+total:240+total], b.f.ServerType)
	padded(buf[240+total:256+total], b.f.OSType)
	padded(buf[272+total:288+total], b.f.OSName)
	return buf
}

var magic = [32]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xc2, 0xea, 0x81, 0x60, 0xb3, 0x14, 0x11, 0xcf, 0xbd, 0x92, 0x08, 0x00,
	0x09, 0xc7, 0x31, 0x8c, 0x18, 0x1f, 0x10, 0x11,
}

func padded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
}
