package sastest

import (
	"fmt"
	"math"
)

type textRef struct {
	name, format, label [2]int
}

func (b *builder) lcsOffset() int {
	if b.w == 8 {
		return 682
	}
	return 354
}

func (b *builder) lcpOffset() int {
	if b.w == 8 {
		return 706
	}
	return 378
}

func (b *builder) creatorProcLength() int {
	if b.f.Compression == RDC {
		return 0
	}
	return len(b.f.CreatorProc)
}

func (b *builder) rowSizeSubheader() []byte {
	size := 480
	if b.w == 8 {
		size = 808
	}
	buf := make([]byte, size)
	b.signature(buf, sigRowSize)
	b.putUint(buf, 5*b.w, uint64(b.rowLen))
	b.putUint(buf, 6*b.w, uint64(len(b.f.Rows)))
	b.putUint(buf, 9*b.w, uint64(len(b.f.Columns)))
	b.putUint(buf, 10*b.w, 0)
	b.order.PutUint16(buf[b.lcsOffset():], 0)
	b.order.PutUint16(buf[b.lcpOffset():], uint16(b.creatorProcLength()))
	return buf
}

func (b *builder) columnSizeSubheader() []byte {
	buf := make([]byte, 3*b.w)
	b.signature(buf, sigColumnSize)
	b.putUint(buf, b.w, uint64(len(b.f.Columns)))
	return buf
}

func (b *builder) countsSubheader() []byte {
	buf := make([]byte, 8*b.w)
	b.signature(buf, sigCounts)
	return buf
}

func (b *builder) listSubheader() []byte {
	buf := make([]byte, 6*b.w)
	b.signature(buf, sigList)
	return buf
}

// textSubheader lays out the compression marker, the creator proc and then
// every column name, format and label in a single text blob.
func (b *builder) textSubheader() ([]byte, []textRef) {
	var blob []byte
	switch b.f.Compression {
	case None:
		blob = make([]byte, 28+b.creatorProcLength())
		copy(blob[28:], b.f.CreatorProc)
	case RLE:
		blob = make([]byte, 36+b.creatorProcLength())
		copy(blob[12:], "SASYZCRL")
		copy(blob[36:], b.f.CreatorProc)
	case RDC:
		blob = make([]byte, 20)
		copy(blob[12:], "SASYZCR2")
	}

	add := func(s string) [2]int {
		for len(blob)%4 != 0 {
			blob = append(blob, 0)
		}
		if s == "" {
			return [2]int{0, 0}
		}
		off := len(blob)
		blob = append(blob, s...)
		return [2]int{off, len(s)}
	}
	refs := make([]textRef, len(b.f.Columns))
	for i, c := range b.f.Columns {
		refs[i].name = add(c.Name)
		refs[i].format = add(c.Format)
		refs[i].label = add(c.Label)
	}
	for len(blob)%4 != 0 {
		blob = append(blob, 0)
	}
	if len(blob) > math.MaxUint16 {
		panic(fmt.Sprintf("sastest: text blob of %d bytes", len(blob)))
	}
	b.order.PutUint16(blob, uint16(len(blob)))

	buf := make([]byte, b.w, b.w+len(blob))
	b.signature(buf, sigText)
	return append(buf, blob...), refs
}

func (b *builder) nameSubheader(refs []textRef) []byte {
	n := len(refs)
	buf := make([]byte, 2*b.w+8*n+12)
	b.signature(buf, sigName)
	for i, r := range refs {
		off := b.w + 8 + 8*i
		b.order.PutUint16(buf[off:], 0)
		b.order.PutUint16(buf[off+2:], uint16(r.name[0]))
		b.order.PutUint16(buf[off+4:], uint16(r.name[1]))
	}
	return buf
}

func (b *builder) attrsSubheader() []byte {
	n := len(b.f.Columns)
	step := b.w + 8
	buf := make([]byte, step*n+12+b.w)
	b.signature(buf, sigAttrs)
	offset := 0
	for i, c := range b.f.Columns {
		off := step + step*i
		b.putUint(buf, off, uint64(offset))
		b.order.PutUint32(buf[off+b.w:], uint32(c.Length))
		if c.Numeric {
			buf[off+b.w+6] = 1
		} else {
			buf[off+b.w+6] = 2
		}
		offset += c.Length
	}
	return buf
}

func (b *builder) formatSubheader(r textRef) []byte {
	buf := make([]byte, 3*b.w+64)
	b.signature(buf, sigFormat)
	base := 3 * b.w
	b.order.PutUint16(buf[base+22:], 0)
	b.order.PutUint16(buf[base+24:], uint16(r.format[0]))
	b.order.PutUint16(buf[base+26:], uint16(r.format[1]))
	b.order.PutUint16(buf[base+28:], 0)
	b.order.PutUint16(buf[base+30:], uint16(r.label[0]))
	b.order.PutUint16(buf[base+32:], uint16(r.label[1]))
	return buf
}

func (b *builder) encodeRow(values []any) []byte {
	row := make([]byte, b.rowLen)
	off := 0
	for i, c := range b.f.Columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		field := row[off : off+c.Length]
		if raw, ok := v.([]byte); ok {
			copy(field, raw)
		} else if c.Numeric {
			b.encodeNumber(field, v)
		} else {
			s, _ := v.(string)
			padded(field, s)
		}
		off += c.Length
	}
	return row
}

func (b *builder) encodeNumber(field []byte, v any) {
	var f float64
	switch x := v.(type) {
	case nil:
		f = math.NaN()
	case float64:
		f = x
	case int:
		f = float64(x)
	default:
		panic(fmt.Sprintf("sastest: unsupported numeric value %T", v))
	}

	switch n := len(field); {
	case n == 1:
		field[0] = byte(int64(f))
	case n == 2:
		b.order.PutUint16(field, uint16(int16(f)))
	case n >= 3 && n <= 8:
		var full [8]byte
		b.order.PutUint64(full[:], math.Float64bits(f))
		if b.f.BigEndian {
			copy(field, full[:n])
		} else {
			copy(field, full[8-n:])
		}
	}
}
