package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor reads fixed-offset fields out of a byte buffer using a Layout.
//
// Out-of-range reads return zero values and record ErrBoundsCheck; the first
// such error is kept and reported by Err. This lets decoders read a whole
// structure and check once at the end.
type Cursor struct {
	buf   []byte
	order binary.ByteOrder
	width Width
	err   error
}

// NewCursor returns a Cursor over buf.
func NewCursor(buf []byte, l Layout) *Cursor {
	return &Cursor{buf: buf, order: l.Endian.ByteOrder(), width: l.Width}
}

// Reset points the cursor at a new buffer and clears any recorded error.
func (c *Cursor) Reset(buf []byte) {
	c.buf = buf
	c.err = nil
}

// Err returns the first out-of-range access, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Len returns the buffer length.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// IntSize returns the address-width integer size.
func (c *Cursor) IntSize() int {
	if c.width == Width64 {
		return 8
	}
	return 4
}

// Has reports whether [off, off+n) lies inside the buffer.
func (c *Cursor) Has(off, n int) bool {
	return off >= 0 && n >= 0 && off <= len(c.buf) && n <= len(c.buf)-off
}

func (c *Cursor) check(off, n int) bool {
	if c.Has(off, n) {
		return true
	}
	if c.err == nil {
		c.err = fmt.Errorf("%w: read of %d bytes at offset %d (buffer %d)", ErrBoundsCheck, n, off, len(c.buf))
	}
	return false
}

// Byte reads one byte.
func (c *Cursor) Byte(off int) byte {
	if !c.check(off, 1) {
		return 0
	}
	return c.buf[off]
}

// Bytes returns the n bytes at off without copying.
func (c *Cursor) Bytes(off, n int) []byte {
	if !c.check(off, n) {
		return nil
	}
	return c.buf[off : off+n : off+n]
}

// Uint16 reads a 16-bit unsigned integer.
func (c *Cursor) Uint16(off int) uint16 {
	if !c.check(off, 2) {
		return 0
	}
	return c.order.Uint16(c.buf[off:])
}

// Uint32 reads a 32-bit unsigned integer.
func (c *Cursor) Uint32(off int) uint32 {
	if !c.check(off, 4) {
		return 0
	}
	return c.order.Uint32(c.buf[off:])
}

// Uint64 reads a 64-bit unsigned integer.
func (c *Cursor) Uint64(off int) uint64 {
	if !c.check(off, 8) {
		return 0
	}
	return c.order.Uint64(c.buf[off:])
}

// Uint reads an address-width unsigned integer.
func (c *Cursor) Uint(off int) uint64 {
	if c.width == Width64 {
		return c.Uint64(off)
	}
	return uint64(c.Uint32(off))
}

// maxInt bounds every count and offset decoded with Int.
const maxInt = 1 << 48

// Int reads an address-width integer as an int. Values above 2^48 are
// reported as out of range.
func (c *Cursor) Int(off int) int {
	v := c.Uint(off)
	if v > maxInt {
		if c.err == nil {
			c.err = fmt.Errorf("%w: integer %d at offset %d", ErrBoundsCheck, v, off)
		}
		return 0
	}
	return int(v)
}

// Float64 reads an IEEE 754 double.
func (c *Cursor) Float64(off int) float64 {
	return math.Float64frombits(c.Uint64(off))
}

// String reads n bytes at off and trims them the way header and text fields
// are trimmed: leading whitespace, trailing whitespace and non-printable bytes.
func (c *Cursor) String(off, n int) string {
	return TrimField(c.Bytes(off, n))
}

// Contains reports whether the n bytes at off contain sub.
func (c *Cursor) Contains(off, n int, sub []byte) bool {
	return bytes.Contains(c.Bytes(off, n), sub)
}

// TrimField trims leading whitespace and trailing whitespace or
// non-printable bytes.
func TrimField(b []byte) string {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && (isSpace(b[end-1]) || !isPrint(b[end-1])) {
		end--
	}
	return string(b[start:end])
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// isPrint treats bytes above 0x7f as printable so that trailing characters of
// single and multi byte encodings survive trimming.
func isPrint(b byte) bool {
	return b >= 0x20 && b != 0x7f
}

// IsPrint reports whether b is a printable byte.
func IsPrint(b byte) bool {
	return isPrint(b)
}
