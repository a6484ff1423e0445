package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// HeaderPrefixSize is the fixed leading part of the header that carries
// the layout flags and the full header length.
const HeaderPrefixSize = 288

// MaxBlockLength bounds the header and page lengths accepted from a file.
const MaxBlockLength = 1 << 24

// Magic is the 32-byte signature at the start of every SAS7BDAT file.
var Magic = [32]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xc2, 0xea, 0x81, 0x60, 0xb3, 0x14, 0x11, 0xcf, 0xbd, 0x92, 0x08, 0x00,
	0x09, 0xc7, 0x31, 0x8c, 0x18, 0x1f, 0x10, 0x11,
}

// Header holds the file-level fields decoded from the header block.
type Header struct {
	Layout
	Platform     Platform
	Encoding     string
	DatasetName  string
	FileType     string
	SASRelease   string
	ServerType   string
	OSType       string
	OSName       string
	Created      time.Time
	Modified     time.Time
	HeaderLength int
	PageLength   int
	PageCount    int
}

// alignment holds the two header padding amounts selected by flag bytes.
type alignment struct {
	a1, total int
}

// sniff validates the magic number and decodes the layout flags from the
// fixed header prefix.
func sniff(prefix []byte) (Layout, alignment, error) {
	if len(prefix) < HeaderPrefixSize {
		return Layout{}, alignment{}, fmt.Errorf("%w: header is %d bytes, need %d", ErrTruncatedFile, len(prefix), HeaderPrefixSize)
	}
	if !bytes.Equal(prefix[:len(Magic)], Magic[:]) {
		return Layout{}, alignment{}, ErrMagicMismatch
	}

	var l Layout
	var a alignment
	a2 := 0
	if prefix[32] == '3' {
		l.Width = Width64
		a2 = 4
	}
	if prefix[35] == '3' {
		a.a1 = 4
	}
	a.total = a.a1 + a2
	if prefix[37] == 0x01 {
		l.Endian = LittleEndian
	} else {
		l.Endian = BigEndian
	}
	return l, a, nil
}

// ParseHeader decodes a complete header block. buf must hold at least the
// number of bytes given by the header length field.
func ParseHeader(buf []byte) (Header, error) {
	l, a, err := sniff(buf)
	if err != nil {
		return Header{}, err
	}

	c := NewCursor(buf, l)
	h := Header{Layout: l}
	h.HeaderLength = int(c.Uint32(196 + a.a1))
	if h.HeaderLength < HeaderPrefixSize {
		return Header{}, fmt.Errorf("%w: header length %d", ErrFormat, h.HeaderLength)
	}
	if len(buf) < h.HeaderLength {
		return Header{}, fmt.Errorf("%w: header is %d bytes, declared %d", ErrTruncatedFile, len(buf), h.HeaderLength)
	}

	switch buf[39] {
	case '1':
		h.Platform = PlatformUnix
	case '2':
		h.Platform = PlatformWindows
	}
	h.Encoding = EncodingName(buf[70])
	h.DatasetName = c.String(92, 64)
	h.FileType = c.String(156, 8)
	h.Created, _ = DateTime(c.Float64(164 + a.a1))
	h.Modified, _ = DateTime(c.Float64(172 + a.a1))
	h.PageLength = int(c.Uint32(200 + a.a1))
	if l.Width == Width64 {
		h.PageCount = c.Int(204 + a.a1)
	} else {
		h.PageCount = int(c.Uint32(204 + a.a1))
	}

	t := a.total
	h.SASRelease = c.String(216+t, 8)
	h.ServerType = c.String(224+t, 16)
	h.OSType = c.String(240+t, 16)
	if c.Byte(272+t) != 0 {
		h.OSName = c.String(272+t, 16)
	} else {
		h.OSName = c.String(256+t, 16)
	}
	if err := c.Err(); err != nil {
		return Header{}, fmt.Errorf("%w: header fields", ErrTruncatedFile)
	}

	if h.PageLength <= l.PageBitOffset()+8 || h.PageLength > MaxBlockLength {
		return Header{}, fmt.Errorf("%w: page length %d", ErrFormat, h.PageLength)
	}
	return h, nil
}

// ReadHeader reads and decodes the header block from r.
func ReadHeader(r io.ReaderAt) (Header, error) {
	prefix := make([]byte, HeaderPrefixSize)
	if err := readFull(r, prefix, 0); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	l, a, err := sniff(prefix)
	if err != nil {
		return Header{}, err
	}

	length := int(NewCursor(prefix, l).Uint32(196 + a.a1))
	if length < HeaderPrefixSize || length > MaxBlockLength {
		return Header{}, fmt.Errorf("%w: header length %d", ErrFormat, length)
	}
	buf := make([]byte, length)
	copy(buf, prefix)
	if err := readFull(r, buf[HeaderPrefixSize:], HeaderPrefixSize); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	return ParseHeader(buf)
}

// readFull fills buf from r at off. A short read is ErrTruncatedFile.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %d of %d bytes at offset %d", ErrTruncatedFile, n, len(buf), off)
	}
	return err
}
