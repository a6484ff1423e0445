// Package format decodes the on-disk structures of SAS7BDAT files: the file
// header, pages, and subheader pointers.
//
// All multi-byte reads go through a Cursor bound to a Layout, so the same
// code path serves big and little endian files with 32 or 64 bit offsets.
package format

import "encoding/binary"

// Endian is the byte order of a file.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// ByteOrder returns the binary.ByteOrder matching e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Width is the address width of a file.
type Width uint8

const (
	Width32 Width = iota
	Width64
)

func (w Width) String() string {
	if w == Width64 {
		return "64bits"
	}
	return "32bits"
}

// Layout is the decode context shared by every structure in a file.
type Layout struct {
	Endian Endian
	Width  Width
}

// IntSize is the size in bytes of an address-width integer.
func (l Layout) IntSize() int {
	if l.Width == Width64 {
		return 8
	}
	return 4
}

// PageBitOffset is the offset of the page header inside a page.
func (l Layout) PageBitOffset() int {
	if l.Width == Width64 {
		return 32
	}
	return 16
}

// PointerSize is the size of one subheader pointer.
func (l Layout) PointerSize() int {
	return 3 * l.IntSize()
}

// Platform is the operating system family that wrote the file.
type Platform uint8

const (
	PlatformUnknown Platform = iota
	PlatformUnix
	PlatformWindows
)

func (p Platform) String() string {
	switch p {
	case PlatformUnix:
		return "unix"
	case PlatformWindows:
		return "windows"
	default:
		return "unknown"
	}
}
