package sas7bdat

import (
	"errors"

	"github.com/eunmann/sas7bdat/pkg/decompress"
	"github.com/eunmann/sas7bdat/pkg/format"
)

var (
	// ErrFormat indicates a structurally invalid file.
	ErrFormat = format.ErrFormat
	// ErrMagicMismatch indicates a file that is not SAS7BDAT. It wraps ErrFormat.
	ErrMagicMismatch = format.ErrMagicMismatch
	// ErrUnsupportedPage marks pages of a type that carries neither schema nor
	// rows. It wraps ErrFormat and is only logged; such pages are skipped.
	ErrUnsupportedPage = format.ErrUnsupportedPage
	// ErrTruncatedFile indicates the file ended before a declared structure.
	ErrTruncatedFile = format.ErrTruncatedFile
	// ErrDecompression indicates a malformed compressed row.
	ErrDecompression = decompress.ErrDecompression
	// ErrInvalidFilter indicates an include/exclude configuration that cannot be applied.
	ErrInvalidFilter = errors.New("sas7bdat: invalid column filter")
	// ErrInvalidSink indicates a sink that implements none of the push protocols.
	ErrInvalidSink = errors.New("sas7bdat: sink implements no push protocol")
	// ErrUnsupportedSubheader marks subheaders with an unknown signature. It is
	// only logged; unknown subheaders are skipped.
	ErrUnsupportedSubheader = errors.New("sas7bdat: unsupported subheader")
)
