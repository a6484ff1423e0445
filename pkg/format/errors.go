package format

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat indicates a structurally invalid SAS7BDAT file.
	ErrFormat = errors.New("sas7bdat: invalid format")
	// ErrMagicMismatch indicates the file does not start with the SAS7BDAT magic number.
	ErrMagicMismatch = fmt.Errorf("%w: magic number mismatch", ErrFormat)
	// ErrUnsupportedPage indicates a page header the reader does not understand.
	ErrUnsupportedPage = fmt.Errorf("%w: unsupported page", ErrFormat)
	// ErrBoundsCheck indicates a field that extends past its enclosing buffer.
	ErrBoundsCheck = fmt.Errorf("%w: index out of bounds", ErrFormat)
	// ErrTruncatedFile indicates the file ended before a declared structure.
	ErrTruncatedFile = errors.New("sas7bdat: truncated file")
)
