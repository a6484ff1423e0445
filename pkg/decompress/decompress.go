// Package decompress expands SAS7BDAT compressed rows.
//
// Both codecs write exactly len(dst) bytes. A stream that ends early, runs
// past the destination, or contains an unknown command fails with
// ErrDecompression.
package decompress

import (
	"errors"
	"fmt"
)

// ErrDecompression indicates a malformed compressed row.
var ErrDecompression = errors.New("sas7bdat: decompression failed")

// Func expands src into dst.
type Func func(dst, src []byte) error

// state tracks the read and write positions shared by both codecs.
type state struct {
	dst, src []byte
	di, si   int
	codec    string
}

func (s *state) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s: %s (src offset %d, dst offset %d)", ErrDecompression, s.codec, msg, s.si, s.di)
}

// next consumes one source byte.
func (s *state) next() (byte, error) {
	if s.si >= len(s.src) {
		return 0, s.errorf("unexpected end of stream")
	}
	b := s.src[s.si]
	s.si++
	return b, nil
}

// fill writes n copies of b.
func (s *state) fill(b byte, n int) error {
	if n > len(s.dst)-s.di {
		return s.errorf("run of %d overflows row", n)
	}
	end := s.di + n
	for i := s.di; i < end; i++ {
		s.dst[i] = b
	}
	s.di = end
	return nil
}

// literal copies n source bytes.
func (s *state) literal(n int) error {
	if n > len(s.src)-s.si {
		return s.errorf("literal of %d exceeds stream", n)
	}
	if n > len(s.dst)-s.di {
		return s.errorf("literal of %d overflows row", n)
	}
	copy(s.dst[s.di:], s.src[s.si:s.si+n])
	s.si += n
	s.di += n
	return nil
}

// back copies n bytes starting dist bytes behind the write position. The
// regions may overlap, in which case the copy repeats the pattern.
func (s *state) back(dist, n int) error {
	if dist <= 0 || dist > s.di {
		return s.errorf("back reference %d before start of row", dist)
	}
	if n > len(s.dst)-s.di {
		return s.errorf("pattern of %d overflows row", n)
	}
	from := s.di - dist
	for i := 0; i < n; i++ {
		s.dst[s.di+i] = s.dst[from+i]
	}
	s.di += n
	return nil
}

func (s *state) done() error {
	if s.di != len(s.dst) {
		return s.errorf("stream produced %d of %d bytes", s.di, len(s.dst))
	}
	return nil
}
