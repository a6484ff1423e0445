package sas7bdat

import (
	"errors"
	"fmt"
	"io"

	"github.com/eunmann/sas7bdat/pkg/format"
)

// slot locates one stored row inside the current page.
type slot struct {
	off, length int
}

// rowSource walks the stored rows of a file in order, page by page. On a
// mixed page the row subheaders come before the inline rows.
type rowSource struct {
	pr    *format.PageReader
	md    *metadata
	props *Properties

	page  *format.Page
	slots []slot
	next  int
}

// load replaces the slot list with the rows stored on p.
func (s *rowSource) load(p *format.Page) error {
	s.page = p
	s.slots = s.slots[:0]
	s.next = 0

	if !p.Type.HasMetadata() && !p.Type.HasRows() {
		// metc pages can carry compressed row subheaders in some SAS 9.4
		// files. Those rows are not read; a short file then ends with
		// ErrTruncatedFile.
		s.md.log.Debug().Err(ErrUnsupportedPage).Int("page", p.Index).Stringer("type", p.Type).Msg("skipping page without rows")
		return nil
	}
	if p.Type == format.PageMeta || p.Type.IsMix() {
		ptrs, err := s.md.rowPointers(p)
		if err != nil {
			return err
		}
		for _, ptr := range ptrs {
			s.slots = append(s.slots, slot{off: ptr.Offset, length: ptr.Length})
		}
	}
	if !p.Type.HasRows() || s.props.RowLength == 0 {
		return nil
	}

	off := p.RowsOffset(s.props.Layout)
	capacity := (len(p.Buf) - off) / s.props.RowLength
	var n int
	if p.Type == format.PageData {
		n = p.BlockCount
		if n > capacity {
			return fmt.Errorf("%w: page %d declares %d rows, room for %d", ErrFormat, p.Index, n, capacity)
		}
	} else {
		n = min(s.props.RowCount, s.props.MixPageRowCount, max(capacity, 0))
	}
	for i := 0; i < n; i++ {
		s.slots = append(s.slots, slot{off: off + i*s.props.RowLength, length: s.props.RowLength})
	}
	return nil
}

// nextSlot returns the next stored row, reading pages as needed. The
// returned slot indexes into s.page.Buf.
func (s *rowSource) nextSlot() (slot, error) {
	for s.next >= len(s.slots) {
		n := 0
		if s.page != nil {
			n = s.page.Index + 1
		}
		p, err := s.pr.ReadPage(n)
		if errors.Is(err, io.EOF) {
			return slot{}, fmt.Errorf("%w: pages end before the declared %d rows", ErrTruncatedFile, s.props.RowCount)
		}
		if err != nil {
			return slot{}, err
		}
		if err := s.load(p); err != nil {
			return slot{}, err
		}
	}
	sl := s.slots[s.next]
	s.next++
	return sl, nil
}
