// Package sas7bdat reads SAS7BDAT data sets and pushes decoded rows to a
// caller supplied sink.
//
// A Reader parses the header and the leading metadata pages when it is
// created, then decodes rows on demand:
//
//	r, err := sas7bdat.Open("data.sas7bdat", sink, sas7bdat.WithExclude("RAS"))
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	return r.ReadAll()
//
// A Reader is not safe for concurrent use. Independent Readers over the
// same file are.
package sas7bdat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eunmann/sas7bdat/pkg/decompress"
	"github.com/eunmann/sas7bdat/pkg/format"
	"github.com/eunmann/sas7bdat/pkg/logging"
	"github.com/rs/zerolog"
)

// Reader decodes the rows of one file.
type Reader struct {
	props *Properties
	sink  Sink
	proto protocol
	log   zerolog.Logger

	rows       rowSource
	inflate    decompress.Func
	index      int
	chunkSize  int
	chunk      []Row
	chunkStart int
	data       [][]Value

	err      error
	finished bool
	closer   io.Closer
}

// New parses the header and metadata of src, applies the column filter
// and hands the resulting properties to sink.
func New(src io.ReaderAt, sink Sink, opts ...Option) (*Reader, error) {
	o := options{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.filter.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, ErrInvalidSink
	}
	proto, err := pickProtocol(sink)
	if err != nil {
		return nil, err
	}

	log := logging.WithPhase("sas7bdat")
	if o.logger != nil {
		log = *o.logger
	}
	if o.filename != "" {
		log = log.With().Str("file", o.filename).Logger()
	}

	h, err := format.ReadHeader(src)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	log.Debug().
		Str("layout", h.Width.String()+"/"+h.Endian.String()).
		Str("encoding", h.Encoding).
		Int("page_length", h.PageLength).
		Int("page_count", h.PageCount).
		Msg("header parsed")

	props := &Properties{Header: h, Filename: o.filename}
	r := &Reader{
		props: props,
		sink:  sink,
		proto: proto,
		log:   log,
	}
	if err := r.readMetadata(src, o.filter); err != nil {
		return nil, err
	}

	switch proto {
	case protoChunk:
		r.chunkSize = sink.(ChunkSink).ChunkSize()
		if r.chunkSize < 1 {
			r.chunkSize = o.chunkSize
		}
		if r.chunkSize < 1 {
			r.chunkSize = DefaultChunkSize
		}
	case protoData:
		r.data = make([][]Value, len(props.Columns))
	}

	if err := sink.SetProperties(props.clone()); err != nil {
		return nil, fmt.Errorf("sink properties: %w", err)
	}
	return r, nil
}

// Open opens the named file and returns a Reader over it. Close releases
// the file.
func Open(path string, sink Sink, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithFilename(path)}, opts...)
	r, err := New(f, sink, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// readMetadata walks pages until the first one carrying rows, then builds
// the filtered schema. That page becomes the first page of the row source.
func (r *Reader) readMetadata(src io.ReaderAt, filter Filter) error {
	props := r.props
	pr := format.NewPageReader(src, props.Header)
	md := newMetadata(props, r.log)
	r.rows = rowSource{pr: pr, md: md, props: props}

	var last *format.Page
	for n := 0; ; n++ {
		p, err := pr.ReadPage(n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		last = p
		if !p.Type.HasMetadata() {
			if p.Type.HasRows() {
				break
			}
			r.log.Debug().Err(ErrUnsupportedPage).Int("page", p.Index).Stringer("type", p.Type).Msg("skipping page")
			continue
		}
		rowPtrs, err := md.processPage(p)
		if err != nil {
			return err
		}
		if len(rowPtrs) > 0 || p.Type.HasRows() {
			break
		}
	}

	cols, err := md.columns()
	if err != nil {
		return err
	}
	if props.Columns, err = filter.Apply(cols); err != nil {
		return err
	}

	switch props.Compression {
	case CompressionRLE:
		r.inflate = decompress.RLE
	case CompressionRDC:
		r.inflate = decompress.RDC
	}
	r.log.Debug().
		Str("compression", props.Compression.String()).
		Int("columns", props.ColumnCount).
		Int("retained", len(props.Columns)).
		Int("rows", props.RowCount).
		Msg("metadata parsed")

	if last != nil {
		return r.rows.load(last)
	}
	return nil
}

// Properties returns a copy of the file properties with the retained
// schema.
func (r *Reader) Properties() *Properties {
	return r.props.clone()
}

// CurrentRowIndex returns the index of the next row to be read.
func (r *Reader) CurrentRowIndex() int {
	return r.index
}

// Err returns the error that stopped the Reader, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	return r.err
}

// ReadRow decodes the next row and delivers it to the sink. It returns
// false once every row has been read, at which point the sink is notified
// of the end of data.
func (r *Reader) ReadRow() (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.index >= r.props.RowCount {
		return false, r.EndOfData()
	}
	index := r.index
	row, err := r.decodeNext()
	if err != nil {
		return false, err
	}
	if err := r.deliver(index, row); err != nil {
		return false, r.fail(err)
	}
	return true, nil
}

// ReadRows reads up to n rows. It returns true if all n were read.
func (r *Reader) ReadRows(n int) (bool, error) {
	for ; n > 0; n-- {
		ok, err := r.ReadRow()
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ReadAll reads every remaining row and ends the data.
func (r *Reader) ReadAll() error {
	for {
		ok, err := r.ReadRow()
		if err != nil || !ok {
			return err
		}
	}
}

// ReadRowNoSink decodes the next row and returns it without involving the
// sink. The boolean is false once every row has been read.
func (r *Reader) ReadRowNoSink() (Row, bool, error) {
	if r.err != nil {
		return nil, false, r.err
	}
	if r.index >= r.props.RowCount {
		return nil, false, nil
	}
	row, err := r.decodeNext()
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// Skip advances the cursor by n rows without decoding them. It returns
// false, leaving the cursor in place, when n is negative or would move
// past the last row.
func (r *Reader) Skip(n int) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if n < 0 || r.index+n > r.props.RowCount {
		return false, nil
	}
	if err := r.flushChunk(); err != nil {
		return false, r.fail(err)
	}
	for ; n > 0; n-- {
		if _, err := r.rows.nextSlot(); err != nil {
			return false, r.fail(fmt.Errorf("skip row %d: %w", r.index, err))
		}
		r.index++
	}
	return true, nil
}

// EndOfData flushes rows still buffered for the sink and notifies it that
// no more rows follow. Only the first call has an effect.
func (r *Reader) EndOfData() error {
	if r.err != nil {
		return r.err
	}
	if r.finished {
		return nil
	}
	r.finished = true
	if err := r.flushChunk(); err != nil {
		return r.fail(err)
	}
	if r.proto == protoData {
		cols := make([]ColumnData, len(r.props.Columns))
		for i, c := range r.props.Columns {
			cols[i] = ColumnData{Column: c, Values: r.data[i]}
		}
		r.data = nil
		if err := r.sink.(DataSink).SetData(cols); err != nil {
			return r.fail(fmt.Errorf("sink data: %w", err))
		}
	}
	if s, ok := r.sink.(EndOfDataSink); ok {
		if err := s.EndOfData(); err != nil {
			return r.fail(fmt.Errorf("sink end of data: %w", err))
		}
	}
	return nil
}

// Close releases the file opened by Open. It does not notify the sink.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// decodeNext decodes the row at the cursor and advances it.
func (r *Reader) decodeNext() (Row, error) {
	sl, err := r.rows.nextSlot()
	if err != nil {
		return nil, r.fail(fmt.Errorf("row %d: %w", r.index, err))
	}
	raw, err := r.rowBytes(sl)
	if err != nil {
		return nil, r.fail(fmt.Errorf("row %d: %w", r.index, err))
	}
	row := make(Row, len(r.props.Columns))
	for i := range r.props.Columns {
		row[i] = r.props.Columns[i].decode(raw)
	}
	r.index++
	return row, nil
}

// rowBytes returns a fresh copy of the uncompressed row stored in sl.
func (r *Reader) rowBytes(sl slot) ([]byte, error) {
	n := r.props.RowLength
	stored := r.rows.page.Buf[sl.off : sl.off+sl.length]
	out := make([]byte, n)
	if len(stored) >= n {
		copy(out, stored)
		return out, nil
	}
	if r.inflate == nil {
		return nil, fmt.Errorf("%w: stored row of %d bytes, row length %d", ErrFormat, len(stored), n)
	}
	if err := r.inflate(out, stored); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reader) deliver(index int, row Row) error {
	switch r.proto {
	case protoRow:
		if err := r.sink.(RowSink).PushRow(index, row); err != nil {
			return fmt.Errorf("sink row %d: %w", index, err)
		}
	case protoChunk:
		if len(r.chunk) == 0 {
			r.chunkStart = index
			r.chunk = make([]Row, 0, min(r.chunkSize, r.props.RowCount-index))
		}
		r.chunk = append(r.chunk, row)
		if len(r.chunk) >= r.chunkSize {
			return r.flushChunk()
		}
	case protoData:
		for i, v := range row {
			r.data[i] = append(r.data[i], v)
		}
	}
	return nil
}

func (r *Reader) flushChunk() error {
	if len(r.chunk) == 0 {
		return nil
	}
	rows := r.chunk
	r.chunk = nil
	if err := r.sink.(ChunkSink).PushRows(r.chunkStart, r.chunkStart+len(rows), rows); err != nil {
		return fmt.Errorf("sink rows [%d,%d): %w", r.chunkStart, r.chunkStart+len(rows), err)
	}
	return nil
}
