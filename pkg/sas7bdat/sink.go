package sas7bdat

// Sink receives the file properties once, when the Reader is created. A
// sink must also implement at least one of RowSink, ChunkSink or DataSink.
type Sink interface {
	SetProperties(p *Properties) error
}

// RowSink receives rows one at a time.
type RowSink interface {
	Sink
	PushRow(index int, row Row) error
}

// ChunkSink receives rows in batches covering indices [start, end).
type ChunkSink interface {
	Sink
	// ChunkSize is the preferred batch size. Values below one select the
	// Reader's configured size.
	ChunkSize() int
	PushRows(start, end int, rows []Row) error
}

// DataSink receives every delivered row at once, column by column, when
// reading ends.
type DataSink interface {
	Sink
	SetData(cols []ColumnData) error
}

// EndOfDataSink is notified once after the last row has been delivered.
type EndOfDataSink interface {
	EndOfData() error
}

// ColumnData holds all delivered values of one retained column.
type ColumnData struct {
	Column Column
	Values []Value
}

// protocol is the push protocol a Reader uses for its sink.
type protocol uint8

const (
	protoRow protocol = iota
	protoChunk
	protoData
)

// pickProtocol prefers whole-table delivery, then batches, then single rows.
func pickProtocol(s Sink) (protocol, error) {
	switch s.(type) {
	case DataSink:
		return protoData, nil
	case ChunkSink:
		return protoChunk, nil
	case RowSink:
		return protoRow, nil
	}
	return 0, ErrInvalidSink
}
