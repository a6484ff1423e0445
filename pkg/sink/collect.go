package sink

import "github.com/eunmann/sas7bdat/pkg/sas7bdat"

// Rows keeps every row in memory.
type Rows struct {
	Props *sas7bdat.Properties
	Rows  []sas7bdat.Row
	// Done is set once the reader reports the end of the data.
	Done bool
}

func (s *Rows) SetProperties(p *sas7bdat.Properties) error {
	s.Props = p
	return nil
}

func (s *Rows) PushRow(_ int, row sas7bdat.Row) error {
	s.Rows = append(s.Rows, row)
	return nil
}

func (s *Rows) EndOfData() error {
	s.Done = true
	return nil
}

// Chunk is one batch delivered to Chunks, covering rows [Start, End).
type Chunk struct {
	Start, End int
	Rows       []sas7bdat.Row
}

// Chunks keeps every delivered batch in memory.
type Chunks struct {
	// Size is the requested batch size. Zero leaves the choice to the reader.
	Size   int
	Props  *sas7bdat.Properties
	Chunks []Chunk
	Done   bool
}

func (s *Chunks) SetProperties(p *sas7bdat.Properties) error {
	s.Props = p
	return nil
}

func (s *Chunks) ChunkSize() int {
	return s.Size
}

func (s *Chunks) PushRows(start, end int, rows []sas7bdat.Row) error {
	s.Chunks = append(s.Chunks, Chunk{Start: start, End: end, Rows: rows})
	return nil
}

func (s *Chunks) EndOfData() error {
	s.Done = true
	return nil
}

// Columns receives the table column by column at the end of the data.
type Columns struct {
	Props *sas7bdat.Properties
	Data  []sas7bdat.ColumnData
}

func (s *Columns) SetProperties(p *sas7bdat.Properties) error {
	s.Props = p
	return nil
}

func (s *Columns) SetData(cols []sas7bdat.ColumnData) error {
	s.Data = cols
	return nil
}

// Column returns the values of the first column with the given name.
func (s *Columns) Column(name string) ([]sas7bdat.Value, bool) {
	for _, c := range s.Data {
		if c.Column.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}
