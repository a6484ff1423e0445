package sink

import "github.com/eunmann/sas7bdat/pkg/sas7bdat"

// Null discards rows and counts them.
type Null struct {
	Props *sas7bdat.Properties
	Count int
}

// SetProperties implements sas7bdat.Sink.
func (n *Null) SetProperties(p *sas7bdat.Properties) error {
	n.Props = p
	return nil
}

// PushRow implements sas7bdat.RowSink.
func (n *Null) PushRow(int, sas7bdat.Row) error {
	n.Count++
	return nil
}
