package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eunmann/sas7bdat/internal/sastest"
	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

func sampleFile() sastest.File {
	return sastest.File{
		Is64:        true,
		DatasetName: "SAMPLE",
		Encoding:    62,
		Columns: []sastest.Column{
			sastest.Num("ID"),
			sastest.Str("NAME", 8),
			{Name: "N", Numeric: true, Length: 2},
			{Name: "DAY", Numeric: true, Length: 8, Format: "DATE"},
			{Name: "WHEN", Numeric: true, Length: 8, Format: "DATETIME"},
			{Name: "AT", Numeric: true, Length: 8, Format: "TIME"},
		},
		Rows: [][]any{
			{1.0, "alpha", 7, 366.0, 86400.5, 3661.0},
			{2.5, "b,eta", -3, nil, nil, nil},
			{nil, "", 0, 0.0, 0.0, 0.0},
		},
	}
}

func readAll(t *testing.T, f sastest.File, s sas7bdat.Sink, opts ...sas7bdat.Option) {
	t.Helper()
	r, err := sas7bdat.New(bytes.NewReader(f.Bytes()), s, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Close()
	if err := r.ReadAll(); err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
}

func TestNull(t *testing.T) {
	s := &Null{}
	readAll(t, sampleFile(), s)
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.Props == nil || s.Props.DatasetName != "SAMPLE" {
		t.Errorf("Props = %+v, want dataset SAMPLE", s.Props)
	}
}

func TestRows(t *testing.T) {
	s := &Rows{}
	readAll(t, sampleFile(), s, sas7bdat.WithInclude("NAME"))
	if !s.Done {
		t.Error("Done = false after ReadAll")
	}
	if len(s.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(s.Rows))
	}
	want := []string{"alpha", "b,eta", ""}
	for i, row := range s.Rows {
		if len(row) != 1 || row[0].Str() != want[i] {
			t.Errorf("row %d = %v, want [%s]", i, row, want[i])
		}
	}
}

func TestChunks(t *testing.T) {
	s := &Chunks{Size: 2}
	readAll(t, sampleFile(), s)
	if !s.Done {
		t.Error("Done = false after ReadAll")
	}
	if len(s.Chunks) != 2 {
		t.Fatalf("len(Chunks) = %d, want 2", len(s.Chunks))
	}
	if c := s.Chunks[0]; c.Start != 0 || c.End != 2 || len(c.Rows) != 2 {
		t.Errorf("chunk 0 = [%d,%d) with %d rows, want [0,2) with 2", c.Start, c.End, len(c.Rows))
	}
	if c := s.Chunks[1]; c.Start != 2 || c.End != 3 || len(c.Rows) != 1 {
		t.Errorf("chunk 1 = [%d,%d) with %d rows, want [2,3) with 1", c.Start, c.End, len(c.Rows))
	}
}

func TestColumns(t *testing.T) {
	s := &Columns{}
	readAll(t, sampleFile(), s)
	if len(s.Data) != 6 {
		t.Fatalf("len(Data) = %d, want 6", len(s.Data))
	}
	ids, ok := s.Column("ID")
	if !ok {
		t.Fatal("Column(ID) not found")
	}
	if len(ids) != 3 || ids[0].Float64() != 1 || ids[1].Float64() != 2.5 || !ids[2].IsMissing() {
		t.Errorf("ID = %v, want [1 2.5 missing]", ids)
	}
	if _, ok := s.Column("NOPE"); ok {
		t.Error("Column(NOPE) found")
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	readAll(t, sampleFile(), NewPrint(&buf, nil))
	out := buf.String()

	for _, want := range []string{
		"Properties:\n  format: 64bits\n  endianness: little\n",
		"  dataset name: SAMPLE\n",
		"  encoding: WINDOWS-1252\n",
		"  compression: none\n",
		"  row count: 3\n  column count: 6\nColumns:\n",
		"  - column #3\n    name: DAY\n    label: \n    format: DATE\n    type: date\n",
		"Data:\n#,ID,NAME,N,DAY,WHEN,AT\n",
		"0,1,alpha,7,1961-01-01,1960-01-02 00:00:00.500000,01:01:01\n",
		"1,2.5,b,eta,-3,,,\n",
		"2,,,0,1960-01-01,1960-01-01 00:00:00,00:00:00\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestUniqueNames(t *testing.T) {
	cols := []sas7bdat.Column{
		{Name: "A", Index: 0},
		{Name: "a", Index: 1},
		{Name: "B", Index: 2},
		{Name: "", Index: 3},
		{Name: "A", Index: 4},
	}
	got := uniqueNames(cols)
	want := []string{"A", "a_2", "B", "col3", "A_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniqueNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
