package sink

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/eunmann/sas7bdat/internal/sastest"
)

const sampleCSV = "ID,NAME,N,DAY,WHEN,AT\n" +
	"1,alpha,7,1961-01-01,1960-01-02 00:00:00.500000,01:01:01\n" +
	"2.5,\"b,eta\",-3,,,\n" +
	",,0,1960-01-01,1960-01-01 00:00:00,00:00:00\n"

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSV(&buf, DefaultCSVConfig())
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	readAll(t, sampleFile(), s)
	if got := buf.String(); got != sampleCSV {
		t.Errorf("output =\n%s\nwant\n%s", got, sampleCSV)
	}
	if s.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", s.Rows())
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestCSVOptions(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewCSV(&buf, CSVConfig{Comma: ';', NoHeader: true})
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	f := sampleFile()
	f.Rows = f.Rows[1:2]
	readAll(t, f, s)
	if got, want := buf.String(), "2.5;b,eta;-3;;;\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if _, err := NewCSV(&buf, CSVConfig{Comma: '"'}); err == nil {
		t.Error("NewCSV with quote separator succeeded, want error")
	}
}

func TestCSVZstd(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultCSVConfig()
	cfg.Zstd = true
	s, err := NewCSV(&buf, cfg)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	readAll(t, sampleFile(), s)

	dec, err := zstd.NewReader(&buf)
	if err != nil {
		t.Fatalf("zstd.NewReader failed: %v", err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != sampleCSV {
		t.Errorf("decompressed =\n%s\nwant\n%s", got, sampleCSV)
	}
}

func TestCSVTextDecoding(t *testing.T) {
	f := sastest.File{
		Columns: []sastest.Column{sastest.Str("S", 6)},
		Rows:    [][]any{{[]byte("caf\xe9")}, {"plain"}},
	}
	text, err := NewTextDecoder("WINDOWS-1252")
	if err != nil {
		t.Fatalf("NewTextDecoder failed: %v", err)
	}
	var buf bytes.Buffer
	s, err := NewCSV(&buf, CSVConfig{Text: text})
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	readAll(t, f, s)
	if got, want := buf.String(), "S\ncafé\nplain\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
