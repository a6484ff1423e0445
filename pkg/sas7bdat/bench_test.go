package sas7bdat_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/eunmann/sas7bdat/internal/sastest"
	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

type countSink struct{ n int }

func (s *countSink) SetProperties(*sas7bdat.Properties) error { return nil }

func (s *countSink) PushRow(int, sas7bdat.Row) error {
	s.n++
	return nil
}

func BenchmarkReadAll(b *testing.B) {
	for _, comp := range []sastest.Compression{sastest.None, sastest.RLE, sastest.RDC} {
		for _, n := range []int{1000, 10000} {
			f := largeFile(n)
			f.Compression = comp
			data := f.Bytes()
			b.Run(fmt.Sprintf("comp=%d/rows=%d", comp, n), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				b.ResetTimer()
				for range b.N {
					s := &countSink{}
					r, err := sas7bdat.New(bytes.NewReader(data), s)
					if err != nil {
						b.Fatalf("New failed: %v", err)
					}
					if err := r.ReadAll(); err != nil {
						b.Fatalf("ReadAll failed: %v", err)
					}
					if s.n != n {
						b.Fatalf("read %d rows, want %d", s.n, n)
					}
				}
			})
		}
	}
}

func BenchmarkSkip(b *testing.B) {
	data := largeFile(10000).Bytes()
	b.ReportAllocs()
	for range b.N {
		r, err := sas7bdat.New(bytes.NewReader(data), &countSink{})
		if err != nil {
			b.Fatalf("New failed: %v", err)
		}
		if ok, err := r.Skip(9999); !ok || err != nil {
			b.Fatalf("Skip = %v, %v", ok, err)
		}
	}
}
