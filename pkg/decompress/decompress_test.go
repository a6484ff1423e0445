package decompress

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/eunmann/sas7bdat/internal/sastest"
)

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestRLE(t *testing.T) {
	literal64 := make([]byte, 64)
	for i := range literal64 {
		literal64[i] = byte('A' + i%26)
	}

	tests := []struct {
		name string
		src  []byte
		want []byte
	}{
		{"copy1", []byte{0x82, 'a', 'b', 'c'}, []byte("abc")},
		{"copy17", concat([]byte{0x90}, repeat('k', 17)), repeat('k', 17)},
		{"copy33", concat([]byte{0xA1}, repeat('k', 34)), repeat('k', 34)},
		{"copy49", concat([]byte{0xB0}, repeat('k', 49)), repeat('k', 49)},
		{"copy64", concat([]byte{0x00, 0x00}, literal64), literal64},
		{"insert byte3", []byte{0xC1, 'x'}, repeat('x', 4)},
		{"insert byte18", []byte{0x40, 0x02, 'z'}, repeat('z', 20)},
		{"insert at2", []byte{0xD0}, []byte("@@")},
		{"insert at17", []byte{0x50, 0x00}, repeat('@', 17)},
		{"insert blank2", []byte{0xE1}, []byte("   ")},
		{"insert blank17", []byte{0x60, 0x03}, repeat(' ', 20)},
		{"insert zero2", []byte{0xF0}, []byte{0, 0}},
		{"insert zero17", []byte{0x70, 0x01}, repeat(0, 18)},
		{
			"mixed",
			[]byte{0x81, 'h', 'i', 0xE0, 0xC0, '-', 0xF1},
			[]byte("hi  ---\x00\x00\x00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, len(tt.want))
			if err := RLE(dst, tt.src); err != nil {
				t.Fatalf("RLE failed: %v", err)
			}
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("RLE = %q, want %q", dst, tt.want)
			}
		})
	}
}

func TestRLEErrors(t *testing.T) {
	tests := []struct {
		name   string
		dstLen int
		src    []byte
	}{
		{"invalid command", 4, []byte{0x10, 0x00}},
		{"underrun", 5, []byte{0x82, 'a', 'b', 'c'}},
		{"overrun", 2, []byte{0x82, 'a', 'b', 'c'}},
		{"literal past end", 3, []byte{0x82, 'a'}},
		{"missing run byte", 4, []byte{0xC1}},
		{"empty stream", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RLE(make([]byte, tt.dstLen), tt.src)
			if !errors.Is(err, ErrDecompression) {
				t.Errorf("RLE error = %v, want ErrDecompression", err)
			}
		})
	}
}

func TestRDC(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		want []byte
	}{
		{"literals", []byte{0x00, 0x00, 'a', 'b', 'c'}, []byte("abc")},
		{"short run", []byte{0x80, 0x00, 0x02, 'x'}, repeat('x', 5)},
		{"long run", []byte{0x80, 0x00, 0x10, 0x01, 'q'}, repeat('q', 35)},
		{
			"short pattern",
			[]byte{0x10, 0x00, 'a', 'b', 'c', 0x60, 0x00},
			[]byte("abcabcabc"),
		},
		{
			"long pattern",
			[]byte{0x10, 0x00, 'a', 'b', 'c', 0x20, 0x00, 0x00},
			[]byte("abcabcabcabcabcabca"),
		},
		{
			"second control word",
			concat([]byte{0x00, 0x00}, repeat('m', 16), []byte{0x80, 0x00, 0x00, 'n'}),
			concat(repeat('m', 16), repeat('n', 3)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, len(tt.want))
			if err := RDC(dst, tt.src); err != nil {
				t.Fatalf("RDC failed: %v", err)
			}
			if !bytes.Equal(dst, tt.want) {
				t.Errorf("RDC = %q, want %q", dst, tt.want)
			}
		})
	}
}

func TestRDCErrors(t *testing.T) {
	tests := []struct {
		name   string
		dstLen int
		src    []byte
	}{
		{"truncated control word", 1, []byte{0x00}},
		{"back reference before start", 3, []byte{0x80, 0x00, 0x30, 0x00}},
		{"underrun", 4, []byte{0x00, 0x00, 'a', 'b', 'c'}},
		{"overrun", 2, []byte{0x00, 0x00, 'a', 'b', 'c'}},
		{"missing run byte", 5, []byte{0x80, 0x00, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RDC(make([]byte, tt.dstLen), tt.src)
			if !errors.Is(err, ErrDecompression) {
				t.Errorf("RDC error = %v, want ErrDecompression", err)
			}
		})
	}
}

// sampleRows mixes literals, long blank and zero padding, byte runs and
// repeated patterns.
func sampleRows() [][]byte {
	rng := rand.New(rand.NewSource(42))
	rows := [][]byte{
		[]byte("abc"),
		concat([]byte("name"), repeat(' ', 300)),
		concat(repeat(0, 7), []byte{0x3f, 0xf0}, repeat(0, 6)),
		bytes.Repeat([]byte("0123456789"), 40),
		concat(repeat('z', 500), repeat('@', 40), []byte("tail")),
	}
	noise := make([]byte, 700)
	for i := range noise {
		noise[i] = byte(rng.Intn(256))
	}
	return append(rows, noise)
}

func TestRoundTrip(t *testing.T) {
	codecs := []struct {
		name   string
		encode func([]byte) []byte
		decode Func
	}{
		{"rle", sastest.EncodeRLE, RLE},
		{"rdc", sastest.EncodeRDC, RDC},
	}

	for _, c := range codecs {
		for i, row := range sampleRows() {
			packed := c.encode(row)
			dst := make([]byte, len(row))
			if err := c.decode(dst, packed); err != nil {
				t.Fatalf("%s row %d: decode failed: %v", c.name, i, err)
			}
			if !bytes.Equal(dst, row) {
				t.Errorf("%s row %d: round trip mismatch", c.name, i)
			}
		}
	}
}
