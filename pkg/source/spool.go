package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// codec opens a decompressing stream over r.
type codec func(r io.Reader) (io.ReadCloser, error)

var codecs = map[string]codec{
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".xz": func(r io.Reader) (io.ReadCloser, error) {
		x, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(x), nil
	},
}

func codecFor(name string) codec {
	return codecs[strings.ToLower(filepath.Ext(name))]
}

// IsCompressed reports whether Open decompresses name before reading it.
func IsCompressed(name string) bool {
	return codecFor(name) != nil
}

// spool decompresses r into a temp file that is removed on Close. The
// format needs random access, so streams cannot be read in place.
func spool(name string, r io.Reader, c codec, tempDir string) (*File, error) {
	dec, err := c(r)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	defer dec.Close()

	tmp, err := os.CreateTemp(tempDir, "sas7bdat-spool-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(tmp, dec)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	return &File{f: tmp, size: n, name: name, remove: true}, nil
}
