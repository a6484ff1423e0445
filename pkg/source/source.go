// Package source opens the byte sources SAS7BDAT files are read from:
// local files, memory-mapped files, compressed files spooled to disk and
// S3 objects.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source is a random-access input with a known size.
type Source interface {
	io.ReaderAt
	io.Closer
	Size() int64
	Name() string
}

// Config controls how Open resolves a name.
type Config struct {
	// Mmap maps local uncompressed files into memory instead of reading
	// them with pread.
	Mmap bool
	// TempDir holds spooled and downloaded files. Empty means os.TempDir().
	TempDir string
	// S3Download fetches S3 objects to a temp file with the download
	// manager. Otherwise objects are read with ranged GETs.
	S3Download bool
	// Downloader configures the S3 download manager.
	Downloader DownloaderConfig
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		Mmap:       true,
		S3Download: true,
		Downloader: DefaultDownloaderConfig(),
	}
}

// ErrNotFound indicates a local path that does not exist.
var ErrNotFound = errors.New("source: not found")

// Open resolves name to a Source. Names of the form s3://bucket/key are
// fetched from S3; names ending in .gz, .zst or .xz are decompressed to a
// temp file first.
func Open(ctx context.Context, name string, cfg Config) (Source, error) {
	if bucket, key, ok := ParseS3URL(name); ok {
		client, err := NewClient(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.S3Download {
			return NewDownloader(client, cfg.Downloader, cfg.TempDir).Download(ctx, bucket, key)
		}
		return client.Object(ctx, bucket, key)
	}

	if codec := codecFor(name); codec != nil {
		f, err := os.Open(name)
		if err != nil {
			return nil, openErr(name, err)
		}
		defer f.Close()
		return spool(name, f, codec, cfg.TempDir)
	}
	if cfg.Mmap {
		return OpenMmap(name)
	}
	return OpenFile(name)
}

func openErr(name string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("open %s: %w", name, err)
}

// ParseS3URL splits s3://bucket/key. ok is false for anything else.
func ParseS3URL(name string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(name, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// File is a Source backed by an open file.
type File struct {
	f    *os.File
	size int64
	name string
	// remove deletes the file on Close.
	remove bool
}

// OpenFile opens a local file.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openErr(path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &File{f: f, size: info.Size(), name: path}, nil
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.f.ReadAt(p, off)
}

func (f *File) Size() int64 { return f.size }

func (f *File) Name() string { return f.name }

// Close closes the file, deleting it if it was a temp file.
func (f *File) Close() error {
	err := f.f.Close()
	if f.remove {
		if rerr := os.Remove(f.f.Name()); rerr != nil && err == nil && !errors.Is(rerr, os.ErrNotExist) {
			err = rerr
		}
	}
	return err
}
