//go:build unix

package source

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Mmap is a read-only memory-mapped file.
type Mmap struct {
	name string
	data []byte
}

// OpenMmap opens a file and maps it into memory.
func OpenMmap(path string) (*Mmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openErr(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &Mmap{name: path}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &Mmap{name: path, data: data}, nil
}

func (m *Mmap) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("mmap %s: negative offset %d", m.name, off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *Mmap) Size() int64 { return int64(len(m.data)) }

func (m *Mmap) Name() string { return m.name }

// Close unmaps the file.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap %s: %w", m.name, err)
	}
	return nil
}
