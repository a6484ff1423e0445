//go:build !unix

package source

// Mmap falls back to a plain file where memory mapping is unavailable.
type Mmap = File

// OpenMmap opens path as a regular file.
func OpenMmap(path string) (*Mmap, error) {
	return OpenFile(path)
}
