package source

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Digest returns the hex BLAKE3-256 hash of the whole source.
func Digest(s Source) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, io.NewSectionReader(s, 0, s.Size())); err != nil {
		return "", fmt.Errorf("hash %s: %w", s.Name(), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
