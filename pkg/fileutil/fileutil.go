// Package fileutil provides the file handling used by batch conversion:
// atomic tmp+mv writes, output path derivation and skip-if-current checks.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/eunmann/sas7bdat/pkg/logging"
)

const tmpSuffix = ".tmp"

// Exists returns true if the file exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsNonEmpty returns true if the file exists and has non-zero size.
func IsNonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() > 0
}

// UpToDate reports whether out exists, is non-empty and is not older than
// in. Conversions use it to skip inputs that were already converted.
func UpToDate(in, out string) bool {
	oi, err := os.Stat(out)
	if err != nil || oi.Size() == 0 {
		return false
	}
	ii, err := os.Stat(in)
	if err != nil {
		return false
	}
	return !oi.ModTime().Before(ii.ModTime())
}

// OutputPath derives the output path for input in outDir with extension
// ext. Compression suffixes and the .sas7bdat extension are removed from
// the base name. An empty outDir keeps the input directory.
func OutputPath(in, outDir, ext string) string {
	base := filepath.Base(in)
	for _, suffix := range []string{".gz", ".zst", ".xz", ".sas7bdat"} {
		if strings.HasSuffix(strings.ToLower(base), suffix) {
			base = base[:len(base)-len(suffix)]
		}
	}
	if outDir == "" {
		outDir = filepath.Dir(in)
	}
	return filepath.Join(outDir, base+ext)
}

// WriteTmpThenMove writes through a temporary file in tmpDir, then
// renames it to outPath. writeFunc receives the temporary path and must
// write the complete file. On error the temporary file is removed and
// outPath is left untouched.
func WriteTmpThenMove(tmpDir, outPath string, writeFunc func(tmpPath string) error) error {
	if tmpDir == "" {
		tmpDir = filepath.Dir(outPath)
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("create tmp dir: %w", err)
	}

	tmp, err := os.CreateTemp(tmpDir, filepath.Base(outPath)+".*"+tmpSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := writeFunc(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := syncFile(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp to final: %w", err)
	}
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	err = f.Sync()
	f.Close()
	return err
}

// CleanupTmpFiles removes temporary files that an interrupted
// WriteTmpThenMove left next to outPath and returns how many it removed.
func CleanupTmpFiles(outPath string) (int, error) {
	dir, base := filepath.Split(outPath)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}
	var removed int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base+".") || !strings.HasSuffix(name, tmpSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove tmp file: %w", err)
		}
		removed++
	}
	if removed > 0 {
		logging.L().Debug().Int("files_removed", removed).Str("output", outPath).Msg("cleaned up tmp files")
	}
	return removed, nil
}
