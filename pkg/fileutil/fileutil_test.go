package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExistsAndNonEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	full := filepath.Join(dir, "full")
	os.WriteFile(empty, nil, 0o644)
	os.WriteFile(full, []byte("x"), 0o644)

	if !Exists(empty) || Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists gave wrong answer")
	}
	if IsNonEmpty(empty) || !IsNonEmpty(full) {
		t.Error("IsNonEmpty gave wrong answer")
	}
}

func TestUpToDate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.sas7bdat")
	out := filepath.Join(dir, "a.csv")
	os.WriteFile(in, []byte("in"), 0o644)

	if UpToDate(in, out) {
		t.Error("missing output reported up to date")
	}
	os.WriteFile(out, []byte("out"), 0o644)
	old := time.Now().Add(-time.Hour)
	os.Chtimes(in, old, old)
	if !UpToDate(in, out) {
		t.Error("newer output not up to date")
	}
	os.Chtimes(out, old.Add(-time.Hour), old.Add(-time.Hour))
	if UpToDate(in, out) {
		t.Error("older output reported up to date")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, outDir, ext string
		want            string
	}{
		{"/data/a.sas7bdat", "", ".csv", "/data/a.csv"},
		{"/data/a.sas7bdat", "/out", ".parquet", "/out/a.parquet"},
		{"/data/b.SAS7BDAT.gz", "/out", ".csv.zst", "/out/b.csv.zst"},
		{"c.sas7bdat.xz", "o", ".db", filepath.Join("o", "c.db")},
		{"noext", "", ".txt", "noext.txt"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in, tt.outDir, tt.ext); got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.in, tt.outDir, tt.ext, got, tt.want)
		}
	}
}

func TestWriteTmpThenMove(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out", "a.csv")

	err := WriteTmpThenMove(filepath.Join(dir, "tmp"), outPath, func(tmpPath string) error {
		return os.WriteFile(tmpPath, []byte("rows"), 0o644)
	})
	if err != nil {
		t.Fatalf("WriteTmpThenMove failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil || string(data) != "rows" {
		t.Errorf("output = %q, %v", data, err)
	}
	if entries, _ := os.ReadDir(filepath.Join(dir, "tmp")); len(entries) != 0 {
		t.Errorf("tmp dir not empty: %v", entries)
	}
}

func TestWriteTmpThenMoveError(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "a.csv")
	os.WriteFile(outPath, []byte("previous"), 0o644)

	boom := errors.New("boom")
	var tmpSeen string
	err := WriteTmpThenMove("", outPath, func(tmpPath string) error {
		tmpSeen = tmpPath
		os.WriteFile(tmpPath, []byte("partial"), 0o644)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if Exists(tmpSeen) {
		t.Error("temp file left behind")
	}
	if data, _ := os.ReadFile(outPath); string(data) != "previous" {
		t.Errorf("output overwritten: %q", data)
	}
}

func TestCleanupTmpFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.csv")
	stale := []string{"a.csv.123.tmp", "a.csv.456.tmp"}
	keep := []string{"a.csv", "b.csv.789.tmp", "a.csv.bak"}
	for _, name := range append(stale, keep...) {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	n, err := CleanupTmpFiles(out)
	if err != nil {
		t.Fatalf("CleanupTmpFiles failed: %v", err)
	}
	if n != len(stale) {
		t.Errorf("removed %d files, want %d", n, len(stale))
	}
	for _, name := range stale {
		if Exists(filepath.Join(dir, name)) {
			t.Errorf("%s not removed", name)
		}
	}
	for _, name := range keep {
		if !Exists(filepath.Join(dir, name)) {
			t.Errorf("%s removed", name)
		}
	}

	if n, err := CleanupTmpFiles(filepath.Join(dir, "missing", "x.csv")); n != 0 || err != nil {
		t.Errorf("CleanupTmpFiles on missing dir = %d, %v", n, err)
	}
}
