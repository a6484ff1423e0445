package sink

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

func TestSQLiteConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SQLiteConfig
		wantErr bool
	}{
		{"default", DefaultSQLiteConfig("x.db"), false},
		{"no path", SQLiteConfig{}, true},
		{"bad synchronous", SQLiteConfig{DBPath: "x.db", Synchronous: "SOMETIMES"}, true},
		{"negative batch", SQLiteConfig{DBPath: "x.db", BatchSize: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "out.db")
	cfg := DefaultSQLiteConfig(dbPath)
	cfg.BatchSize = 2

	s, err := OpenSQLite(cfg, nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	readAll(t, sampleFile(), s)
	if s.Table() != "SAMPLE" || s.Rows() != 3 {
		t.Errorf("Table, Rows = %q, %d, want SAMPLE, 3", s.Table(), s.Rows())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "SAMPLE"`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	var (
		id   sql.NullFloat64
		name string
		n    int64
		day  sql.NullString
	)
	row := db.QueryRow(`SELECT "ID", "NAME", "N", "DAY" FROM "SAMPLE" WHERE "N" = -3`)
	if err := row.Scan(&id, &name, &n, &day); err != nil {
		t.Fatalf("row query failed: %v", err)
	}
	if !id.Valid || id.Float64 != 2.5 || name != "b,eta" || n != -3 || day.Valid {
		t.Errorf("row = %v, %q, %d, %v, want 2.5, b,eta, -3, NULL", id, name, n, day)
	}

	if err := db.QueryRow(`SELECT "DAY" FROM "SAMPLE" WHERE "N" = 7`).Scan(&day); err != nil {
		t.Fatalf("date query failed: %v", err)
	}
	if day.String != "1961-01-01" {
		t.Errorf("DAY = %q, want 1961-01-01", day.String)
	}
}

func TestSQLiteReplace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "out.db")
	for i := 0; i < 2; i++ {
		cfg := DefaultSQLiteConfig(dbPath)
		cfg.Replace = true
		cfg.Table = "t"
		s, err := OpenSQLite(cfg, nil)
		if err != nil {
			t.Fatalf("OpenSQLite failed: %v", err)
		}
		readAll(t, sampleFile(), s, sas7bdat.WithInclude("ID"))
		if err := s.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 after replace", count)
	}
}

func TestSQLiteRollback(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "out.db")
	s, err := OpenSQLite(DefaultSQLiteConfig(dbPath), nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.SetProperties(&sas7bdat.Properties{Columns: []sas7bdat.Column{{Name: "X", Type: sas7bdat.TypeNumber}}}); err != nil {
		t.Fatalf("SetProperties failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sas7bdat`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rollback", count)
	}
}
