package sink

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/eunmann/sas7bdat/pkg/logging"
	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

// SQLiteConfig holds configuration for a SQLite sink.
type SQLiteConfig struct {
	// DBPath is the database file. Required.
	DBPath string
	// Table is the destination table. Empty uses the dataset name.
	Table string
	// Synchronous sets the SQLite synchronous pragma: OFF, NORMAL or FULL.
	Synchronous string
	// BatchSize is the number of rows per chunk.
	BatchSize int
	// Replace drops an existing table of the same name first.
	Replace bool
}

// DefaultSQLiteConfig returns a configuration tuned for bulk loading.
func DefaultSQLiteConfig(dbPath string) SQLiteConfig {
	return SQLiteConfig{
		DBPath:      dbPath,
		Synchronous: "NORMAL",
		BatchSize:   10000,
	}
}

// Validate checks configuration values and returns an error for invalid settings.
func (c *SQLiteConfig) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DBPath is required")
	}
	switch c.Synchronous {
	case "", "OFF", "NORMAL", "FULL":
	default:
		return fmt.Errorf("invalid Synchronous value %q: must be OFF, NORMAL, or FULL", c.Synchronous)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("BatchSize must be non-negative, got %d", c.BatchSize)
	}
	return nil
}

// SQLite loads rows into one table. All rows are inserted inside a single
// transaction that commits at the end of the data.
type SQLite struct {
	cfg   SQLiteConfig
	db    *sql.DB
	tx    *sql.Tx
	stmt  *sql.Stmt
	text  *TextDecoder
	log   zerolog.Logger
	table string
	args  []any
	rows  int

	committed bool
	closed    bool
}

// OpenSQLite opens or creates the database. The table is created when the
// reader delivers the schema.
func OpenSQLite(cfg SQLiteConfig, text *TextDecoder) (*SQLite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Synchronous == "" {
		cfg.Synchronous = "NORMAL"
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA synchronous=%s", cfg.Synchronous),
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute pragma %q: %w", pragma, err)
		}
	}

	return &SQLite{
		cfg:  cfg,
		db:   db,
		text: text,
		log:  logging.WithPhase("sqlite"),
	}, nil
}

// Table returns the destination table name.
func (s *SQLite) Table() string {
	return s.table
}

// Rows returns the number of rows inserted.
func (s *SQLite) Rows() int {
	return s.rows
}

func (s *SQLite) SetProperties(p *sas7bdat.Properties) error {
	s.table = s.cfg.Table
	if s.table == "" {
		s.table = p.DatasetName
	}
	if s.table == "" {
		s.table = "sas7bdat"
	}

	names := uniqueNames(p.Columns)
	var cols, marks strings.Builder
	for i, c := range p.Columns {
		if i > 0 {
			cols.WriteString(",\n    ")
			marks.WriteString(", ")
		}
		fmt.Fprintf(&cols, "%s %s", quoteIdent(names[i]), sqliteType(c.Type))
		marks.WriteString("?")
	}

	if s.cfg.Replace {
		if _, err := s.db.Exec("DROP TABLE IF EXISTS " + quoteIdent(s.table)); err != nil {
			return fmt.Errorf("drop table %s: %w", s.table, err)
		}
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", quoteIdent(s.table), cols.String())
	if _, err := s.db.Exec(create); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(s.table), marks.String())
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	s.tx = tx
	s.stmt = stmt
	s.args = make([]any, len(p.Columns))

	s.log.Debug().
		Str("db_path", s.cfg.DBPath).
		Str("table", s.table).
		Int("columns", len(p.Columns)).
		Msg("created SQLite table")
	return nil
}

func sqliteType(t sas7bdat.ColumnType) string {
	switch t {
	case sas7bdat.TypeNumber:
		return "REAL"
	case sas7bdat.TypeInteger:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *SQLite) ChunkSize() int {
	return s.cfg.BatchSize
}

func (s *SQLite) PushRows(start, end int, rows []sas7bdat.Row) error {
	begin := time.Now()
	for i, row := range rows {
		for j, v := range row {
			s.args[j] = s.sqlValue(v)
		}
		if _, err := s.stmt.Exec(s.args...); err != nil {
			return fmt.Errorf("insert row %d: %w", start+i, err)
		}
	}
	s.rows += len(rows)
	logging.BatchComplete(s.log, "sqlite", time.Since(begin)).
		Int("start", start).
		Int("end", end).
		RowRate(int64(len(rows))).
		LogDebug("inserted batch")
	return nil
}

func (s *SQLite) sqlValue(v sas7bdat.Value) any {
	if v.IsMissing() {
		return nil
	}
	switch v.Type() {
	case sas7bdat.TypeString:
		return s.text.Decode(v.Str())
	case sas7bdat.TypeNumber:
		return v.Float64()
	case sas7bdat.TypeInteger:
		return v.Int()
	}
	return v.String()
}

// EndOfData commits the transaction.
func (s *SQLite) EndOfData() error {
	if s.tx == nil || s.committed {
		return nil
	}
	if err := s.stmt.Close(); err != nil {
		return fmt.Errorf("close insert statement: %w", err)
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.committed = true
	s.log.Debug().Str("table", s.table).Int("rows", s.rows).Msg("committed SQLite table")
	return nil
}

// Close rolls back an uncommitted transaction and closes the database.
func (s *SQLite) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.tx != nil && !s.committed {
		s.stmt.Close()
		if rbErr := s.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("rollback: %w", rbErr)
		}
	}
	return errors.Join(err, s.db.Close())
}
