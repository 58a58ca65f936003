// Package store archives built strategy tables in SQLite or Postgres so that
// runs can be listed, compared and reloaded without keeping loose files.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/behrlich/postflop-solver/pkg/dataset"
)

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	// ErrNotFound is returned when no archived table matches
	ErrNotFound = errors.New("table not found")
	// ErrDuplicateRun is returned when a run id is archived twice
	ErrDuplicateRun = errors.New("run already archived")
)

// Run summarizes one archived table
type Run struct {
	ID         int64
	RunID      string
	Name       string
	Version    int
	Iterations int
	Seed       int64
	States     int
	Bytes      int
	CreatedAt  time.Time
}

// Store is a table archive backed by database/sql
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the archive and creates its schema if needed.
// For sqlite the dsn is a file path or ":memory:".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty %s dsn", driver)
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		db, err = openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q (supported: %s, %s)", driver, DriverSQLite, DriverPostgres)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return s, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	id, blob := "INTEGER PRIMARY KEY AUTOINCREMENT", "BLOB"
	if s.driver == DriverPostgres {
		id, blob = "BIGSERIAL PRIMARY KEY", "BYTEA"
	}

	statements := []string{
		`
CREATE TABLE IF NOT EXISTS strategy_tables (
    id ` + id + `,
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    version INTEGER NOT NULL,
    iterations INTEGER NOT NULL,
    seed BIGINT NOT NULL,
    states INTEGER NOT NULL,
    snapshot ` + blob + ` NOT NULL,
    created_at_ms BIGINT NOT NULL
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_strategy_tables_run_id ON strategy_tables(run_id)`,
		`CREATE INDEX IF NOT EXISTS ix_strategy_tables_name ON strategy_tables(name, id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveTable archives the table as a binary snapshot and returns its row id.
// When t.Meta.RunID is empty, SaveTable assigns a fresh uuid to it before
// writing, so callers can read the run id back from t afterwards.
func (s *Store) SaveTable(ctx context.Context, t *dataset.Table) (int64, error) {
	if t.Meta.RunID == "" {
		t.Meta.RunID = uuid.NewString()
	}
	snapshot, err := t.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("error encoding table: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, s.rebind(`
INSERT INTO strategy_tables (run_id, name, version, iterations, seed, states, snapshot, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), t.Meta.RunID, t.Meta.Name, t.Meta.Version, t.Meta.Iterations, t.Meta.Seed, t.Len(), snapshot,
		time.Now().UTC().UnixMilli()).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateRun, t.Meta.RunID)
		}
		return 0, err
	}
	return id, nil
}

// LoadTable returns the archived table with the given run id
func (s *Store) LoadTable(ctx context.Context, runID string) (*dataset.Table, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
SELECT snapshot FROM strategy_tables WHERE run_id = ?
`), runID)
	return scanTable(row, runID)
}

// LatestTable returns the most recently archived table with the given name
func (s *Store) LatestTable(ctx context.Context, name string) (*dataset.Table, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
SELECT snapshot FROM strategy_tables WHERE name = ? ORDER BY id DESC LIMIT 1
`), name)
	return scanTable(row, name)
}

func scanTable(row *sql.Row, ref string) (*dataset.Table, error) {
	var snapshot []byte
	if err := row.Scan(&snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}

	t := dataset.NewTable()
	if err := t.UnmarshalBinary(snapshot); err != nil {
		return nil, fmt.Errorf("error decoding archived table %s: %w", ref, err)
	}
	return t, nil
}

// ListRuns returns every archived run, newest first
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, run_id, name, version, iterations, seed, states, LENGTH(snapshot), created_at_ms
FROM strategy_tables
ORDER BY id DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			createdMs int64
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.Name, &r.Version, &r.Iterations, &r.Seed,
			&r.States, &r.Bytes, &createdMs); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(createdMs).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes an archived run
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM strategy_tables WHERE run_id = ?`), runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
