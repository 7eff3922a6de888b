package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// sqlite driver for the smart-home store.
	_ "modernc.org/sqlite"
)

// SQLite implements Backend over a SQLite store.
type SQLite struct {
	db   *sql.DB
	path string
}

// Open connects to the SQLite store at cfg.Path and verifies the connection.
func Open(ctx context.Context, cfg Config) (*SQLite, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening store at %s: %v", ErrBackend, path, err)
	}
	// The console is single-caller; a second connection would see its own
	// private :memory: database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: pinging store at %s: %v", ErrBackend, path, err)
	}

	return &SQLite{db: db, path: path}, nil
}

// NewFromDB wraps an existing handle. Used by tests that drive the backend
// through a mock driver.
func NewFromDB(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Path returns the store file path ("" for handles adopted via NewFromDB).
func (s *SQLite) Path() string {
	return s.path
}

// DB exposes the underlying handle for introspection and bootstrap.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Query executes a statement that returns rows.
func (s *SQLite) Query(ctx context.Context, queryText string) (*sql.Rows, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: store not open", ErrBackend)
	}
	rows, err := s.db.QueryContext(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// Exec executes a statement that does not return rows.
func (s *SQLite) Exec(ctx context.Context, queryText string) (Result, error) {
	if s.db == nil {
		return Result{}, fmt.Errorf("%w: store not open", ErrBackend)
	}
	res, err := s.db.ExecContext(ctx, queryText)
	if err != nil {
		return Result{}, fmt.Errorf("statement failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return Result{RowsAffected: affected}, nil
}

// Explain runs EXPLAIN QUERY PLAN and returns one plan step per line, in the
// order SQLite reports them.
func (s *SQLite) Explain(ctx context.Context, queryText string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("%w: store not open", ErrBackend)
	}
	rows, err := s.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+queryText)
	if err != nil {
		return "", fmt.Errorf("explain failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []string
	for rows.Next() {
		var id, parent, notUsed int
		var detail string
		if err := rows.Scan(&id, &parent, &notUsed, &detail); err != nil {
			return "", fmt.Errorf("explain failed: %w", err)
		}
		lines = append(lines, detail)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("explain failed: %w", err)
	}

	return strings.Join(lines, "\n"), nil
}

// Probe dry-checks the statement by asking SQLite to plan it. Planning
// resolves names and parses syntax without touching data.
func (s *SQLite) Probe(ctx context.Context, queryText string) error {
	_, err := s.Explain(ctx, queryText)
	return err
}

// Close releases the store handle.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Backend = (*SQLite)(nil)
