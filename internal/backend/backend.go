// Package backend provides the single long-lived store handle the console
// runs against. The core depends on nothing beyond this capability surface:
// execute text, explain text, and a dry syntax probe.
package backend

import (
	"context"
	"database/sql"
	"errors"
)

// ErrBackend wraps resource-level store failures (unreachable file, closed
// handle) so callers can report them distinctly from query-level errors.
var ErrBackend = errors.New("backend failure")

// Config holds connection settings for a store.
type Config struct {
	// Path is the store file path. Use ":memory:" for an in-memory store.
	Path string
}

// Result reports the outcome of a non-query statement.
type Result struct {
	RowsAffected int64
}

// Backend is the capability surface the console core depends on.
type Backend interface {
	// Query executes a statement that returns rows.
	Query(ctx context.Context, queryText string) (*sql.Rows, error)

	// Exec executes a statement that does not return rows.
	Exec(ctx context.Context, queryText string) (Result, error)

	// Explain returns the backend's raw plan text for the statement,
	// one step per line.
	Explain(ctx context.Context, queryText string) (string, error)

	// Probe checks the statement against the store without executing it.
	Probe(ctx context.Context, queryText string) error

	// DB exposes the underlying handle for catalog introspection and
	// bootstrap. Core packages must not touch it.
	DB() *sql.DB

	// Close releases the store handle.
	Close() error
}
