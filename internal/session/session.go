// Package session ties the console core together: one long-lived backend
// handle, the catalog materialized from it, and the validator, translator and
// plan reporter built over both. A Session is the explicit context passed
// into every operation; there is no ambient global state. Reset builds the
// replacement store completely before swapping it in, so a failure mid-reset
// never leaves a half-initialized catalog observable.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homestack-labs/homeql/internal/backend"
	"github.com/homestack-labs/homeql/internal/catalog"
	"github.com/homestack-labs/homeql/internal/plan"
	"github.com/homestack-labs/homeql/internal/store"
	"github.com/homestack-labs/homeql/internal/translate"
	"github.com/homestack-labs/homeql/internal/validate"
)

// Config holds session settings.
type Config struct {
	// DatabasePath is the store file path; ":memory:" or "" for in-memory.
	DatabasePath string

	// Bootstrap creates the schema and seeds sample data on open. In-memory
	// stores are always bootstrapped, they would otherwise be empty.
	Bootstrap bool
}

// Result is a fully materialized execution outcome, ready for rendering.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	Elapsed      time.Duration
	IsSelect     bool
}

// Session is the console's per-process context. It is not safe for
// concurrent use.
type Session struct {
	id         string
	cfg        Config
	logger     *slog.Logger
	backend    backend.Backend
	catalog    *catalog.Catalog
	validator  *validate.Validator
	translator *translate.Translator
	reporter   *plan.Reporter
}

// New opens the store, bootstraps it if requested, and materializes the
// catalog and the engines built over it.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = ":memory:"
	}

	be, cat, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		logger:  logger,
		backend: be,
	}
	if err := s.install(cat); err != nil {
		_ = be.Close()
		return nil, err
	}

	logger.Debug("session opened", "session_id", s.id, "database", cfg.DatabasePath, "tables", cat.Len())
	return s, nil
}

// openStore opens a backend and materializes its catalog, bootstrapping
// first when configured.
func openStore(ctx context.Context, cfg Config, logger *slog.Logger) (*backend.SQLite, *catalog.Catalog, error) {
	be, err := backend.Open(ctx, backend.Config{Path: cfg.DatabasePath})
	if err != nil {
		return nil, nil, err
	}

	if cfg.Bootstrap || cfg.DatabasePath == ":memory:" {
		if err := store.Initialize(ctx, be.DB(), logger); err != nil {
			_ = be.Close()
			return nil, nil, err
		}
	}

	cat, err := catalog.Introspect(ctx, be.DB(), catalog.WithEnumColumns(store.EnumColumns()...))
	if err != nil {
		_ = be.Close()
		return nil, nil, err
	}
	if cat.Len() == 0 {
		_ = be.Close()
		return nil, nil, fmt.Errorf("store at %s has no tables; run 'homeql init' first", cfg.DatabasePath)
	}

	return be, cat, nil
}

// install wires the core engines over a fresh catalog. Called on open and
// as the final step of a reset.
func (s *Session) install(cat *catalog.Catalog) error {
	tr, err := translate.NewTranslator(cat, translate.DefaultPatterns())
	if err != nil {
		return fmt.Errorf("building translator: %w", err)
	}
	s.catalog = cat
	s.validator = validate.NewWithProber(cat, s.backend)
	s.translator = tr
	s.reporter = plan.NewReporter(s.backend)
	return nil
}

// ID returns the session identity, replaced on reset.
func (s *Session) ID() string {
	return s.id
}

// Catalog returns the current schema catalog.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Validate checks query text against the catalog and the store.
func (s *Session) Validate(ctx context.Context, queryText string) *validate.Diagnostic {
	return s.validator.Validate(ctx, queryText)
}

// Translate maps a natural-language phrase onto literal query text.
func (s *Session) Translate(phrase string) (string, *translate.Intent, error) {
	return s.translator.Translate(phrase)
}

// Execute validates and runs query text. Validation failures come back as a
// *validate.Diagnostic error; callers use errors.As to render suggestions.
func (s *Session) Execute(ctx context.Context, queryText string) (*Result, error) {
	if d := s.validator.Validate(ctx, queryText); d != nil {
		return nil, d
	}

	start := time.Now()
	if !isSelect(queryText) {
		res, err := s.backend.Exec(ctx, queryText)
		if err != nil {
			return nil, err
		}
		return &Result{RowsAffected: res.RowsAffected, Elapsed: time.Since(start)}, nil
	}

	rows, err := s.backend.Query(ctx, queryText)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result, err := materialize(rows)
	if err != nil {
		return nil, err
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

// ExplainPlan returns the normalized execution plan for query text.
func (s *Session) ExplainPlan(ctx context.Context, queryText string) ([]plan.Step, error) {
	return s.reporter.Explain(ctx, queryText)
}

// Reset discards all data and reinitializes the store and catalog. The
// replacement store is built and verified before the live one is touched, so
// an early failure leaves the session unchanged. Failures after the old
// handle is released wrap backend.ErrBackend and leave the session unusable;
// that is the one fatal path the console reports distinctly.
func (s *Session) Reset(ctx context.Context) error {
	freshCfg := s.cfg
	freshCfg.Bootstrap = true

	if s.cfg.DatabasePath == ":memory:" {
		be, cat, err := openStore(ctx, freshCfg, s.logger)
		if err != nil {
			return fmt.Errorf("%w: rebuilding in-memory store: %v", backend.ErrBackend, err)
		}
		old := s.backend
		s.backend = be
		if err := s.install(cat); err != nil {
			_ = be.Close()
			s.backend = old
			return err
		}
		_ = old.Close()
		s.id = uuid.NewString()
		s.logger.Debug("session reset", "session_id", s.id)
		return nil
	}

	// File-backed store: build the replacement fully in a scratch file,
	// then swap it over the live path with an atomic rename.
	scratch := s.cfg.DatabasePath + ".reset-" + uuid.NewString()
	scratchCfg := freshCfg
	scratchCfg.DatabasePath = scratch

	be, _, err := openStore(ctx, scratchCfg, s.logger)
	if err != nil {
		_ = os.Remove(scratch)
		return fmt.Errorf("building replacement store: %w", err)
	}
	if err := be.Close(); err != nil {
		_ = os.Remove(scratch)
		return fmt.Errorf("finalizing replacement store: %w", err)
	}

	// Point of no return: release the live handle before the rename.
	if err := s.backend.Close(); err != nil {
		_ = os.Remove(scratch)
		return fmt.Errorf("%w: releasing store during reset: %v", backend.ErrBackend, err)
	}
	if err := os.Rename(scratch, s.cfg.DatabasePath); err != nil {
		_ = os.Remove(scratch)
		return fmt.Errorf("%w: swapping store files: %v", backend.ErrBackend, err)
	}

	reopened, cat, err := openStore(ctx, Config{DatabasePath: s.cfg.DatabasePath}, s.logger)
	if err != nil {
		return fmt.Errorf("%w: reopening store after reset: %v", backend.ErrBackend, err)
	}
	s.backend = reopened
	if err := s.install(cat); err != nil {
		return fmt.Errorf("%w: rebuilding catalog after reset: %v", backend.ErrBackend, err)
	}
	s.id = uuid.NewString()
	s.logger.Debug("session reset", "session_id", s.id)
	return nil
}

// Close releases the backend handle.
func (s *Session) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// isSelect reports whether the statement returns rows.
func isSelect(queryText string) bool {
	trimmed := strings.TrimSpace(queryText)
	for strings.HasPrefix(trimmed, "--") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			trimmed = strings.TrimSpace(trimmed[i+1:])
		} else {
			return false
		}
	}
	first := strings.ToUpper(firstWord(trimmed))
	return first == "SELECT" || first == "WITH" || first == "EXPLAIN" || first == "PRAGMA" || first == "VALUES"
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " \t\n\r("); i > 0 {
		return s[:i]
	}
	return s
}

// materialize drains rows into a Result, converting driver byte slices to
// strings for display.
func materialize(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: cols, IsSelect: true}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IsBackendFailure reports whether err is a resource-level store failure, as
// opposed to a query-level error.
func IsBackendFailure(err error) bool {
	return errors.Is(err, backend.ErrBackend)
}
