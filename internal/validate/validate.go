// Package validate checks query text against the schema catalog and produces
// structured, actionable diagnostics. Validation is fail-fast: only the first
// violation is reported, in extraction order (tables before columns). This is
// a designed limitation of the interactive console, not an accident; see
// DESIGN.md for the aggregation discussion.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/homestack-labs/homeql/internal/catalog"
)

// Kind identifies the category of a validation failure.
type Kind string

// Diagnostic kinds.
const (
	KindEmpty         Kind = "empty"
	KindUnknownTable  Kind = "unknown_table"
	KindUnknownColumn Kind = "unknown_column"
	KindSyntax        Kind = "syntax_error"
)

// Diagnostic is a structured validation failure. Candidates are ranked
// remediation suggestions (best first). A Diagnostic is created per failed
// query and consumed once by the caller for display.
type Diagnostic struct {
	Kind       Kind
	Token      string
	Candidates []string
	Message    string
}

// Error implements the error interface so diagnostics compose with the
// standard error machinery (errors.As at call sites).
func (d *Diagnostic) Error() string {
	return d.Message
}

// Prober performs a dry syntax check of query text against the backing
// store without executing it. A nil prober skips the check.
type Prober interface {
	Probe(ctx context.Context, queryText string) error
}

// Validator inspects query text against a Catalog.
type Validator struct {
	cat    *catalog.Catalog
	prober Prober
}

// New creates a Validator without a syntax prober. Schema violations are
// still detected; store-level syntax errors are not.
func New(cat *catalog.Catalog) *Validator {
	return &Validator{cat: cat}
}

// NewWithProber creates a Validator that additionally dry-checks clean
// queries against the store, wrapping rejections into a syntax diagnostic.
func NewWithProber(cat *catalog.Catalog, p Prober) *Validator {
	return &Validator{cat: cat, prober: p}
}

// Validate returns nil when the query references only known tables and
// columns and the store accepts it, or the first Diagnostic found otherwise.
// Validation is deterministic: the same text and catalog always yield the
// same result.
func (v *Validator) Validate(ctx context.Context, queryText string) *Diagnostic {
	if strings.TrimSpace(queryText) == "" {
		return &Diagnostic{
			Kind:    KindEmpty,
			Message: "query is empty; enter a SQL statement or an nl: phrase",
		}
	}

	refs := extractRefs(queryText)

	for _, tbl := range refs.tables {
		if _, cte := refs.ctes[strings.ToLower(tbl)]; cte {
			continue
		}
		if !v.cat.Has(tbl) {
			return v.unknownTable(tbl)
		}
	}

	for _, col := range refs.columns {
		if d := v.checkColumn(col, refs); d != nil {
			return d
		}
	}

	if v.prober != nil {
		if err := v.prober.Probe(ctx, queryText); err != nil {
			return &Diagnostic{
				Kind:    KindSyntax,
				Token:   queryText,
				Message: "the store rejected the statement; check table names, column names, and SQL syntax: " + err.Error(),
			}
		}
	}

	return nil
}

func (v *Validator) unknownTable(name string) *Diagnostic {
	candidates := Rank(name, v.cat.TableNames())
	msg := fmt.Sprintf("table %q does not exist", name)
	if len(candidates) > 0 {
		msg += fmt.Sprintf("; did you mean %q?", candidates[0])
	}
	return &Diagnostic{
		Kind:       KindUnknownTable,
		Token:      name,
		Candidates: candidates,
		Message:    msg,
	}
}

func (v *Validator) checkColumn(col columnRef, refs *queryRefs) *Diagnostic {
	var owner catalog.Table

	switch {
	case col.qualifier != "":
		name := col.qualifier
		if real, ok := refs.aliases[strings.ToLower(col.qualifier)]; ok {
			name = real
		}
		if _, cte := refs.ctes[strings.ToLower(name)]; cte {
			return nil
		}
		t, ok := v.cat.Table(name)
		if !ok {
			return v.unknownTable(col.qualifier)
		}
		owner = t
	case len(refs.tables) == 1:
		t, ok := v.cat.Table(refs.tables[0])
		if !ok {
			return nil // sole table is a CTE; the prober resolves it
		}
		owner = t
	default:
		// Unqualified column with zero or several tables in scope; leave
		// resolution to the store prober.
		return nil
	}

	if _, ok := owner.Column(col.name); ok {
		return nil
	}

	// Own columns first, then the rest of the catalog.
	candidates := Rank(col.name, owner.ColumnNames())
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[strings.ToLower(c)] = struct{}{}
	}
	for _, c := range Rank(col.name, v.cat.AllColumnNames()) {
		if _, dup := seen[strings.ToLower(c)]; dup {
			continue
		}
		candidates = append(candidates, c)
	}

	msg := fmt.Sprintf("column %q does not exist in table %q", col.name, owner.Name)
	if len(candidates) > 0 {
		msg += fmt.Sprintf("; did you mean %q?", candidates[0])
	}
	return &Diagnostic{
		Kind:       KindUnknownColumn,
		Token:      col.name,
		Candidates: candidates,
		Message:    msg,
	}
}
