// Package catalog provides the read-only table/column schema that query
// validation and phrase translation check against. A Catalog is materialized
// once from the backing store at session start and replaced wholesale on
// reset; it is never mutated in place.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SemanticType classifies a column for validation and translation purposes.
type SemanticType string

// Semantic column types.
const (
	TypeID        SemanticType = "id"
	TypeText      SemanticType = "text"
	TypeEnum      SemanticType = "enum"
	TypeNumber    SemanticType = "number"
	TypeTimestamp SemanticType = "timestamp"
	TypeBoolean   SemanticType = "boolean"
)

// Column describes a single column of a table.
type Column struct {
	Name string
	Type SemanticType
}

// Table describes a table and its columns in declaration order.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the named column, matching case-insensitively.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Catalog is an immutable mapping of table name to ordered column list.
type Catalog struct {
	tables []Table
	byName map[string]int
}

// New builds a Catalog from the given tables. Table names must be unique and
// column names must be unique within each table.
func New(tables []Table) (*Catalog, error) {
	c := &Catalog{
		tables: tables,
		byName: make(map[string]int, len(tables)),
	}
	for i, t := range tables {
		key := strings.ToLower(t.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate table %q", t.Name)
		}
		c.byName[key] = i

		seen := make(map[string]struct{}, len(t.Columns))
		for _, col := range t.Columns {
			ck := strings.ToLower(col.Name)
			if _, dup := seen[ck]; dup {
				return nil, fmt.Errorf("catalog: duplicate column %q in table %q", col.Name, t.Name)
			}
			seen[ck] = struct{}{}
		}
	}
	return c, nil
}

// Table returns the named table, matching case-insensitively.
func (c *Catalog) Table(name string) (Table, bool) {
	i, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return Table{}, false
	}
	return c.tables[i], true
}

// Has reports whether the named table exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[strings.ToLower(name)]
	return ok
}

// Tables returns all tables in declaration order.
func (c *Catalog) Tables() []Table {
	out := make([]Table, len(c.tables))
	copy(out, c.tables)
	return out
}

// TableNames returns all table names in declaration order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

// AllColumnNames returns every column name across all tables, in table
// declaration order, deduplicated (shared names like "timestamp" appear once).
func (c *Catalog) AllColumnNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, t := range c.tables {
		for _, col := range t.Columns {
			key := strings.ToLower(col.Name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, col.Name)
		}
	}
	return names
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	return len(c.tables)
}

// Querier is the minimal query surface Introspect needs from the store.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Option customizes catalog introspection.
type Option func(*introspectOptions)

type introspectOptions struct {
	enumColumns map[string]struct{}
}

// WithEnumColumns marks column names whose values come from a closed
// vocabulary. Introspection has no way to tell an enum column from free text,
// so the bootstrap layer declares them.
func WithEnumColumns(names ...string) Option {
	return func(o *introspectOptions) {
		for _, n := range names {
			o.enumColumns[strings.ToLower(n)] = struct{}{}
		}
	}
}

// Introspect materializes a Catalog from a SQLite store using sqlite_master
// and PRAGMA table_info. Table and column order follow declaration order in
// the store, which the suggestion ranker relies on for tie-breaking.
func Introspect(ctx context.Context, q Querier, opts ...Option) (*Catalog, error) {
	o := &introspectOptions{enumColumns: make(map[string]struct{})}
	for _, opt := range opts {
		opt(o)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		AND name NOT LIKE 'goose_%'
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("catalog: scanning table name: %w", err)
		}
		tableNames = append(tableNames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating tables: %w", err)
	}

	tables := make([]Table, 0, len(tableNames))
	for _, name := range tableNames {
		cols, err := introspectColumns(ctx, q, name, o)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: name, Columns: cols})
	}

	return New(tables)
}

func introspectColumns(ctx context.Context, q Querier, table string, o *introspectOptions) ([]Column, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("catalog: table_info for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var cid, notNull, pk int
		var name, declType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("catalog: scanning column of %s: %w", table, err)
		}
		cols = append(cols, Column{
			Name: name,
			Type: semanticType(name, declType, pk == 1, o),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("catalog: table %s has no columns", table)
	}
	return cols, nil
}

// semanticType maps a declared SQLite type to the semantic classification.
func semanticType(name, declType string, pk bool, o *introspectOptions) SemanticType {
	lower := strings.ToLower(name)
	if _, ok := o.enumColumns[lower]; ok {
		return TypeEnum
	}
	if pk || strings.HasSuffix(lower, "_id") {
		return TypeID
	}

	decl := strings.ToUpper(declType)
	switch {
	case strings.Contains(decl, "BOOL"):
		return TypeBoolean
	case strings.Contains(decl, "TIMESTAMP"), strings.Contains(decl, "DATETIME"), strings.Contains(decl, "DATE"):
		return TypeTimestamp
	case strings.Contains(decl, "INT"), strings.Contains(decl, "REAL"),
		strings.Contains(decl, "NUMERIC"), strings.Contains(decl, "FLOAT"),
		strings.Contains(decl, "DOUBLE"), strings.Contains(decl, "DECIMAL"):
		return TypeNumber
	default:
		return TypeText
	}
}
