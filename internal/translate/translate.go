// Package translate maps constrained natural-language phrases onto
// parameterized query templates. Matching is first-match-wins over a pattern
// list ordered by an explicit priority field, so more specific patterns must
// carry lower priority numbers than the general patterns they would otherwise
// be shadowed by. New patterns must preserve that ordering; NewTranslator
// verifies it structurally.
package translate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/homestack-labs/homeql/internal/catalog"
)

// ErrNoMatch is returned when no pattern's trigger set matches the phrase.
// The translator never guesses a fallback table.
var ErrNoMatch = errors.New("no pattern matches the phrase")

// TimeWindow is a canonical relative-date predicate bound by a time keyword
// in the phrase. Absence of a keyword omits the predicate entirely.
type TimeWindow string

// Recognized time windows.
const (
	WindowNone      TimeWindow = ""
	WindowToday     TimeWindow = "today"
	WindowYesterday TimeWindow = "yesterday"
	WindowThisWeek  TimeWindow = "this_week"
	WindowThisMonth TimeWindow = "this_month"
)

// Intent is the outcome of a successful match: which pattern fired and what
// it bound. It is consumed immediately to render query text.
type Intent struct {
	PatternID string
	Table     string
	Filters   map[string]string
	Window    TimeWindow
	OrderBy   string
	Limit     int
}

// Pattern maps a trigger vocabulary to a query template. Filter values are
// drawn from a closed vocabulary declared here; user text is never
// interpolated into the emitted query. A filter value containing commas
// renders as an IN list.
type Pattern struct {
	ID       string
	Priority int
	// Triggers lists alternative keyword sets. A set matches when every
	// keyword in it occurs in the phrase; the pattern matches when any
	// set does.
	Triggers   [][]string
	Table      string
	Filters    map[string]string
	TimeColumn string // column time-window predicates bind to; empty disables them
	OrderBy    string // rendered as ORDER BY <col> DESC when set
	Limit      int    // 0 means DefaultLimit
}

// DefaultLimit caps translated queries so an open-ended phrase cannot dump
// an entire table at the console.
const DefaultLimit = 10

// Translator matches phrases against an ordered pattern list.
type Translator struct {
	patterns []Pattern
	cat      *catalog.Catalog
}

// NewTranslator builds a Translator over the given catalog and patterns.
// It sorts patterns by priority and rejects pattern lists that reference
// tables or filter columns absent from the catalog, which guarantees that
// translated query text always validates against the same catalog.
func NewTranslator(cat *catalog.Catalog, patterns []Pattern) (*Translator, error) {
	sorted := make([]Pattern, len(patterns))
	copy(sorted, patterns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	seen := make(map[string]struct{}, len(sorted))
	for _, p := range sorted {
		if p.ID == "" {
			return nil, errors.New("translate: pattern with empty ID")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("translate: duplicate pattern ID %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		if len(p.Triggers) == 0 {
			return nil, fmt.Errorf("translate: pattern %q has no triggers", p.ID)
		}
		tbl, ok := cat.Table(p.Table)
		if !ok {
			return nil, fmt.Errorf("translate: pattern %q targets unknown table %q", p.ID, p.Table)
		}
		for col := range p.Filters {
			if _, ok := tbl.Column(col); !ok {
				return nil, fmt.Errorf("translate: pattern %q filters on unknown column %s.%s", p.ID, p.Table, col)
			}
		}
		if p.TimeColumn != "" {
			if _, ok := tbl.Column(p.TimeColumn); !ok {
				return nil, fmt.Errorf("translate: pattern %q binds time window to unknown column %s.%s", p.ID, p.Table, p.TimeColumn)
			}
		}
		if p.OrderBy != "" {
			if _, ok := tbl.Column(p.OrderBy); !ok {
				return nil, fmt.Errorf("translate: pattern %q orders by unknown column %s.%s", p.ID, p.Table, p.OrderBy)
			}
		}
	}

	return &Translator{patterns: sorted, cat: cat}, nil
}

// Patterns returns the pattern list in matching order.
func (t *Translator) Patterns() []Pattern {
	out := make([]Pattern, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// Translate matches the phrase against the pattern list and renders literal
// query text for the first match. An empty phrase or a phrase no pattern
// matches yields ErrNoMatch with the phrase echoed.
func (t *Translator) Translate(phrase string) (string, *Intent, error) {
	normalized := strings.ToLower(strings.TrimSpace(phrase))
	if normalized == "" {
		return "", nil, fmt.Errorf("%w: %q", ErrNoMatch, phrase)
	}

	for _, p := range t.patterns {
		if !p.matches(normalized) {
			continue
		}

		intent := &Intent{
			PatternID: p.ID,
			Table:     p.Table,
			Filters:   p.Filters,
			OrderBy:   p.OrderBy,
			Limit:     p.Limit,
		}
		if intent.Limit == 0 {
			intent.Limit = DefaultLimit
		}
		if p.TimeColumn != "" {
			intent.Window = detectWindow(normalized)
		}

		return renderQuery(p, intent), intent, nil
	}

	return "", nil, fmt.Errorf("%w: %q", ErrNoMatch, phrase)
}

func (p Pattern) matches(phrase string) bool {
	for _, set := range p.Triggers {
		all := true
		for _, kw := range set {
			if !strings.Contains(phrase, strings.ToLower(kw)) {
				all = false
				break
			}
		}
		if all && len(set) > 0 {
			return true
		}
	}
	return false
}

// detectWindow finds the first time keyword in the phrase. More specific
// phrasings are checked before the ones they contain.
func detectWindow(phrase string) TimeWindow {
	switch {
	case containsAny(phrase, "昨天", "yesterday"):
		return WindowYesterday
	case containsAny(phrase, "今天", "today"):
		return WindowToday
	case containsAny(phrase, "本周", "这周", "this week"):
		return WindowThisWeek
	case containsAny(phrase, "本月", "这个月", "this month"):
		return WindowThisMonth
	default:
		return WindowNone
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// renderQuery emits literal query text from a matched pattern. Every value
// placed in the text comes from the pattern's closed vocabulary.
func renderQuery(p Pattern, intent *Intent) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(p.Table)

	var preds []string
	// Deterministic predicate order: catalog-declared filters sorted by
	// column name, then the time window.
	cols := make([]string, 0, len(p.Filters))
	for col := range p.Filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		preds = append(preds, renderFilter(col, p.Filters[col]))
	}
	if pred := windowPredicate(p.TimeColumn, intent.Window); pred != "" {
		preds = append(preds, pred)
	}

	if len(preds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(preds, " AND "))
	}
	if p.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(p.OrderBy)
		b.WriteString(" DESC")
	}
	fmt.Fprintf(&b, " LIMIT %d", intent.Limit)

	return b.String()
}

func renderFilter(col, value string) string {
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		for i, part := range parts {
			parts[i] = quoteLiteral(strings.TrimSpace(part))
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s = %s", col, quoteLiteral(value))
}

func quoteLiteral(v string) string {
	if isNumeric(v) {
		return v
	}
	return "'" + v + "'"
}

func isNumeric(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// windowPredicate renders the canonical relative-date predicate for a
// window, in SQLite date-function form.
func windowPredicate(col string, w TimeWindow) string {
	if col == "" {
		return ""
	}
	switch w {
	case WindowToday:
		return fmt.Sprintf("DATE(%s) = DATE('now')", col)
	case WindowYesterday:
		return fmt.Sprintf("DATE(%s) = DATE('now', '-1 day')", col)
	case WindowThisWeek:
		return fmt.Sprintf("%s >= DATE('now', '-7 days')", col)
	case WindowThisMonth:
		return fmt.Sprintf("%s >= DATE('now', 'start of month')", col)
	default:
		return ""
	}
}
