// Package plan normalizes a backend's raw execution-plan output into a flat
// ordered sequence of steps. The backend owns plan generation; this package
// only does structural cleanup.
package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates the backend could not produce a plan for the
// statement. Callers display "no plan available" rather than failing.
var ErrUnavailable = errors.New("no execution plan available")

// Step is one normalized line of a backend execution plan.
type Step struct {
	Order     int    `json:"order"`
	Operation string `json:"operation"`
	Detail    string `json:"detail"`
}

// Explainer is the backend capability the reporter depends on.
type Explainer interface {
	Explain(ctx context.Context, queryText string) (string, error)
}

// Reporter turns raw plan text into ordered steps.
type Reporter struct {
	backend Explainer
}

// NewReporter creates a Reporter over the given backend.
func NewReporter(backend Explainer) *Reporter {
	return &Reporter{backend: backend}
}

// Explain requests a plan for the query and normalizes it: one Step per
// non-empty line, in original order, with Order starting at 0.
func (r *Reporter) Explain(ctx context.Context, queryText string) ([]Step, error) {
	raw, err := r.backend.Explain(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	steps := Normalize(raw)
	if len(steps) == 0 {
		return nil, ErrUnavailable
	}
	return steps, nil
}

// Normalize splits raw plan text into ordered steps, stripping backend
// formatting (tree-drawing characters, indentation, header lines).
func Normalize(raw string) []Step {
	var steps []Step
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Trim(line, " \t|`-+")
		if line == "" || strings.EqualFold(line, "QUERY PLAN") {
			continue
		}

		op := line
		detail := ""
		if i := strings.IndexByte(line, ' '); i > 0 {
			op = line[:i]
			detail = strings.TrimSpace(line[i+1:])
		}
		steps = append(steps, Step{
			Order:     len(steps),
			Operation: strings.ToUpper(op),
			Detail:    detail,
		})
	}
	return steps
}
