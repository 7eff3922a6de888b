package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExplainer struct {
	raw string
	err error
}

func (f fakeExplainer) Explain(context.Context, string) (string, error) {
	return f.raw, f.err
}

func TestExplain_OrdersSteps(t *testing.T) {
	r := NewReporter(fakeExplainer{raw: "SCAN users\nSEARCH devices USING INDEX idx_status (status=?)\nUSE TEMP B-TREE FOR ORDER BY"})

	steps, err := r.Explain(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Len(t, steps, 3)

	for i, s := range steps {
		assert.Equal(t, i, s.Order)
	}
	assert.Equal(t, "SCAN", steps[0].Operation)
	assert.Equal(t, "users", steps[0].Detail)
	assert.Equal(t, "SEARCH", steps[1].Operation)
	assert.Equal(t, "USE", steps[2].Operation)
}

func TestExplain_BackendError(t *testing.T) {
	backendErr := errors.New("database is locked")
	r := NewReporter(fakeExplainer{err: backendErr})

	_, err := r.Explain(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestExplain_EmptyPlan(t *testing.T) {
	r := NewReporter(fakeExplainer{raw: "  \n\n"})

	_, err := r.Explain(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNormalize_StripsFormatting(t *testing.T) {
	raw := "QUERY PLAN\n|--SCAN users\n`--USE TEMP B-TREE FOR ORDER BY\n"
	steps := Normalize(raw)

	require.Len(t, steps, 2)
	assert.Equal(t, Step{Order: 0, Operation: "SCAN", Detail: "users"}, steps[0])
	assert.Equal(t, Step{Order: 1, Operation: "USE", Detail: "TEMP B-TREE FOR ORDER BY"}, steps[1])
}

func TestNormalize_SingleWordLine(t *testing.T) {
	steps := Normalize("COMPOUND")
	require.Len(t, steps, 1)
	assert.Equal(t, "COMPOUND", steps[0].Operation)
	assert.Empty(t, steps[0].Detail)
}
