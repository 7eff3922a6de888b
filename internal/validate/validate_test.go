package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homestack-labs/homeql/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]catalog.Table{
		{Name: "users", Columns: []catalog.Column{
			{Name: "user_id", Type: catalog.TypeID},
			{Name: "username", Type: catalog.TypeText},
			{Name: "email", Type: catalog.TypeText},
			{Name: "created_at", Type: catalog.TypeTimestamp},
			{Name: "is_active", Type: catalog.TypeBoolean},
		}},
		{Name: "devices", Columns: []catalog.Column{
			{Name: "device_id", Type: catalog.TypeID},
			{Name: "device_name", Type: catalog.TypeText},
			{Name: "status", Type: catalog.TypeEnum},
			{Name: "room", Type: catalog.TypeText},
		}},
		{Name: "usage_logs", Columns: []catalog.Column{
			{Name: "log_id", Type: catalog.TypeID},
			{Name: "user_id", Type: catalog.TypeID},
			{Name: "device_id", Type: catalog.TypeID},
			{Name: "action", Type: catalog.TypeEnum},
			{Name: "timestamp", Type: catalog.TypeTimestamp},
		}},
	})
	require.NoError(t, err)
	return cat
}

func TestValidate_ValidQuery(t *testing.T) {
	v := New(testCatalog(t))

	for _, q := range []string{
		"SELECT * FROM users",
		"SELECT username, email FROM users WHERE is_active = 1",
		"SELECT u.username, d.device_name FROM users u JOIN usage_logs l ON u.user_id = l.user_id JOIN devices d ON d.device_id = l.device_id",
		"select * from USERS",
		"SELECT COUNT(*) FROM devices",
	} {
		assert.Nil(t, v.Validate(context.Background(), q), "query: %s", q)
	}
}

func TestValidate_BareSelectAliases(t *testing.T) {
	v := New(testCatalog(t))

	// Aliases without AS name the output and are not column references.
	for _, q := range []string{
		"SELECT username uname FROM users",
		"SELECT COUNT(*) total FROM users",
		"SELECT u.username owner FROM users u",
		"SELECT 'pending' state FROM devices",
		"SELECT 1 one FROM users",
	} {
		assert.Nil(t, v.Validate(context.Background(), q), "query: %s", q)
	}
}

func TestValidate_Empty(t *testing.T) {
	v := New(testCatalog(t))

	for _, q := range []string{"", "   ", "\t\n"} {
		d := v.Validate(context.Background(), q)
		require.NotNil(t, d)
		assert.Equal(t, KindEmpty, d.Kind)
	}
}

func TestValidate_UnknownTable(t *testing.T) {
	v := New(testCatalog(t))

	d := v.Validate(context.Background(), "SELECT * FROM user")
	require.NotNil(t, d)
	assert.Equal(t, KindUnknownTable, d.Kind)
	assert.Equal(t, "user", d.Token)
	require.NotEmpty(t, d.Candidates)
	assert.Equal(t, "users", d.Candidates[0])
	assert.Contains(t, d.Message, "users")
}

func TestValidate_UnknownColumn(t *testing.T) {
	v := New(testCatalog(t))

	// "users" has no "name" column. Candidates from the owning table rank
	// ahead of catalog-wide names.
	d := v.Validate(context.Background(), "SELECT name FROM users")
	require.NotNil(t, d)
	assert.Equal(t, KindUnknownColumn, d.Kind)
	assert.Equal(t, "name", d.Token)
	require.NotEmpty(t, d.Candidates)
	assert.Contains(t, d.Candidates, "username")
	idxOwner := indexOf(d.Candidates, "username")
	idxOther := indexOf(d.Candidates, "device_name")
	if idxOther >= 0 {
		assert.Less(t, idxOwner, idxOther)
	}
}

func TestValidate_QualifiedColumn(t *testing.T) {
	v := New(testCatalog(t))

	d := v.Validate(context.Background(), "SELECT u.emial FROM users u")
	require.NotNil(t, d)
	assert.Equal(t, KindUnknownColumn, d.Kind)
	assert.Equal(t, "emial", d.Token)
	assert.Equal(t, "email", d.Candidates[0])
}

func TestValidate_MultiTableUnqualifiedSkipped(t *testing.T) {
	v := New(testCatalog(t))

	// With two tables in scope an unqualified column has no unambiguous
	// owner, so column checking is skipped rather than guessed.
	d := v.Validate(context.Background(), "SELECT bogus FROM users, devices")
	assert.Nil(t, d)
}

func TestValidate_Idempotent(t *testing.T) {
	v := New(testCatalog(t))

	q := "SELECT * FROM usage_lgos"
	first := v.Validate(context.Background(), q)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		d := v.Validate(context.Background(), q)
		require.NotNil(t, d)
		assert.Equal(t, first.Kind, d.Kind)
		assert.Equal(t, first.Token, d.Token)
		assert.Equal(t, first.Candidates, d.Candidates)
	}
}

func TestValidate_CTENamesAreNotTables(t *testing.T) {
	v := New(testCatalog(t))

	d := v.Validate(context.Background(),
		"WITH active AS (SELECT * FROM users WHERE is_active = 1) SELECT * FROM active")
	assert.Nil(t, d)
}

func TestValidate_TableCheckedBeforeColumn(t *testing.T) {
	v := New(testCatalog(t))

	// Both the table and a column are misspelled; the table diagnostic wins.
	d := v.Validate(context.Background(), "SELECT usrname FROM user")
	require.NotNil(t, d)
	assert.Equal(t, KindUnknownTable, d.Kind)
}

type rejectingProber struct{ err error }

func (p rejectingProber) Probe(context.Context, string) error { return p.err }

func TestValidate_SyntaxViaProber(t *testing.T) {
	probeErr := errors.New(`near "FORM": syntax error`)
	v := NewWithProber(testCatalog(t), rejectingProber{err: probeErr})

	// Names check out against the catalog, then the engine probe rejects
	// the statement.
	d := v.Validate(context.Background(), "SELECT * FROM users WHERE")
	require.NotNil(t, d)
	assert.Equal(t, KindSyntax, d.Kind)
	assert.Contains(t, d.Message, "syntax error")
}

func TestDiagnostic_Error(t *testing.T) {
	d := &Diagnostic{Kind: KindUnknownTable, Token: "user", Message: `unknown table "user" (did you mean "users"?)`}
	assert.Equal(t, d.Message, d.Error())
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
