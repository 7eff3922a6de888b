package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homestack-labs/homeql/internal/catalog"
	"github.com/homestack-labs/homeql/internal/validate"
)

func smartHomeCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]catalog.Table{
		{Name: "users", Columns: []catalog.Column{
			{Name: "user_id", Type: catalog.TypeID},
			{Name: "username", Type: catalog.TypeText},
		}},
		{Name: "devices", Columns: []catalog.Column{
			{Name: "device_id", Type: catalog.TypeID},
			{Name: "device_name", Type: catalog.TypeText},
			{Name: "status", Type: catalog.TypeEnum},
		}},
		{Name: "usage_logs", Columns: []catalog.Column{
			{Name: "log_id", Type: catalog.TypeID},
			{Name: "action", Type: catalog.TypeEnum},
			{Name: "timestamp", Type: catalog.TypeTimestamp},
		}},
		{Name: "security_events", Columns: []catalog.Column{
			{Name: "event_id", Type: catalog.TypeID},
			{Name: "severity", Type: catalog.TypeEnum},
			{Name: "handled", Type: catalog.TypeBoolean},
			{Name: "timestamp", Type: catalog.TypeTimestamp},
		}},
		{Name: "user_feedback", Columns: []catalog.Column{
			{Name: "feedback_id", Type: catalog.TypeID},
			{Name: "rating", Type: catalog.TypeNumber},
			{Name: "timestamp", Type: catalog.TypeTimestamp},
		}},
		{Name: "rooms", Columns: []catalog.Column{
			{Name: "room_id", Type: catalog.TypeID},
			{Name: "room_name", Type: catalog.TypeText},
		}},
	})
	require.NoError(t, err)
	return cat
}

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := NewTranslator(smartHomeCatalog(t), DefaultPatterns())
	require.NoError(t, err)
	return tr
}

func TestTranslate_AllUsers(t *testing.T) {
	tr := newTestTranslator(t)

	queryText, intent, err := tr.Translate("查询所有用户")
	require.NoError(t, err)
	assert.Equal(t, "users", intent.Table)
	assert.Equal(t, "SELECT * FROM users LIMIT 10", queryText)
}

func TestTranslate_TodayUsageLogs(t *testing.T) {
	tr := newTestTranslator(t)

	queryText, intent, err := tr.Translate("显示今天的使用记录")
	require.NoError(t, err)
	assert.Equal(t, "usage_logs", intent.Table)
	assert.Equal(t, WindowToday, intent.Window)
	assert.Contains(t, queryText, "usage_logs")
	assert.Contains(t, queryText, "DATE(timestamp) = DATE('now')")
	assert.Contains(t, queryText, "LIMIT 10")
}

func TestTranslate_OnlineDevices(t *testing.T) {
	tr := newTestTranslator(t)

	for _, phrase := range []string{"查询所有在线设备", "show online devices"} {
		queryText, intent, err := tr.Translate(phrase)
		require.NoError(t, err, "phrase: %s", phrase)
		assert.Equal(t, "devices", intent.Table)
		assert.Contains(t, queryText, "status = 'online'")
	}
}

func TestTranslate_SevereEventsBeatGeneralEvents(t *testing.T) {
	tr := newTestTranslator(t)

	_, intent, err := tr.Translate("查询严重的安防事件")
	require.NoError(t, err)
	assert.Equal(t, "events-severe", intent.PatternID)
	assert.Equal(t, "security_events", intent.Table)

	_, intent, err = tr.Translate("查询安防事件")
	require.NoError(t, err)
	assert.Equal(t, "events-all", intent.PatternID)
}

func TestTranslate_Yesterday(t *testing.T) {
	tr := newTestTranslator(t)

	queryText, intent, err := tr.Translate("昨天的使用记录")
	require.NoError(t, err)
	assert.Equal(t, WindowYesterday, intent.Window)
	assert.Contains(t, queryText, "DATE('now', '-1 day')")
}

func TestTranslate_NoMatch(t *testing.T) {
	tr := newTestTranslator(t)

	for _, phrase := range []string{"", "   ", "make me a sandwich", "天气怎么样"} {
		_, _, err := tr.Translate(phrase)
		require.Error(t, err, "phrase: %q", phrase)
		assert.ErrorIs(t, err, ErrNoMatch)
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	tr := newTestTranslator(t)

	first, _, err := tr.Translate("查询所有设备")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		q, _, err := tr.Translate("查询所有设备")
		require.NoError(t, err)
		assert.Equal(t, first, q)
	}
}

// Every generated query must pass schema validation. The translator enforces
// this at construction by rejecting patterns that reference unknown tables or
// columns, so each pattern's plain and windowed forms are checked here.
func TestTranslate_GeneratedQueriesValidate(t *testing.T) {
	cat := smartHomeCatalog(t)
	tr, err := NewTranslator(cat, DefaultPatterns())
	require.NoError(t, err)
	v := validate.New(cat)

	phrases := []string{
		"查询所有用户",
		"查询所有设备",
		"查询在线设备",
		"查询离线设备",
		"显示使用记录",
		"显示今天的使用记录",
		"昨天的安防事件",
		"本周的使用记录",
		"本月的反馈",
		"查询未处理的安防事件",
		"查询严重的安防事件",
		"查询房间",
		"show all users",
		"show online devices",
		"usage this week",
	}
	for _, phrase := range phrases {
		queryText, _, err := tr.Translate(phrase)
		require.NoError(t, err, "phrase: %s", phrase)
		assert.Nil(t, v.Validate(context.Background(), queryText), "phrase %q produced %q", phrase, queryText)
	}
}

func TestNewTranslator_RejectsUnknownTable(t *testing.T) {
	_, err := NewTranslator(smartHomeCatalog(t), []Pattern{{
		ID:       "bad",
		Priority: 1,
		Triggers: [][]string{{"x"}},
		Table:    "nonexistent",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestNewTranslator_RejectsUnknownFilterColumn(t *testing.T) {
	_, err := NewTranslator(smartHomeCatalog(t), []Pattern{{
		ID:       "bad",
		Priority: 1,
		Triggers: [][]string{{"x"}},
		Table:    "devices",
		Filters:  map[string]string{"no_such_col": "1"},
	}})
	require.Error(t, err)
}

func TestNewTranslator_RejectsDuplicateIDs(t *testing.T) {
	p := Pattern{ID: "dup", Priority: 1, Triggers: [][]string{{"x"}}, Table: "users"}
	_, err := NewTranslator(smartHomeCatalog(t), []Pattern{p, p})
	require.Error(t, err)
}

func TestRenderFilter(t *testing.T) {
	assert.Equal(t, "status = 'online'", renderFilter("status", "online"))
	assert.Equal(t, "handled = 0", renderFilter("handled", "0"))
	assert.Equal(t, "severity IN ('high', 'critical')", renderFilter("severity", "high,critical"))
}
