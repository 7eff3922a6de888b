package commands

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homestack-labs/homeql/internal/cli/config"
	"github.com/homestack-labs/homeql/internal/session"
	"github.com/homestack-labs/homeql/internal/testutil"
)

// scriptedSource feeds a fixed line sequence to replLoop and records every
// prompt change.
type scriptedSource struct {
	lines   []string
	prompts []string
}

func (s *scriptedSource) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedSource) SetPrompt(prompt string) {
	s.prompts = append(s.prompts, prompt)
}

func newREPLHarness(t *testing.T) (*cobra.Command, *CommandContext, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	sess, err := session.New(context.Background(), session.Config{DatabasePath: ":memory:"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	cmdCtx := &CommandContext{
		Cfg:     &config.Config{OutputFormat: "table"},
		Logger:  testutil.NewTestLogger(t),
		Session: sess,
	}

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd, cmdCtx, out, errOut
}

func TestReplLoop_MultiLineStatement(t *testing.T) {
	cmd, cmdCtx, out, errOut := newREPLHarness(t)

	src := &scriptedSource{lines: []string{
		"SELECT username",
		"FROM users;",
	}}
	replLoop(cmd, cmdCtx, src, "table")

	assert.Contains(t, out.String(), "张三")
	assert.Contains(t, out.String(), "(4 rows")
	assert.Empty(t, errOut.String())
	assert.Contains(t, src.prompts, "   ...> ")
}

func TestReplLoop_DotCommandDiscardsPartialStatement(t *testing.T) {
	cmd, cmdCtx, out, errOut := newREPLHarness(t)

	// The partial DELETE must not survive the interleaved dot command and
	// prefix the next statement.
	src := &scriptedSource{lines: []string{
		"DELETE FROM",
		".tables",
		"SELECT username FROM users;",
	}}
	replLoop(cmd, cmdCtx, src, "table")

	assert.Contains(t, errOut.String(), "Discarded unfinished statement")
	assert.Contains(t, out.String(), "usage_logs")
	assert.Contains(t, out.String(), "(4 rows")
	assert.NotContains(t, errOut.String(), "Error:")
}

func TestReplLoop_PhraseDiscardsPartialStatement(t *testing.T) {
	cmd, cmdCtx, out, errOut := newREPLHarness(t)

	src := &scriptedSource{lines: []string{
		"SELECT username",
		"nl: 查询所有在线设备",
	}}
	replLoop(cmd, cmdCtx, src, "table")

	assert.Contains(t, errOut.String(), "Discarded unfinished statement")
	assert.Contains(t, out.String(), "status = 'online'")
	assert.Contains(t, out.String(), "(7 rows")
}

func TestReplLoop_QuitStopsLoop(t *testing.T) {
	cmd, cmdCtx, out, _ := newREPLHarness(t)

	src := &scriptedSource{lines: []string{
		".quit",
		"SELECT username FROM users;",
	}}
	replLoop(cmd, cmdCtx, src, "table")

	assert.NotContains(t, out.String(), "4 rows")
}

func TestHandleDotCommand_ClearWritesToCommandOutput(t *testing.T) {
	cmd, cmdCtx, out, errOut := newREPLHarness(t)

	assert.True(t, handleDotCommand(cmd, cmdCtx, ".clear", "table"))
	assert.Contains(t, out.String(), "\033[2J")
	assert.Empty(t, errOut.String())
}
