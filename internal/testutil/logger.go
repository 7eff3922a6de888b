// Package testutil provides shared helpers for package tests.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger that routes through t.Log so
// output is interleaved with test progress and hidden unless the test fails
// or runs with -v. The time attribute is dropped since the test runner
// already timestamps lines.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

type testWriter struct {
	t testing.TB
}

// Write forwards handler output to t.Log, trimming the trailing newline the
// handler appends so test output stays single-spaced.
func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
