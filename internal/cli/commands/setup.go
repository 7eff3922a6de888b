// Package commands implements the HomeQL CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/homestack-labs/homeql/internal/cli/config"
	"github.com/homestack-labs/homeql/internal/session"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Session *session.Session
}

// NewCommandContext creates a CommandContext with an open session.
// Returns the context and a cleanup function that must be called
// (typically via defer).
//
// File-backed stores must already exist unless autoInit is set; in-memory
// stores are always bootstrapped.
func NewCommandContext(cmd *cobra.Command, autoInit bool) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	bootstrap := false
	if cfg.DatabasePath != "" && cfg.DatabasePath != ":memory:" {
		if _, err := os.Stat(cfg.DatabasePath); os.IsNotExist(err) {
			if !autoInit {
				return nil, nil, fmt.Errorf("database not found at %s (run 'homeql init' first)", cfg.DatabasePath)
			}
			bootstrap = true
		}
	}

	sess, err := session.New(cmd.Context(), session.Config{
		DatabasePath: cfg.DatabasePath,
		Bootstrap:    bootstrap,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = sess.Close()
	}

	return &CommandContext{Cfg: cfg, Logger: logger, Session: sess}, cleanup, nil
}

// getConfig returns the current configuration, falling back to defaults when
// the root command's config load has not run (direct command construction in
// tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		DatabasePath: config.DefaultDatabaseFile,
		HistoryFile:  config.DefaultHistoryFile,
		OutputFormat: config.DefaultFormat,
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
