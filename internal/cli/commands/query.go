package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/homestack-labs/homeql/internal/validate"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the smart home database",
		Long: `Run SQL queries against the smart home database.

Statements are validated against the schema catalog before execution, so a
typo in a table or column name produces a diagnostic with ranked suggestions
instead of a raw engine error.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  homeql query "SELECT * FROM users"

  # Natural language via the translator
  homeql ask "查询所有在线设备"

  # Output as JSON
  homeql query "SELECT * FROM devices" --format json

  # Interactive mode
  homeql query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	// Determine SQL source before opening the store so the REPL path can
	// bootstrap a missing database on its own.
	var queryText string

	switch {
	case len(args) > 0:
		queryText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		queryText = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		queryText = string(content)
	default:
		return runQueryREPL(cmd)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	return executeAndRender(cmd, cmdCtx, queryText, resolveFormat(cmdCtx.Cfg.OutputFormat))
}

// errQueryRejected marks a statement turned away by validation. The
// diagnostic has already been printed when this is returned.
var errQueryRejected = errors.New("query rejected")

// executeAndRender runs one statement through the session and renders the
// outcome. Validation diagnostics go to stderr and produce a non-nil error so
// one-shot invocations exit non-zero.
func executeAndRender(cmd *cobra.Command, cmdCtx *CommandContext, queryText, format string) error {
	res, err := cmdCtx.Session.Execute(cmd.Context(), queryText)
	if err != nil {
		var diag *validate.Diagnostic
		if errors.As(err, &diag) {
			renderDiagnostic(cmd.ErrOrStderr(), diag)
			return errQueryRejected
		}
		return err
	}
	return renderResult(cmd.OutOrStdout(), res, format)
}

func resolveFormat(configured string) string {
	if configured != "" {
		return configured
	}
	return "table"
}
