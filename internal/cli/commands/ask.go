package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskOptions holds options for the ask command.
type AskOptions struct {
	DryRun bool
}

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	opts := &AskOptions{}

	cmd := &cobra.Command{
		Use:   "ask <phrase>",
		Short: "Translate a natural language phrase to SQL and run it",
		Long: `Translate a constrained natural language phrase into SQL and execute it.

The translator matches the phrase against a fixed pattern catalog keyed on
keywords in Chinese and English, with optional time window qualifiers
(今天/昨天/本周/本月 or today/yesterday). The generated SQL is printed before
the results so it can be inspected or reused.`,
		Example: `  homeql ask "查询所有用户"
  homeql ask "显示今天的使用记录"
  homeql ask "show online devices"
  homeql ask --dry-run "查询安防事件"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the generated SQL without executing it")

	return cmd
}

func runAsk(cmd *cobra.Command, phrase string, opts *AskOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	queryText, intent, err := cmdCtx.Session.Translate(phrase)
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("phrase translated",
		"pattern", intent.PatternID, "table", intent.Table, "window", string(intent.Window))

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "-- pattern %s\n%s\n", intent.PatternID, queryText)
	if opts.DryRun {
		return nil
	}

	return executeAndRender(cmd, cmdCtx, queryText, resolveFormat(cmdCtx.Cfg.OutputFormat))
}
