package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <sql>",
		Short: "Show the execution plan for a statement",
		Long: `Show the engine's execution plan for a SQL statement as an ordered list
of steps. The statement is validated but not executed.`,
		Example: `  homeql explain "SELECT * FROM devices WHERE status = 'online'"
  homeql explain --format json "SELECT * FROM usage_logs LIMIT 5"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			steps, err := cmdCtx.Session.ExplainPlan(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return renderPlan(cmd.OutOrStdout(), steps, resolveFormat(cmdCtx.Cfg.OutputFormat))
		},
	}

	return cmd
}
