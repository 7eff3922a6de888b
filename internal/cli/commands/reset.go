package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all data and re-seed the database",
		Long: `Drop every table and rebuild the database to its seeded state.

The rebuild is atomic: the new database is constructed next to the old one
and swapped in only when complete, so a failure leaves the current data
intact.`,
		Example: `  homeql reset
  homeql reset --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if !force {
				if !confirm(cmd, fmt.Sprintf("Reset %s and lose all data? [y/N] ",
					displayPath(cmdCtx.Cfg.DatabasePath))) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := cmdCtx.Session.Reset(cmd.Context()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database reset (session: %s)\n", cmdCtx.Session.ID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	if !isTerminal(os.Stdin) {
		return false
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
