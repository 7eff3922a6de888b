package commands

import (
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the schema catalog",
		Long: `Show the schema catalog introspected from the database.

Without arguments, lists all tables. With a table name, lists that table's
columns and their semantic types (id, text, enum, number, timestamp, boolean).`,
		Example: `  homeql schema
  homeql schema devices
  homeql schema users --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			tableName := ""
			if len(args) > 0 {
				tableName = args[0]
			}
			return renderCatalog(cmd.OutOrStdout(), cmdCtx.Session.Catalog(), tableName,
				resolveFormat(cmdCtx.Cfg.OutputFormat))
		},
	}

	return cmd
}
