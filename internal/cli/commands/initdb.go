package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/homestack-labs/homeql/internal/cli/config"
	"github.com/homestack-labs/homeql/internal/session"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create and seed the smart home database",
		Long: `Create the smart home database file, apply the schema migrations, and load
the seed dataset (rooms, users, devices, generated usage logs and security
events).

Refuses to touch an existing database unless --force is given.`,
		Example: `  homeql init
  homeql init --database /tmp/demo.db --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			logger := config.GetLogger(cmd.Context())

			path := cfg.DatabasePath
			if path == "" || path == ":memory:" {
				return fmt.Errorf("init requires a file path (set --database or the HOMEQL_DATABASE env var)")
			}

			if _, err := os.Stat(path); err == nil {
				if !force {
					return fmt.Errorf("database already exists at %s (use --force to recreate)", path)
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to remove existing database: %w", err)
				}
			}

			sess, err := session.New(cmd.Context(), session.Config{
				DatabasePath: path,
				Bootstrap:    true,
			}, logger)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database initialized at %s (%d tables)\n",
				path, sess.Catalog().Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Recreate the database if it already exists")

	return cmd
}
