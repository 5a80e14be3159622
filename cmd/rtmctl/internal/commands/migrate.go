package commands

import (
	"fmt"

	"rtm-portal/internal/database"

	"github.com/spf13/cobra"
)

var (
	runMigrations    = database.RunMigrations
	rollbackAll      = database.RollbackAll
	migrationVersion = database.MigrationVersion
)

// InitMigrateCommands registers "migrate up|down|version".
func InitMigrateCommands(rootCmd *cobra.Command) {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := runMigrations(cfg.Database.URL); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info("migrations applied")
			return printVersion(cmd, cfg.Database.URL)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all data)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("refusing to drop the schema without --yes")
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := rollbackAll(cfg.Database.URL); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			log.Info("migrations rolled back")
			return nil
		},
	}
	downCmd.Flags().Bool("yes", false, "confirm dropping the schema")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			return printVersion(cmd, cfg.Database.URL)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func printVersion(cmd *cobra.Command, dbURL string) error {
	version, dirty, err := migrationVersion(dbURL)
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d%s\n", version, suffix)
	return err
}
