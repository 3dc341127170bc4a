package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/punchclock/internal/infrastructure/config"
	"github.com/emiliopalmerini/punchclock/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).
Only the libsql and sqlite stores have migrations.

Examples:
  punchclock migrate      # Run all pending migrations
  punchclock migrate 1    # Migrate to version 1
  punchclock migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db, err := openSQL(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	m := migrate.New(db.DB, cfg.Logger())
	if err := m.To(cmd.Context(), target); err != nil {
		return err
	}

	version, _, err := m.CurrentVersion(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
	return nil
}
