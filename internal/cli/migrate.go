package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"resurate/internal/shared/config"
	"resurate/internal/shared/storage/db"
)

func (e *env) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			sqlDB, err := db.Open(cmd.Context(), cfg.DatabaseURL, db.ProfileMigrate)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			version, err := db.RunMigrations(cmd.Context(), sqlDB)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintf(e.out, "Migrations applied, schema version %d.\n", version)
			return nil
		},
	}
}
