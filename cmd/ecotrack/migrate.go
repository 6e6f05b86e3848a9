package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/ecotrack/internal/config"
	"github.com/dukerupert/ecotrack/internal/database"
	"github.com/dukerupert/ecotrack/internal/logging"
)

// migrateCommand applies pending migrations and reports the schema version.
// database.Open migrates on its own; this exists for deploy pipelines that run
// it before starting the server.
func migrateCommand(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := database.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			logger.Info("database migrated", "path", cfg.Database.Path, "version", v)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}
