package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	corecfg "github.com/vitalink/vitalink-core/internal/core/config"
	"github.com/vitalink/vitalink-core/internal/core/storage/postgres"
	"github.com/vitalink/vitalink-core/internal/migrations"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPostgresConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.RunMigrations(db, true); err != nil {
				return err
			}
			version, dirty, err := migrations.Version(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPostgresConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
			if err != nil {
				return err
			}
			defer db.Close()

			version, dirty, err := migrations.Version(db)
			if err != nil {
				return err
			}
			if version == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func loadPostgresConfig(configPath string) (*corecfg.Config, error) {
	cfg, err := corecfg.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Type != "postgres" {
		slog.Error("Migrations require the postgres backend", "database_type", cfg.Database.Type)
		return nil, fmt.Errorf("database.type is %q, not postgres", cfg.Database.Type)
	}
	return cfg, nil
}
