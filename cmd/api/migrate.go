// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-identity/internal/platform/config"
	"github.com/taibuivan/yomira-identity/internal/platform/migration"
)

// NewMigrateCmd creates the migrate command group.
//
// Only DATABASE_URL (and optionally MIGRATION_PATH) must be set; token secrets are not read.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			if err := migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, steps, newLogger(false)); err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", "down").Wrap(err)
			}
			cmd.Println("Rollback completed")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 for all")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadDatabaseConfig()
				if err != nil {
					return err
				}
				if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, newLogger(false)); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "up").Wrap(err)
				}
				cmd.Println("Migrations completed successfully")
				return nil
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadDatabaseConfig()
				if err != nil {
					return err
				}
				version, dirty, err := migration.Version(cfg.DatabaseURL, cfg.MigrationPath, newLogger(false))
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "version").Wrap(err)
				}
				cmd.Printf("version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func loadDatabaseConfig() (*config.DatabaseConfig, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}
