// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/store"
)

// migrateConfig holds flags for the migrate subcommand.
type migrateConfig struct {
	down  bool
	steps int
	force int
}

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply pending schema migrations against the PostgreSQL database.
With --down, roll everything back instead. With --steps, apply a fixed
number of migrations (negative rolls back). With --force, set the schema
version without running migrations, for dirty-state recovery only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&cfg.steps, "steps", 0, "apply exactly n migrations, negative for rollback")
	cmd.Flags().IntVar(&cfg.force, "force", -1, "force the schema version without migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, migrateCfg *migrateConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	switch {
	case migrateCfg.force >= 0:
		if err := migrator.Force(migrateCfg.force); err != nil {
			return err
		}
		cmd.Printf("Schema version forced to %d\n", migrateCfg.force)
	case migrateCfg.steps != 0:
		if err := migrator.Steps(migrateCfg.steps); err != nil {
			return err
		}
		cmd.Printf("Applied %d migration step(s)\n", migrateCfg.steps)
	case migrateCfg.down:
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("All migrations rolled back")
	default:
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
	}

	return nil
}
