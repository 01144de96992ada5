// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/store"
)

// SchemaStatus holds the migration state of the database.
type SchemaStatus struct {
	Version uint   `json:"version"`
	Name    string `json:"name,omitempty"`
	Dirty   bool   `json:"dirty"`
	Applied []uint `json:"applied,omitempty"`
	Pending []uint `json:"pending,omitempty"`
}

// statusConfig holds flags for the status subcommand.
type statusConfig struct {
	jsonOutput bool
}

// newStatusCmd creates the status subcommand.
func newStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database schema status",
		Long:  `Show the current migration version and any pending migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, statusCfg *statusConfig) error {
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

	status, err := collectSchemaStatus(migrator)
	if err != nil {
		return err
	}

	if statusCfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return oops.With("operation", "marshal status").Wrap(err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatSchemaStatus(status))
	return nil
}

func collectSchemaStatus(migrator *store.Migrator) (SchemaStatus, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		return SchemaStatus{}, err
	}

	status := SchemaStatus{Version: version, Dirty: dirty}

	if version > 0 {
		name, err := store.MigrationName(version)
		if err != nil {
			return SchemaStatus{}, err
		}
		status.Name = name
	}

	if status.Applied, err = migrator.AppliedMigrations(); err != nil {
		return SchemaStatus{}, err
	}
	if status.Pending, err = migrator.PendingMigrations(); err != nil {
		return SchemaStatus{}, err
	}

	return status, nil
}

func formatSchemaStatus(status SchemaStatus) string {
	var b strings.Builder

	if status.Version == 0 {
		b.WriteString("Schema: empty (no migrations applied)\n")
	} else {
		fmt.Fprintf(&b, "Schema: version %d", status.Version)
		if status.Name != "" {
			fmt.Fprintf(&b, " (%s)", status.Name)
		}
		b.WriteString("\n")
	}

	if status.Dirty {
		b.WriteString("WARNING: schema is dirty, a migration failed partway; fix the database and use --force\n")
	}

	if len(status.Pending) == 0 {
		b.WriteString("Pending: none")
	} else {
		fmt.Fprintf(&b, "Pending: %d migration(s):", len(status.Pending))
		for _, v := range status.Pending {
			fmt.Fprintf(&b, " %06d", v)
		}
	}

	return b.String()
}
