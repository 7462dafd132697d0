// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/broadside-game/broadside/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and migration status",
		Long:  `Check database connectivity and report the current schema migration version.`,
		RunE:  runStatus,
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL, err := cfg.requireDatabaseURL()
	if err != nil {
		return err
	}

	pool, err := store.Connect(cmd.Context(), databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	cmd.Println("Database: reachable")

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("Migrations: none applied")
	} else {
		cmd.Printf("Migrations: version %d (dirty: %t)\n", version, dirty)
	}

	return nil
}
