// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/broadside-game/broadside/internal/account"
	accountpg "github.com/broadside-game/broadside/internal/account/postgres"
	"github.com/broadside-game/broadside/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedEntry is one account in a seed roster file.
type seedEntry struct {
	Username   string  `yaml:"username"`
	Email      string  `yaml:"email"`
	Password   string  `yaml:"password"`
	Rank       int32   `yaml:"rank"`
	AvatarLink *string `yaml:"avatar_link"`
}

// defaultRoster is used when no roster file is given. Passwords here are
// development-only credentials.
var defaultRoster = []seedEntry{
	{Username: "admiral", Email: "admiral@broadside.local", Password: "changeme", Rank: 10},
	{Username: "gunner", Email: "gunner@broadside.local", Password: "changeme", Rank: 5},
	{Username: "deckhand", Email: "deckhand@broadside.local", Password: "changeme", Rank: 1},
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with initial accounts",
		Long: `Creates initial player accounts from a YAML roster file, or a small
built-in development roster when no file is given. This command is
idempotent - accounts that already exist are skipped.`,
		RunE: runSeed,
	}

	cmd.Flags().String("roster", "", "YAML roster file with accounts to create")
	cmd.Flags().Duration("timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL, err := cfg.requireDatabaseURL()
	if err != nil {
		return err
	}

	roster := defaultRoster
	if path, _ := cmd.Flags().GetString("roster"); path != "" {
		roster, err = loadRoster(path)
		if err != nil {
			return err
		}
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}

	users := accountpg.NewUserRepository(pool)
	hasher := account.NewArgon2idHasher()

	created := 0
	for _, entry := range roster {
		digest, hashErr := hasher.Hash(entry.Password)
		if hashErr != nil {
			return oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Wrap(hashErr)
		}

		rank := entry.Rank
		if rank == 0 {
			rank = cfg.Account.DefaultRank
		}

		_, insertErr := users.Insert(ctx, &account.User{
			Username:     entry.Username,
			Email:        entry.Email,
			Rank:         rank,
			AvatarLink:   entry.AvatarLink,
			PasswordHash: digest,
		})
		if insertErr != nil {
			if account.KindOf(insertErr) == account.KindConflict {
				cmd.Printf("Account %s already exists, skipping\n", entry.Username)
				continue
			}
			return oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Wrap(insertErr)
		}

		created++
		slog.Info("seeded account", "username", entry.Username, "rank", rank)
	}

	cmd.Printf("Seeding complete: %d created, %d skipped\n", created, len(roster)-created)
	return nil
}

// loadRoster reads and validates a YAML roster file.
func loadRoster(path string) ([]seedEntry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("SEED_ROSTER_INVALID").
			With("path", path).
			Wrap(err)
	}

	var roster []seedEntry
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, oops.Code("SEED_ROSTER_INVALID").
			With("path", path).
			Wrap(err)
	}
	if len(roster) == 0 {
		return nil, oops.Code("SEED_ROSTER_INVALID").
			With("path", path).
			Errorf("roster file contains no accounts")
	}

	for _, entry := range roster {
		if err := account.ValidateUsername(entry.Username); err != nil {
			return nil, oops.Code("SEED_ROSTER_INVALID").
				With("username", entry.Username).
				Wrap(err)
		}
		if err := account.ValidateEmail(entry.Email); err != nil {
			return nil, oops.Code("SEED_ROSTER_INVALID").
				With("username", entry.Username).
				Wrap(err)
		}
		if entry.Password == "" {
			return nil, oops.Code("SEED_ROSTER_INVALID").
				With("username", entry.Username).
				Errorf("password is required")
		}
	}

	return roster, nil
}
