// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Broadside Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the Broadside CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broadside",
		Short: "Broadside - naval artillery game account server",
		Long: `Broadside is the account backend for the Broadside naval artillery
game: player registration, sign-in with cookie sessions, profile
management, and the rating scoreboard.`,
	}

	cmd.PersistentFlags().String("config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
