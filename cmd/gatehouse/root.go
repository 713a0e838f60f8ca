// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the Gatehouse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatehouse",
		Short: "Gatehouse - session-based authentication service",
		Long: `Gatehouse is a session-based authentication service: sign-up,
sign-in, sign-out, and cookie-backed session authentication over HTTP,
with PostgreSQL, Redis, or in-memory storage.`,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
