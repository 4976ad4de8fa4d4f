package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reeltruth/reeltruth/internal/db"
	"github.com/reeltruth/reeltruth/internal/logging"
	"github.com/reeltruth/reeltruth/internal/settings"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the API bearer token, creating it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DBPath(), logging.Discard())
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close()

			token, err := settings.EnsureAuthToken(cmd.Context(), settings.NewRepository(database.Conn()), cfg.APIToken())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
