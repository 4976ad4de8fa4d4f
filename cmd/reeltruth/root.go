package main

import (
	"github.com/spf13/cobra"

	"github.com/reeltruth/reeltruth/internal/config"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newGenAIGenerator)
}

func buildRootCommand(newGenerator generatorFactory) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	ctx.newGenerator = newGenerator

	rootCmd := &cobra.Command{
		Use:           "reeltruth",
		Short:         "Extract and fact-check the claims made in a video",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default $"+config.EnvConfigFile+")")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}
