package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inferd",
		Short:         "Local inference daemon over llama.cpp with per-model context pooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), modelsCmd(), versionCmd())
	return root
}
