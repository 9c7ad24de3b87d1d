package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fxplay",
		Short: "Play fx animation scripts",
		Long:  "fxplay runs YAML animation scripts through the fx scheduler,\neither on a simulated clock or in real time, and prints their snapshots.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log scheduler activity to stderr")
	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.Version = version
	return root
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if rootFlags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
