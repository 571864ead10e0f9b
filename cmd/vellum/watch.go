package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	vellum "github.com/vellum-docs/vellum"
)

var watchOut string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the metadata tree and regenerate on change",
	Long: `Run an initial build, then watch the metadata directories and
regenerate the documentation whenever a file changes. Stops on Ctrl-C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pipeline := vellum.New(rootDir,
			vellum.WithLogger(slog.Default()),
			vellum.WithOutputDir(watchOut),
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := pipeline.Watch(ctx); err != nil {
			fatal("Watch failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory (default: <root>/generated)")
}
