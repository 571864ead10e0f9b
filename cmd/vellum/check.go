package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	vellum "github.com/vellum-docs/vellum"
	"github.com/vellum-docs/vellum/internal/generate"
)

var checkDiff bool

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate metadata and verify generated files are up to date",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pipeline := vellum.New(rootDir,
			vellum.WithLogger(slog.Default()),
		)

		stale, err := pipeline.Check(context.Background())
		if err != nil {
			fatal("Check failed", err)
		}
		reportStale(stale)
	},
}

// reportStale prints stale artifacts and exits non-zero if any exist.
func reportStale(stale []generate.Stale) {
	if len(stale) == 0 {
		fmt.Println("All generated files are up to date.")
		return
	}

	for _, s := range stale {
		fmt.Printf("stale: %s\n", s.Path)
		if checkDiff && s.Diff != "" {
			fmt.Println(s.Diff)
		}
	}
	fmt.Fprintf(os.Stderr, "%d generated file(s) out of date. Run `vellum generate`.\n", len(stale))
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkDiff, "diff", false, "Print diffs for stale files")
}
