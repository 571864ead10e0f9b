package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	vellum "github.com/vellum-docs/vellum"
)

var (
	generateOut   string
	generateCheck bool
	generateForce bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render all generated documentation artifacts",
	Long: `Load and validate the metadata tree, then render the example TOML
configs, component summary, and changelogs into the output directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pipeline := vellum.New(rootDir,
			vellum.WithLogger(slog.Default()),
			vellum.WithOutputDir(generateOut),
			vellum.WithForce(generateForce),
		)

		ctx := context.Background()

		if generateCheck {
			stale, err := pipeline.Check(ctx)
			if err != nil {
				fatal("Check failed", err)
			}
			reportStale(stale)
			return
		}

		if err := pipeline.Generate(ctx); err != nil {
			fatal("Generation failed", err)
		}
		fmt.Println("Documentation generated.")
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output directory (default: <root>/generated)")
	generateCmd.Flags().BoolVar(&generateCheck, "check", false, "Verify generated files are up to date instead of writing")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Ignore the render cache")
}
