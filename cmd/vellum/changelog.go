package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	vellum "github.com/vellum-docs/vellum"
	"github.com/vellum-docs/vellum/pkg/commits"
	"github.com/vellum-docs/vellum/pkg/release"
)

var (
	changelogVersion    string
	changelogUnreleased bool
	changelogGitRange   string
)

// changelogCmd represents the changelog command
var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Print the changelog for a release, all releases, or pending commits",
	Long: `Print rendered changelog Markdown.

By default every release is printed, newest first. --version selects a
single release, --unreleased previews the commits in commits.log, and
--git-range previews commits read straight from the git repository at
the metadata root (e.g. --git-range v0.9.0..HEAD).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if changelogGitRange != "" {
			reader := commits.NewLogReader(rootDir, slog.Default())
			cs, err := reader.Read(changelogGitRange)
			if err != nil {
				fatal("Failed to read git log", err)
			}
			fmt.Print(release.Unreleased(cs))
			return
		}

		pipeline := vellum.New(rootDir, vellum.WithLogger(slog.Default()))

		build, err := pipeline.Load(context.Background())
		if err != nil {
			fatal("Failed to load metadata", err)
		}

		if changelogUnreleased {
			fmt.Print(release.Unreleased(build.Unreleased))
			return
		}

		if changelogVersion == "" {
			fmt.Print(release.CombinedChangelog(build.Releases))
			return
		}

		r, err := release.Find(build.Releases, changelogVersion)
		if err != nil {
			fatal("Unknown release", err)
		}
		fmt.Print(release.Changelog(r))
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.Flags().StringVar(&changelogVersion, "version", "", "Release version (default: all releases)")
	changelogCmd.Flags().BoolVar(&changelogUnreleased, "unreleased", false, "Preview the changelog entry for commits.log")
	changelogCmd.Flags().StringVar(&changelogGitRange, "git-range", "", "Preview commits from git in the given revision range")
}
