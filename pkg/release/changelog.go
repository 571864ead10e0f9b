package release

import (
	"fmt"
	"strings"

	"github.com/vellum-docs/vellum/pkg/commits"
)

// sectionTitles maps commit types to changelog section headings.
// Types absent here fold into "Housekeeping".
var sectionTitles = map[string]string{
	commits.TypeFeat:        "New features",
	commits.TypeEnhancement: "Enhancements",
	commits.TypeFix:         "Bug fixes",
	commits.TypePerf:        "Performance",
	commits.TypeDocs:        "Documentation",
}

const housekeepingTitle = "Housekeeping"

// Changelog renders one release as Markdown: a version header, a
// breaking-changes section first, then one section per commit type in
// significance order.
func Changelog(r *Release) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s)\n", r.Version, r.Date.Format("2006-01-02"))

	if breaking := commits.Breaking(r.Commits); len(breaking) > 0 {
		b.WriteString("\n### Breaking changes\n\n")
		for _, c := range breaking {
			b.WriteString(bullet(c))
		}
		for _, h := range r.Highlights {
			if h.Breaking {
				fmt.Fprintf(&b, "\nSee the upgrade guide: %s\n", h.Title)
			}
		}
	}

	writeSections(&b, nonBreaking(r.Commits))
	return b.String()
}

// Unreleased renders commits not yet assigned to any release, as a
// preview of the next changelog entry.
func Unreleased(cs []commits.Commit) string {
	var b strings.Builder
	b.WriteString("## Unreleased\n")

	if len(cs) == 0 {
		b.WriteString("\nNo unreleased changes.\n")
		return b.String()
	}

	if breaking := commits.Breaking(cs); len(breaking) > 0 {
		b.WriteString("\n### Breaking changes\n\n")
		for _, c := range breaking {
			b.WriteString(bullet(c))
		}
	}
	writeSections(&b, nonBreaking(cs))
	return b.String()
}

// writeSections emits one section per commit type in changelog order,
// folding unmapped types into Housekeeping.
func writeSections(b *strings.Builder, cs []commits.Commit) {
	groups := commits.GroupByType(cs)
	var housekeeping []commits.Commit
	for _, ctype := range commits.Types {
		group := groups[ctype]
		if len(group) == 0 {
			continue
		}
		title, ok := sectionTitles[ctype]
		if !ok {
			housekeeping = append(housekeeping, group...)
			continue
		}
		fmt.Fprintf(b, "\n### %s\n\n", title)
		for _, c := range group {
			b.WriteString(bullet(c))
		}
	}
	if len(housekeeping) > 0 {
		fmt.Fprintf(b, "\n### %s\n\n", housekeepingTitle)
		for _, c := range housekeeping {
			b.WriteString(bullet(c))
		}
	}
}

// CombinedChangelog renders every release, newest first.
func CombinedChangelog(releases []Release) string {
	ordered := make([]Release, len(releases))
	copy(ordered, releases)
	Sort(ordered)

	var b strings.Builder
	b.WriteString("# Changelog\n")
	for i := len(ordered) - 1; i >= 0; i-- {
		b.WriteString("\n")
		b.WriteString(Changelog(&ordered[i]))
	}
	return b.String()
}

func bullet(c commits.Commit) string {
	if c.Scope != "" {
		return fmt.Sprintf("- **%s**: %s (%s)\n", c.Scope, c.Description, c.ShortSHA())
	}
	return fmt.Sprintf("- %s (%s)\n", c.Description, c.ShortSHA())
}

func nonBreaking(cs []commits.Commit) []commits.Commit {
	var out []commits.Commit
	for _, c := range cs {
		if !c.Breaking {
			out = append(out, c)
		}
	}
	return out
}
