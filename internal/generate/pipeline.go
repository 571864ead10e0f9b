// Package generate orchestrates the docs build: it loads the component
// schema, content documents, and release metadata from the metadata
// root, validates everything eagerly, and renders the generated
// artifacts (example configs, changelogs, component summaries).
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vellum-docs/vellum/pkg/commits"
	"github.com/vellum-docs/vellum/pkg/configwriter"
	"github.com/vellum-docs/vellum/pkg/content"
	"github.com/vellum-docs/vellum/pkg/release"
	"github.com/vellum-docs/vellum/pkg/schema"
)

// Metadata root layout.
const (
	componentsDir  = "components"
	releasesDir    = "releases"
	highlightsDir  = "highlights"
	postsDir       = "posts"
	guidesDir      = "guides"
	commitsLogFile = "commits.log" // commits not yet assigned to a release
)

// Pipeline is one docs build over a metadata root.
type Pipeline struct {
	Root   string
	OutDir string
	Logger *slog.Logger
	Strict bool // fail on unknown commit scopes instead of warning
	Force  bool // ignore the render cache

	cache *cache
}

// NewPipeline creates a pipeline rooted at root, writing to outDir.
func NewPipeline(root, outDir string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Root:   root,
		OutDir: outDir,
		Logger: logger,
		Strict: true,
		cache:  newCache(root),
	}
}

// Build holds everything loaded from the metadata root.
type Build struct {
	Components *schema.Set
	Posts      []content.Post
	Guides     []content.Guide
	Highlights []content.Highlight
	Releases   []release.Release
	Unreleased []commits.Commit
}

// Load parses and validates the whole metadata tree. Any malformed
// file aborts the build.
func (p *Pipeline) Load(ctx context.Context) (*Build, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := schema.LoadDir(filepath.Join(p.Root, componentsDir), p.Logger)
	if err != nil {
		return nil, err
	}

	posts, err := content.LoadPosts(filepath.Join(p.Root, postsDir))
	if err != nil {
		return nil, err
	}
	guides, err := content.LoadGuides(filepath.Join(p.Root, guidesDir))
	if err != nil {
		return nil, err
	}
	highlights, err := content.LoadHighlights(filepath.Join(p.Root, highlightsDir))
	if err != nil {
		return nil, err
	}
	releases, err := release.LoadDir(filepath.Join(p.Root, releasesDir))
	if err != nil {
		return nil, err
	}
	unreleased, err := loadCommitsLog(filepath.Join(p.Root, commitsLogFile))
	if err != nil {
		return nil, err
	}

	b := &Build{
		Components: set,
		Posts:      posts,
		Guides:     guides,
		Highlights: highlights,
		Releases:   releases,
		Unreleased: unreleased,
	}

	if err := p.validate(b); err != nil {
		return nil, err
	}

	if p.Logger != nil {
		p.Logger.Info("metadata loaded",
			"components", set.Len(),
			"posts", len(posts),
			"guides", len(guides),
			"highlights", len(highlights),
			"releases", len(releases),
			"unreleased_commits", len(unreleased),
		)
	}

	return b, nil
}

// loadCommitsLog reads the optional log of commits that have not been
// rolled into a release yet. A missing file means there are none.
func loadCommitsLog(path string) ([]commits.Commit, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cs, err := commits.ParseLog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cs, nil
}

// validate enforces the cross-file invariants.
func (p *Pipeline) validate(b *Build) error {
	names := b.Components.Names()

	for _, g := range b.Guides {
		if g.Component != "" && !names[g.Component] {
			return fmt.Errorf("guide %s: unknown component %q", g.Path, g.Component)
		}
	}

	if err := release.AttachHighlights(b.Releases, b.Highlights); err != nil {
		return err
	}

	allowed := commits.AllowedScopes(names)
	released := make(map[string]string)
	for i := range b.Releases {
		r := &b.Releases[i]
		if err := commits.ValidateScopes(r.Commits, allowed); err != nil {
			if p.Strict {
				return fmt.Errorf("release %s: %w", r.Version, err)
			}
			if p.Logger != nil {
				p.Logger.Warn("scope check", "release", r.Version.String(), "error", err)
			}
		}
		if err := release.EnsureUpgradeGuides(r); err != nil {
			return err
		}
		for _, c := range r.Commits {
			released[c.SHA] = r.Version.String()
		}
	}

	if err := commits.ValidateScopes(b.Unreleased, allowed); err != nil {
		if p.Strict {
			return fmt.Errorf("%s: %w", commitsLogFile, err)
		}
		if p.Logger != nil {
			p.Logger.Warn("scope check", "source", commitsLogFile, "error", err)
		}
	}
	for _, c := range b.Unreleased {
		if ver, ok := released[c.SHA]; ok {
			return fmt.Errorf("%s: commit %s is already in release %s", commitsLogFile, c.ShortSHA(), ver)
		}
	}

	return nil
}

// Generate runs the full build and writes the artifacts to OutDir.
func (p *Pipeline) Generate(ctx context.Context) error {
	b, err := p.Load(ctx)
	if err != nil {
		return err
	}

	if !p.Force {
		if err := p.cache.Load(); err != nil && p.Logger != nil {
			p.Logger.Warn("failed to load render cache", "error", err)
		}
	}

	seen := make(map[string]bool)
	for _, c := range b.Components.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.generateComponent(c, seen); err != nil {
			return err
		}
	}

	globals, err := p.renderGlobals(b)
	if err != nil {
		return err
	}
	for rel, data := range globals {
		if err := writeFileAtomic(filepath.Join(p.OutDir, rel), data, 0644); err != nil {
			return err
		}
	}

	p.cache.Prune(seen)
	if err := p.cache.Save(); err != nil && p.Logger != nil {
		p.Logger.Warn("failed to save render cache", "error", err)
	}

	if p.Logger != nil {
		p.Logger.Info("docs generated", "out", p.OutDir)
	}
	return nil
}

// generateComponent renders and writes both example snippets for one
// component, skipping work when the descriptor is unchanged.
func (p *Pipeline) generateComponent(c *schema.Component, seen map[string]bool) error {
	rel, err := filepath.Rel(p.Root, c.Path)
	if err != nil {
		rel = c.Path
	}
	seen[rel] = true

	outFull := filepath.Join(p.OutDir, componentsDir, c.Kind.Plural(), c.Name, "example.toml")
	outRequired := filepath.Join(p.OutDir, componentsDir, c.Kind.Plural(), c.Name, "example_required.toml")

	info, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.Path, err)
	}
	if !p.Force && p.cache.Fresh(rel, info.ModTime()) && fileExists(outFull) && fileExists(outRequired) {
		if p.Logger != nil {
			p.Logger.Debug("descriptor unchanged, skipping", "id", c.ID())
		}
		return nil
	}

	full, required, err := RenderComponent(c)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(outFull, []byte(full), 0644); err != nil {
		return err
	}
	if err := writeFileAtomic(outRequired, []byte(required), 0644); err != nil {
		return err
	}

	p.cache.Set(rel, c.ID(), info.ModTime())
	if p.Logger != nil {
		p.Logger.Debug("rendered component", "id", c.ID())
	}
	return nil
}

// RenderComponent produces the full and required-only example snippets
// for one component. Both are round-trip verified.
func RenderComponent(c *schema.Component) (full, required string, err error) {
	exampleID := fmt.Sprintf("my_%s_id", c.Kind)

	w, err := configwriter.New(c.Options,
		configwriter.WithTablePath(c.Kind.Plural(), exampleID),
		configwriter.WithCategoryComments(true),
	)
	if err != nil {
		return "", "", fmt.Errorf("component %s: %w", c.ID(), err)
	}
	full, err = w.Render()
	if err != nil {
		return "", "", fmt.Errorf("component %s: %w", c.ID(), err)
	}
	if err := configwriter.Verify(full); err != nil {
		return "", "", fmt.Errorf("component %s: %w", c.ID(), err)
	}

	rw, err := configwriter.New(c.Options,
		configwriter.WithTablePath(c.Kind.Plural(), exampleID),
		configwriter.WithRequiredOnly(true),
	)
	if err != nil {
		return "", "", fmt.Errorf("component %s: %w", c.ID(), err)
	}
	required, err = rw.Render()
	if err != nil {
		return "", "", fmt.Errorf("component %s: %w", c.ID(), err)
	}
	if err := configwriter.Verify(required); err != nil {
		return "", "", fmt.Errorf("component %s: %w", c.ID(), err)
	}

	return full, required, nil
}

// componentSummary is one row of the components.json dump.
type componentSummary struct {
	ID                string `json:"id"`
	Kind              string `json:"kind"`
	Name              string `json:"name"`
	Title             string `json:"title"`
	Status            string `json:"status"`
	DeliveryGuarantee string `json:"delivery_guarantee,omitempty"`
	FunctionCategory  string `json:"function_category"`
	Options           int    `json:"options"`
	Fields            int    `json:"fields"`
}

// renderGlobals produces the artifacts that span components: the JSON
// summary and the changelogs. Keys are paths relative to OutDir.
func (p *Pipeline) renderGlobals(b *Build) (map[string][]byte, error) {
	out := make(map[string][]byte)

	var summaries []componentSummary
	for _, c := range b.Components.All() {
		summaries = append(summaries, componentSummary{
			ID:                c.ID(),
			Kind:              string(c.Kind),
			Name:              c.Name,
			Title:             c.Title,
			Status:            string(c.Status),
			DeliveryGuarantee: string(c.DeliveryGuarantee),
			FunctionCategory:  c.FunctionCategory,
			Options:           len(c.Options),
			Fields:            len(c.Fields),
		})
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, err
	}
	out["components.json"] = append(data, '\n')

	for i := range b.Releases {
		r := &b.Releases[i]
		out[filepath.Join("changelog", r.Version.String()+".md")] = []byte(release.Changelog(r))
	}
	if len(b.Releases) > 0 {
		out["CHANGELOG.md"] = []byte(release.CombinedChangelog(b.Releases))
	}

	return out, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
