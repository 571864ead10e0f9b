// Package content loads the typed front-matter documents that feed the
// docs build: blog posts, guides, and release highlights.
//
// Each type validates its own front matter at load time; a document
// missing required metadata fails the build.
package content

import (
	"fmt"
	"strings"
	"time"
)

// Post is a blog post.
type Post struct {
	Path        string    `yaml:"-"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Author      string    `yaml:"author"`
	Date        time.Time `yaml:"date"`
	Tags        []string  `yaml:"tags"`
	Body        string    `yaml:"-"`
}

func (p *Post) validate() error {
	if p.Title == "" {
		return fmt.Errorf("post %s: title is required", p.Path)
	}
	if p.Author == "" {
		return fmt.Errorf("post %s: author is required", p.Path)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("post %s: date is required", p.Path)
	}
	return nil
}

// Guide is a how-to document, optionally tied to a component.
type Guide struct {
	Path        string `yaml:"-"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Weight      int    `yaml:"weight"`
	Component   string `yaml:"component"`
	Body        string `yaml:"-"`
}

func (g *Guide) validate() error {
	if g.Title == "" {
		return fmt.Errorf("guide %s: title is required", g.Path)
	}
	if g.Description == "" {
		return fmt.Errorf("guide %s: description is required", g.Path)
	}
	return nil
}

// Highlight is a release highlight. Breaking highlights double as
// upgrade guides: their body walks users through the migration.
type Highlight struct {
	Path      string `yaml:"-"`
	Title     string `yaml:"title"`
	Release   string `yaml:"release"`
	PRNumbers []int  `yaml:"pr_numbers"`
	Breaking  bool   `yaml:"breaking"`
	Body      string `yaml:"-"`
}

func (h *Highlight) validate() error {
	if h.Title == "" {
		return fmt.Errorf("highlight %s: title is required", h.Path)
	}
	if h.Release == "" {
		return fmt.Errorf("highlight %s: release is required", h.Path)
	}
	if h.Breaking && strings.TrimSpace(h.Body) == "" {
		return fmt.Errorf("highlight %s: breaking changes require an upgrade guide body", h.Path)
	}
	return nil
}
