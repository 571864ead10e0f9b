// Package release models tagged releases of the pipeline tool and
// renders their changelogs.
//
// A release is a semantic version, a date, the commits it ships, and
// the highlights written for it. Breaking-change commits without an
// upgrade guide (a breaking highlight) fail the build.
package release

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	version "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/vellum-docs/vellum/pkg/commits"
	"github.com/vellum-docs/vellum/pkg/content"
)

// Release is one tagged release.
type Release struct {
	Version    *version.Version
	Date       time.Time
	Commits    []commits.Commit
	Highlights []content.Highlight
}

// releaseFile is the on-disk YAML shape of a release descriptor.
type releaseFile struct {
	Version string    `yaml:"version"`
	Date    time.Time `yaml:"date"`
	Commits []string  `yaml:"commits"`
}

// LoadDir loads every release descriptor (`*.yml`) under dir, sorted
// ascending by version.
func LoadDir(dir string) ([]Release, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading releases dir %s: %w", dir, err)
	}

	var releases []Release
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		r, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		releases = append(releases, r)
	}

	Sort(releases)

	for i := 1; i < len(releases); i++ {
		if releases[i].Version.Equal(releases[i-1].Version) {
			return nil, fmt.Errorf("duplicate release version %s", releases[i].Version)
		}
	}

	return releases, nil
}

func loadFile(path string) (Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Release{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var rf releaseFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return Release{}, fmt.Errorf("%s: %w", path, err)
	}

	if rf.Version == "" {
		return Release{}, fmt.Errorf("%s: version is required", path)
	}
	v, err := version.NewVersion(rf.Version)
	if err != nil {
		return Release{}, fmt.Errorf("%s: invalid version %q: %w", path, rf.Version, err)
	}
	if rf.Date.IsZero() {
		return Release{}, fmt.Errorf("%s: date is required", path)
	}
	if len(rf.Commits) == 0 {
		return Release{}, fmt.Errorf("%s: a release needs at least one commit", path)
	}

	r := Release{Version: v, Date: rf.Date}
	for i, record := range rf.Commits {
		c, err := commits.ParseRecord(record)
		if err != nil {
			return Release{}, fmt.Errorf("%s: commit %d: %w", path, i, err)
		}
		r.Commits = append(r.Commits, c)
	}
	return r, nil
}

// Sort orders releases ascending by version.
func Sort(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].Version.LessThan(releases[j].Version)
	})
}

// Latest returns the highest-versioned release, or nil when empty.
func Latest(releases []Release) *Release {
	if len(releases) == 0 {
		return nil
	}
	latest := &releases[0]
	for i := range releases {
		if releases[i].Version.GreaterThan(latest.Version) {
			latest = &releases[i]
		}
	}
	return latest
}

// Find returns the release matching the given version string.
func Find(releases []Release, ver string) (*Release, error) {
	v, err := version.NewVersion(ver)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", ver, err)
	}
	for i := range releases {
		if releases[i].Version.Equal(v) {
			return &releases[i], nil
		}
	}
	return nil, fmt.Errorf("no release with version %s", ver)
}

// AttachHighlights associates each release with its highlights, matched
// by version.
func AttachHighlights(releases []Release, highlights []content.Highlight) error {
	for _, h := range highlights {
		hv, err := version.NewVersion(h.Release)
		if err != nil {
			return fmt.Errorf("highlight %s: invalid release %q: %w", h.Path, h.Release, err)
		}
		matched := false
		for i := range releases {
			if releases[i].Version.Equal(hv) {
				releases[i].Highlights = append(releases[i].Highlights, h)
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("highlight %s: no release with version %s", h.Path, h.Release)
		}
	}
	return nil
}

// EnsureUpgradeGuides enforces the breaking-change contract: a release
// shipping breaking commits must carry at least one breaking highlight
// whose body is the upgrade guide.
func EnsureUpgradeGuides(r *Release) error {
	breaking := commits.Breaking(r.Commits)
	if len(breaking) == 0 {
		return nil
	}
	for _, h := range r.Highlights {
		if h.Breaking {
			return nil
		}
	}
	shas := make([]string, 0, len(breaking))
	for _, c := range breaking {
		shas = append(shas, c.ShortSHA())
	}
	return fmt.Errorf("release %s: breaking commits [%s] lack an upgrade guide highlight",
		r.Version, strings.Join(shas, ", "))
}
