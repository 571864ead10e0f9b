package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/k14s/difflib"
)

// Stale describes one generated file that is missing or out of date.
type Stale struct {
	Path string // relative to OutDir
	Diff string // pretty diff of disk vs expected, empty when missing
}

// Check re-renders every artifact in memory and compares it against the
// files on disk without writing anything. CI runs this to catch stale
// generated docs.
func (p *Pipeline) Check(ctx context.Context) ([]Stale, error) {
	b, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	expected, err := p.renderGlobals(b)
	if err != nil {
		return nil, err
	}
	for _, c := range b.Components.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full, required, err := RenderComponent(c)
		if err != nil {
			return nil, err
		}
		base := filepath.Join(componentsDir, c.Kind.Plural(), c.Name)
		expected[filepath.Join(base, "example.toml")] = []byte(full)
		expected[filepath.Join(base, "example_required.toml")] = []byte(required)
	}

	var stale []Stale
	for rel, want := range expected {
		got, err := os.ReadFile(filepath.Join(p.OutDir, rel))
		if os.IsNotExist(err) {
			stale = append(stale, Stale{Path: rel})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		if string(got) != string(want) {
			diff := difflib.PPDiff(strings.Split(string(got), "\n"), strings.Split(string(want), "\n"))
			stale = append(stale, Stale{Path: rel, Diff: diff})
		}
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].Path < stale[j].Path })

	if p.Logger != nil {
		p.Logger.Info("check complete", "artifacts", len(expected), "stale", len(stale))
	}
	return stale, nil
}
