// Package vellum is the composition root for the Vellum docs toolkit.
//
// Vellum turns the structured metadata of a pipeline tool — component
// descriptors, release records, and front-matter documents — into
// generated documentation artifacts: example TOML configs, changelogs,
// and component summaries.
//
// Usage:
//
//	pipeline := vellum.New("./docs-meta",
//		vellum.WithLogger(logger),
//		vellum.WithOutputDir("./generated"),
//	)
//	if err := pipeline.Generate(ctx); err != nil {
//		// a malformed metadata file fails the build
//	}
package vellum

import (
	"path/filepath"

	"github.com/vellum-docs/vellum/internal/generate"
)

// Version exposes the version of the toolkit.
const Version = "0.4.0"

// DefaultOutputDir is the output directory used when none is configured,
// relative to the metadata root.
const DefaultOutputDir = "generated"

// New creates a docs build pipeline rooted at the given metadata
// directory.
func New(root string, opts ...Option) *generate.Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	outDir := o.outDir
	if outDir == "" {
		outDir = filepath.Join(root, DefaultOutputDir)
	}

	p := generate.NewPipeline(root, outDir, o.logger)
	p.Strict = o.strict
	p.Force = o.force
	return p
}
