package vellum

import "log/slog"

// options holds the internal configuration for a build pipeline.
type options struct {
	logger *slog.Logger
	outDir string
	strict bool
	force  bool
}

// Option defines a functional option for configuring Vellum.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		strict: true,
	}
}

// WithLogger sets the logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutputDir overrides where generated artifacts are written.
// Defaults to `generated/` under the metadata root.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outDir = dir
	}
}

// WithStrict controls scope checking for release commits. When strict,
// an unknown commit scope fails the build; otherwise it logs a warning.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithForce bypasses the render cache, re-rendering every component.
func WithForce(force bool) Option {
	return func(o *options) {
		o.force = force
	}
}
