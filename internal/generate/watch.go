package generate

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of filesystem events (editors often
// write several times per save) into a single regeneration.
const debounceWindow = 250 * time.Millisecond

// Watch regenerates the docs whenever the metadata tree changes. It
// blocks until ctx is cancelled. A failing regeneration is logged and
// watching continues; the next edit gets another chance.
func (p *Pipeline) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range []string{componentsDir, releasesDir, highlightsDir, postsDir, guidesDir} {
		if err := addRecursive(watcher, filepath.Join(p.Root, dir)); err != nil {
			return err
		}
	}
	// The root itself is watched (non-recursively) for commits.log.
	if err := watcher.Add(p.Root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", p.Root, err)
	}

	// Initial build so the watcher starts from a consistent state.
	if err := p.Generate(ctx); err != nil {
		if p.Logger != nil {
			p.Logger.Error("initial build failed", "error", err)
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if p.ignoreEvent(event) {
				continue
			}
			if p.Logger != nil {
				p.Logger.Debug("metadata changed", "path", event.Name, "op", event.Op.String())
			}
			// New directories need watching too.
			if event.Has(fsnotify.Create) {
				_ = addRecursive(watcher, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := p.Generate(ctx); err != nil {
				if p.Logger != nil {
					p.Logger.Error("regeneration failed", "error", err)
				}
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if p.Logger != nil {
				p.Logger.Error("fsnotify error", "error", werr)
			}
		}
	}
}

// ignoreEvent filters events the build does not care about: chmods,
// temp files, and anything under the output or cache directories.
func (p *Pipeline) ignoreEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, tempFilePrefix) || strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasPrefix(event.Name, p.OutDir) {
		return true
	}
	// At the root level only commits.log matters.
	if filepath.Dir(event.Name) == filepath.Clean(p.Root) && base != commitsLogFile {
		return true
	}
	return false
}

// addRecursive watches dir and every directory beneath it. Missing
// directories are skipped: content sections are optional.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return nil // optional section
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
