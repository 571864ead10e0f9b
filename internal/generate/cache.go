package generate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// indexEntry records when a descriptor was last rendered.
type indexEntry struct {
	ID           string    `json:"id"`
	LastModified time.Time `json:"last_modified"`
}

// index is the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is the descriptor path relative to the root
	dirty   bool
	mu      sync.RWMutex
}

// cache skips re-rendering component snippets whose descriptor has not
// changed since the previous build. Watch mode leans on this: a touch
// to one descriptor re-renders one component, not the whole tree.
type cache struct {
	path string
	idx  *index
}

// newCache initializes a cache stored at {root}/.vellum/index.json.
func newCache(root string) *cache {
	return &cache{
		path: filepath.Join(root, ".vellum", "index.json"),
		idx: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the cache from disk. A missing or corrupted file starts a
// fresh index rather than failing the build.
func (c *cache) Load() error {
	c.idx.mu.Lock()
	defer c.idx.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, c.idx); err != nil {
		c.idx.Entries = make(map[string]*indexEntry)
		return nil
	}

	c.idx.dirty = false
	return nil
}

// Save persists the cache to disk if it changed.
func (c *cache) Save() error {
	c.idx.mu.RLock()
	if !c.idx.dirty {
		c.idx.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.idx, "", "  ")
	c.idx.mu.RUnlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return err
	}

	c.idx.mu.Lock()
	c.idx.dirty = false
	c.idx.mu.Unlock()

	return nil
}

// Fresh reports whether the entry exists and matches the current mtime.
func (c *cache) Fresh(relPath string, currentMtime time.Time) bool {
	c.idx.mu.RLock()
	defer c.idx.mu.RUnlock()

	entry, ok := c.idx.Entries[relPath]
	return ok && entry.LastModified.Equal(currentMtime)
}

// Set updates an entry in the cache.
func (c *cache) Set(relPath, id string, mtime time.Time) {
	c.idx.mu.Lock()
	defer c.idx.mu.Unlock()

	c.idx.Entries[relPath] = &indexEntry{ID: id, LastModified: mtime}
	c.idx.dirty = true
}

// Prune removes entries that are not in the 'keep' set.
func (c *cache) Prune(keep map[string]bool) {
	c.idx.mu.Lock()
	defer c.idx.mu.Unlock()

	for path := range c.idx.Entries {
		if !keep[path] {
			delete(c.idx.Entries, path)
			c.idx.dirty = true
		}
	}
}
