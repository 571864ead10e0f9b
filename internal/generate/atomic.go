package generate

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempFilePrefix marks in-flight atomic writes; the watcher ignores
// events for these files.
const tempFilePrefix = "vellum-tmp-"

// writeFileAtomic publishes data at filename through a temp file in the
// same directory; the rename is the commit point. Generated docs feed
// other build steps, and a half-written file is worse than a missing
// one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", filename, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", filename, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filename, err)
	}

	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("publishing %s: %w", filename, err)
	}
	return nil
}
