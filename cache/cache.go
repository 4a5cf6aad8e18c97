// SPDX-License-Identifier: EPL-2.0

package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
)

// DefaultRetention is how long an untouched record survives Sweep.
const DefaultRetention = 30 * 24 * time.Hour

// Cache stores one record file per output path under dir. Records for the
// same output must not be written concurrently; callers key jobs by output.
type Cache struct {
	dir    string
	logger *log.Logger
}

// New returns a cache rooted at dir. The directory is created on the first
// Store. A nil logger falls back to log.Default().
func New(dir string, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}

	return &Cache{dir: dir, logger: logger}
}

// Dir is the directory holding the records.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) recordPath(outputPath string) string {
	return filepath.Join(c.dir, Key(outputPath))
}

// IsCached reports whether the output exists and the stored record matches
// the digests of descriptor, output and inputs exactly. Any read or hash
// failure counts as a miss.
func (c *Cache) IsCached(outputPath, descriptorPath string, inputs []string) bool {
	if _, err := os.Stat(outputPath); err != nil {
		return false
	}

	stored, err := os.ReadFile(c.recordPath(outputPath))
	if err != nil {
		return false
	}

	want, err := Value(descriptorPath, outputPath, inputs)
	if err != nil {
		return false
	}

	return string(stored) == want
}

// Store records the current digests for outputPath, replacing any earlier
// record.
func (c *Cache) Store(outputPath, descriptorPath string, inputs []string) error {
	value, err := Value(descriptorPath, outputPath, inputs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if err := os.WriteFile(c.recordPath(outputPath), []byte(value), 0o644); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	return nil
}

// Remove forgets the record for outputPath. A missing record is not an error.
func (c *Cache) Remove(outputPath string) error {
	err := os.Remove(c.recordPath(outputPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Sweep deletes records last modified more than retention ago and returns
// how many were removed. Failures on single files are logged and skipped.
func (c *Cache) Sweep(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			c.logger.Printf("cache sweep: stat %s: %v", entry.Name(), err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.logger.Printf("cache sweep: remove %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.Printf("cache sweep: removed %d stale records from %s", removed, c.dir)
	}

	return removed, nil
}
