// SPDX-License-Identifier: EPL-2.0

package looper

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCacheRetention is how long results stay cached.
const DefaultCacheRetention = 30 * 24 * time.Hour

func md5Hex(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

// cacheName names the result file for file searched with p by version v.
func cacheName(file string, v Version, p Params) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("looper: %w", err)
	}
	defer f.Close()

	sum := md5.Sum([]byte(file))
	pathHash := strings.ToUpper(hex.EncodeToString(sum[:]))
	fileHash, err := md5Hex(f)
	if err != nil {
		return "", fmt.Errorf("looper: hashing %s: %w", file, err)
	}

	return fmt.Sprintf("%s_%s_%d_%s.yml", pathHash, fileHash, v.Number(), p.cacheSuffix()), nil
}

func (d *Detector) loadCached(path string) ([]Point, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looper: %w", err)
	}

	var points []Point
	if err := yaml.Unmarshal(data, &points); err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrBadCache, err)
	}
	return points, true, nil
}

func (d *Detector) storeCached(path string, points []Point) {
	data, err := yaml.Marshal(points)
	if err != nil {
		d.logger.Printf("error encoding PyMusicLooper cache: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		d.logger.Printf("error saving PyMusicLooper cache: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		d.logger.Printf("error saving PyMusicLooper cache: %v", err)
	}
}

// ClearCache deletes cached results older than retention and returns how
// many were removed. A retention of zero or less uses
// DefaultCacheRetention.
func (d *Detector) ClearCache(retention time.Duration) int {
	if d.cacheDir == "" {
		return 0
	}
	if retention <= 0 {
		retention = DefaultCacheRetention
	}

	entries, err := os.ReadDir(d.cacheDir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(d.cacheDir, e.Name())
		if err := os.Remove(path); err != nil {
			d.logger.Printf("could not delete %s: %v", path, err)
			continue
		}
		removed++
	}

	return removed
}
