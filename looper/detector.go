// SPDX-License-Identifier: EPL-2.0

package looper

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ik5/msukit/tool"
)

// DefaultCommand is the detector executable looked up on PATH.
const DefaultCommand = "pymusiclooper"

// Options configures a Detector.
type Options struct {
	// Path is the detector executable. Empty uses DefaultCommand.
	Path string
	// CacheDir holds result files. Empty disables caching.
	CacheDir string
	Executor tool.Executor
	Logger   *log.Logger
}

// Detector runs PyMusicLooper. It is safe for concurrent use.
type Detector struct {
	runner   *tool.Runner
	cacheDir string
	logger   *log.Logger

	mu      sync.Mutex
	version *Version
}

// New creates a Detector.
func New(opts Options) *Detector {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Path == "" {
		opts.Path = DefaultCommand
	}

	runner := tool.NewRunner(opts.Path)
	if opts.Executor != nil {
		runner.Executor = opts.Executor
	}

	return &Detector{runner: runner, cacheDir: opts.CacheDir, logger: logger}
}

// Probe checks the installed version. A successful probe is remembered.
func (d *Detector) Probe() (Version, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.version != nil {
		return *d.version, nil
	}

	res, err := d.runner.Run([]string{"--version"}, "")
	if err != nil {
		return Version{}, fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	if res.Failed() {
		return Version{}, fmt.Errorf("%w: %s", ErrNotInstalled, res.Stderr)
	}

	v, err := ParseVersion(res.Stdout)
	if err != nil {
		return Version{}, err
	}
	if !v.AtLeast(MinVersion) {
		return v, fmt.Errorf("%w, found %s", ErrTooOld, v)
	}

	d.version = &v
	return v, nil
}

// MultipleResults reports whether the installed version ranks
// alternative loops. It probes the version if needed.
func (d *Detector) MultipleResults() bool {
	v, err := d.Probe()
	return err == nil && v.AtLeast(MultiResultVersion)
}

// Detect finds loop points in file. Releases from MultiResultVersion on
// return every candidate ranked by score; older ones return a single
// point with a zero score.
func (d *Detector) Detect(file string, p Params) ([]Point, error) {
	v, err := d.Probe()
	if err != nil {
		return nil, err
	}

	file, err = filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("looper: %w", err)
	}
	p = p.normalized()

	var cachePath string
	if d.cacheDir != "" {
		name, err := cacheName(file, v, p)
		if err != nil {
			return nil, err
		}
		cachePath = filepath.Join(d.cacheDir, name)

		points, found, err := d.loadCached(cachePath)
		if found || err != nil {
			return points, err
		}
	}

	multi := v.AtLeast(MultiResultVersion)
	args := p.Args(file)
	if multi {
		args = append(args, "--alt-export-top", "-1")
	}

	d.logger.Printf("executing PyMusicLooper: %s", strings.Join(args, " "))

	res, err := d.runner.Run(args, "")
	if err != nil {
		if errors.Is(err, tool.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotInstalled, err)
		}
		return nil, fmt.Errorf("looper: %w", err)
	}

	points, err := d.parse(res, multi)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		d.storeCached(cachePath, points)
	}
	return points, nil
}

func (d *Detector) parse(res tool.Result, multi bool) ([]Point, error) {
	failure := func() error {
		msg := res.Stderr
		if msg == "" {
			msg = res.Stdout
		}
		d.logger.Printf("PyMusicLooper error: %s", msg)
		return &ToolError{Message: CleanError(msg)}
	}

	if res.Failed() {
		return nil, failure()
	}

	if multi {
		if !multiOutput.MatchString(res.Stdout) {
			return nil, failure()
		}
		return ParseMulti(res.Stdout)
	}

	if !strings.Contains(res.Stdout, "LOOP_START: ") || !strings.Contains(res.Stdout, "LOOP_END: ") {
		return nil, failure()
	}
	return ParseSingle(res.Stdout)
}
