// SPDX-License-Identifier: EPL-2.0

// Package watch regenerates songs whenever one of their input files
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ik5/msukit/batch"
	"github.com/ik5/msukit/song"
)

// Watcher monitors the inputs of a set of tracks. Bursts of changes are
// debounced and each affected track is generated once per burst.
type Watcher struct {
	gen     batch.Generator
	tracks  []song.Track
	inputs  map[string][]int
	watcher *fsnotify.Watcher
	logger  *log.Logger
	delay   time.Duration

	// OnResult receives every regeneration result. It runs on the watcher
	// goroutine.
	OnResult func(batch.JobResult)

	pending map[int]struct{}
	touched chan string

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New starts watching the directories holding every input of tracks.
func New(gen batch.Generator, tracks []song.Track, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		gen:     gen,
		tracks:  tracks,
		inputs:  make(map[string][]int),
		watcher: fw,
		logger:  logger,
		delay:   debounce,
		pending: make(map[int]struct{}),
		touched: make(chan string),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for i, t := range tracks {
		for _, in := range t.Inputs() {
			abs, err := filepath.Abs(in)
			if err != nil {
				continue
			}
			w.inputs[abs] = append(w.inputs[abs], i)
			dirs[filepath.Dir(abs)] = struct{}{}
		}
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			logger.Printf("watcher add failure for %s: %v", dir, err)
		}
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Inputs lists the watched input files.
func (w *Watcher) Inputs() []string {
	out := make([]string, 0, len(w.inputs))
	for p := range w.inputs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close stops watching and waits for a regeneration in progress to give up.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.cancel()
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleEvent(event) {
				timer.Reset(w.delay)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watcher error: %v", err)
		case path := <-w.touched:
			if w.queue(path) {
				timer.Reset(w.delay)
			}
		case <-timer.C:
			w.regenerate()
		case <-w.done:
			return
		}
	}
}

// handleEvent queues the tracks using the changed file and reports
// whether any were queued.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	return w.queue(event.Name)
}

func (w *Watcher) queue(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	idx, ok := w.inputs[abs]
	if !ok {
		return false
	}

	for _, i := range idx {
		w.pending[i] = struct{}{}
	}
	return true
}

// Touch queues the tracks using path as if it had changed.
func (w *Watcher) Touch(path string) {
	select {
	case w.touched <- path:
	case <-w.done:
	}
}

func (w *Watcher) regenerate() {
	queued := make([]int, 0, len(w.pending))
	for i := range w.pending {
		queued = append(queued, i)
	}
	clear(w.pending)

	sort.Slice(queued, func(a, b int) bool {
		return w.tracks[queued[a]].Number < w.tracks[queued[b]].Number
	})

	for _, i := range queued {
		if w.ctx.Err() != nil {
			return
		}

		t := w.tracks[i]
		w.logger.Printf("input changed, regenerating track #%d", t.Number)

		r := batch.JobResult{Track: t, Outcome: w.gen.Generate(w.ctx, t, true)}
		if r.Outcome.Retryable && w.ctx.Err() == nil {
			r.Outcome = w.gen.Generate(w.ctx, t, false)
			r.Retried = true
		}

		w.logger.Printf("track #%d: %s", t.Number, r.Outcome.UserMessage())
		if w.OnResult != nil {
			w.OnResult(r)
		}
	}
}
