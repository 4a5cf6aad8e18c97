// SPDX-License-Identifier: EPL-2.0

package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ik5/msukit/convert"
	"github.com/ik5/msukit/song"
)

// DefaultWorkers is the number of concurrent converter runs.
const DefaultWorkers = 10

// StubMaxSize is the largest output still treated as an intentionally
// empty track when it has no inputs.
const StubMaxSize = 44500

// Generator builds one track. *convert.Orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, t song.Track, firstAttempt bool) convert.Outcome
}

// JobResult is the final state of one track.
type JobResult struct {
	Track   song.Track
	Outcome convert.Outcome
	// Retried is set when the outcome comes from the serial retry pass.
	Retried bool
	// Skipped is set when the batch was cancelled before the track ran.
	Skipped bool
}

// ProgressFunc is called once per finished track, never concurrently.
type ProgressFunc func(done, total int, r JobResult)

// Report summarizes a batch.
type Report struct {
	Results   []JobResult
	Errors    int
	Warnings  int
	Cancelled bool
	Duration  time.Duration
}

// Summary is the error line shown after a batch, empty when nothing failed.
func (r Report) Summary() string {
	switch r.Errors {
	case 0:
		return ""
	case 1:
		return "There was 1 error when running MsuPcm++"
	default:
		return fmt.Sprintf("There were %d errors when running MsuPcm++", r.Errors)
	}
}

// Scheduler runs many tracks through a Generator.
type Scheduler struct {
	Generator Generator
	Workers   int
	Logger    *log.Logger
	Progress  ProgressFunc
}

// New returns a Scheduler with DefaultWorkers.
func New(gen Generator, logger *log.Logger) *Scheduler {
	return &Scheduler{Generator: gen, Workers: DefaultWorkers, Logger: logger}
}

type run struct {
	s       *Scheduler
	results []JobResult
	done    int
	mu      sync.Mutex
}

// Run generates every track. The first pass runs up to Workers tracks at
// once; tracks whose failure is marked retryable are then run again one at
// a time. Cancelling ctx stops dispatching new tracks and skips the retry
// pass, while tracks already running finish.
func (s *Scheduler) Run(ctx context.Context, tracks []song.Track) Report {
	start := time.Now()
	logger := s.logger()

	r := &run{s: s, results: make([]JobResult, len(tracks))}
	for i, t := range tracks {
		r.results[i] = JobResult{
			Track:   t,
			Outcome: convert.Outcome{Kind: convert.Failure, Message: convert.MsgCancelled},
			Skipped: true,
		}
	}

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var retry []int
	var retryMu sync.Mutex

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, max(len(tracks), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				out := s.Generator.Generate(ctx, tracks[i], true)
				if cancelled(out) {
					continue
				}
				if out.Retryable {
					logger.Printf("track #%d will be retried: %s", tracks[i].Number, out.Message)
					retryMu.Lock()
					retry = append(retry, i)
					retryMu.Unlock()
					r.record(i, out, false)
					continue
				}
				r.finish(i, out, false)
			}
		}()
	}

dispatch:
	for i := range tracks {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Ints(retry)
	if ctx.Err() == nil {
		for _, i := range retry {
			if ctx.Err() != nil {
				break
			}
			out := s.Generator.Generate(ctx, tracks[i], false)
			if cancelled(out) {
				break
			}
			r.finish(i, out, true)
		}
	}

	// Retries that never ran keep their first-pass failure.
	for _, i := range retry {
		if r.results[i].Outcome.Retryable {
			r.results[i].Outcome.Retryable = false
			r.finish(i, r.results[i].Outcome, false)
		}
	}

	rep := Report{Results: r.results, Cancelled: ctx.Err() != nil, Duration: time.Since(start)}
	for _, res := range rep.Results {
		if res.Skipped {
			continue
		}
		switch res.Outcome.Kind {
		case convert.Failure:
			rep.Errors++
		case convert.Warning:
			rep.Warnings++
		}
	}

	logger.Printf("generated %d tracks in %s: %d errors, %d warnings", len(tracks), rep.Duration.Round(time.Millisecond), rep.Errors, rep.Warnings)
	return rep
}

// record stores a provisional outcome without reporting progress.
func (r *run) record(i int, out convert.Outcome, retried bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[i].Outcome = out
	r.results[i].Retried = retried
	r.results[i].Skipped = false
}

func (r *run) finish(i int, out convert.Outcome, retried bool) {
	out = downgradeStub(r.results[i].Track, out)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[i].Outcome = out
	r.results[i].Retried = retried
	r.results[i].Skipped = false
	r.done++

	if r.s.Progress != nil {
		r.s.Progress(r.done, len(r.results), r.results[i])
	}
}

// cancelled reports whether the generator gave up on a track because the
// batch was cancelled before it started.
func cancelled(out convert.Outcome) bool {
	return out.Kind == convert.Failure && strings.HasSuffix(out.Message, convert.MsgCancelled)
}

// downgradeStub turns a "no inputs" failure into a warning when the output
// already holds a small placeholder file.
func downgradeStub(t song.Track, out convert.Outcome) convert.Outcome {
	if out.Kind != convert.Failure || !strings.HasSuffix(out.Message, convert.MsgNoInputs) || t.Output == "" {
		return out
	}

	info, err := os.Stat(t.Output)
	if err != nil || info.Size() > StubMaxSize {
		return out
	}

	out.Kind = convert.Warning
	out.Path = t.Output
	return out
}

func (s *Scheduler) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}
