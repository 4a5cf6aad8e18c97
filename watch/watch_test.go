// SPDX-License-Identifier: EPL-2.0

package watch

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ik5/msukit/batch"
	"github.com/ik5/msukit/convert"
	"github.com/ik5/msukit/song"
)

type call struct {
	number int
	first  bool
}

type fakeGenerator struct {
	mu        sync.Mutex
	calls     []call
	retryable map[int]bool
}

func (g *fakeGenerator) Generate(_ context.Context, t song.Track, first bool) convert.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, call{t.Number, first})
	if first && g.retryable[t.Number] {
		return convert.Outcome{Kind: convert.Failure, Message: "busy", Retryable: true}
	}
	return convert.Outcome{Kind: convert.Success, Path: t.Output, Message: convert.MsgSuccess}
}

func (g *fakeGenerator) get() []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]call(nil), g.calls...)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", msg)
}

func writeInput(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setup(t *testing.T, gen *fakeGenerator) (*Watcher, string, string) {
	t.Helper()

	dir := t.TempDir()
	intro := filepath.Join(dir, "intro.wav")
	theme := filepath.Join(dir, "theme.wav")
	writeInput(t, intro, "intro")
	writeInput(t, theme, "theme")

	tracks := []song.Track{
		{Number: 2, Output: filepath.Join(dir, "pack-2.pcm"), Spec: song.Spec{File: theme}},
		{Number: 1, Output: filepath.Join(dir, "pack-1.pcm"), Spec: song.Spec{SubTracks: []song.Spec{{File: intro}, {File: theme}}}},
	}

	w, err := New(gen, tracks, 20*time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return w, intro, theme
}

func TestWatcher_Inputs(t *testing.T) {
	w, intro, theme := setup(t, &fakeGenerator{})

	got := w.Inputs()
	if len(got) != 2 || got[0] != intro || got[1] != theme {
		t.Errorf("Inputs() = %v, want [%s %s]", got, intro, theme)
	}
}

func TestWatcher_RegeneratesAffectedTracks(t *testing.T) {
	gen := &fakeGenerator{}
	w, _, theme := setup(t, gen)

	var mu sync.Mutex
	var results []batch.JobResult
	w.OnResult = func(r batch.JobResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	writeInput(t, theme, "theme v2")
	writeInput(t, theme, "theme v3")

	waitFor(t, func() bool { return len(gen.get()) == 2 }, "both tracks regenerated")

	// Debounced into one run per track, lowest track number first.
	time.Sleep(100 * time.Millisecond)
	calls := gen.get()
	if len(calls) != 2 || calls[0].number != 1 || calls[1].number != 2 {
		t.Errorf("calls = %v, want tracks 1 then 2 once each", calls)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 2 || !results[0].Outcome.Generated() {
		t.Errorf("results = %+v", results)
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	gen := &fakeGenerator{}
	_, intro, _ := setup(t, gen)

	writeInput(t, filepath.Join(filepath.Dir(intro), "notes.txt"), "todo")
	time.Sleep(150 * time.Millisecond)

	if calls := gen.get(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

func TestWatcher_TouchRetriesTransientFailure(t *testing.T) {
	gen := &fakeGenerator{retryable: map[int]bool{1: true}}
	w, intro, _ := setup(t, gen)

	var mu sync.Mutex
	var got batch.JobResult
	w.OnResult = func(r batch.JobResult) {
		mu.Lock()
		got = r
		mu.Unlock()
	}

	w.Touch(intro)
	waitFor(t, func() bool { return len(gen.get()) == 2 }, "retry")

	calls := gen.get()
	if calls[0] != (call{1, true}) || calls[1] != (call{1, false}) {
		t.Errorf("calls = %v, want first attempt then retry of track 1", calls)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got.Retried
	}, "retried result")
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, intro, _ := setup(t, &fakeGenerator{})

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	// Touch after Close must not block.
	w.Touch(intro)
}
