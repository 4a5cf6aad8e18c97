// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"fmt"
	"log"
	"sync"

	"github.com/ik5/msukit/audio"
)

// DefaultPreviewSeconds is how far before the end a preview starts.
const DefaultPreviewSeconds = 5.0

// Engine plays one MSU1 file at a time through a sink. Starting a new file
// stops the previous one first.
type Engine struct {
	sink   AudioSink
	logger *log.Logger

	// PreviewSeconds is the lookback used by Play with fromEnd set.
	PreviewSeconds float64
	// FeedSize is the buffer size in bytes between decoding and the sink.
	FeedSize int
	// OnState is called on every session state change.
	OnState func(path string, s State)

	mu      sync.Mutex
	current *PlaybackSession
	volume  float64
}

// NewEngine creates an Engine playing through sink.
func NewEngine(sink AudioSink, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		sink:           sink,
		logger:         logger,
		PreviewSeconds: DefaultPreviewSeconds,
		FeedSize:       DefaultFeedSize,
		volume:         1,
	}
}

// Play starts path from its beginning, or PreviewSeconds before its end
// when fromEnd is set so the loop seam is heard quickly.
func (e *Engine) Play(path string, fromEnd bool) (*PlaybackSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.stopLocked(); err != nil {
		return nil, err
	}

	stream, err := OpenStream(path)
	if err != nil {
		return nil, err
	}

	h := stream.Header()
	if !h.LoopValid() {
		e.logger.Printf("%s: loop point %d is past the last sample %d, playing once", path, h.LoopPoint, h.TotalSamples)
	}

	if fromEnd {
		if _, err := stream.SeekPreview(e.PreviewSeconds, audio.SampleRate); err != nil {
			stream.Close()
			return nil, err
		}
	}

	s := newSession(path, stream, NewFeed(e.FeedSize), e.volume, e.notify)

	out, err := e.sink.Open(s.feed)
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("loop: opening %s output: %w", e.sink.Name(), err)
	}

	if err := s.start(out); err != nil {
		return nil, err
	}

	e.logger.Printf("playing %s on %s", path, e.sink.Name())
	e.current = s
	return s, nil
}

// Current returns the active session, or nil.
func (e *Engine) Current() *PlaybackSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Stop ends the active session, if any.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked()
}

func (e *Engine) stopLocked() error {
	if e.current == nil {
		return nil
	}
	err := e.current.Stop()
	e.current = nil
	return err
}

// SetVolume sets the playback volume in [0, 1] for the active session and
// later ones.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = clampVolume(v)
	if e.current != nil {
		e.current.SetVolume(e.volume)
	}
}

// Volume is the current playback volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Close stops playback and releases the sink.
func (e *Engine) Close() error {
	if err := e.Stop(); err != nil {
		return err
	}
	return e.sink.Close()
}

func (e *Engine) notify(path string, s State) {
	if e.OnState != nil {
		e.OnState(path, s)
	}
}
