// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/utils"
)

// StopTimeout bounds how long Stop waits for a session to tear down.
const StopTimeout = 30 * 200 * time.Millisecond

const pumpChunk = 4096 * audio.FrameSize

// State of a playback session.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// PlaybackSession is one file being played. A goroutine decodes the
// stream into the feed while the sink's output plays from it.
type PlaybackSession struct {
	path   string
	feed   *Feed
	out    Output
	notify func(string, State)

	mu     sync.Mutex
	stream *Stream
	state  State
	volume float64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newSession(path string, stream *Stream, feed *Feed, volume float64, notify func(string, State)) *PlaybackSession {
	return &PlaybackSession{
		path:   path,
		feed:   feed,
		notify: notify,
		stream: stream,
		volume: volume,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *PlaybackSession) start(out Output) error {
	s.out = out

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		s.pump()
	}()

	if err := out.Start(); err != nil {
		s.feed.Stop()
		<-pumped
		_ = out.Close()
		s.closeStream()
		s.setState(Stopped)
		close(s.done)
		return err
	}

	s.setState(Playing)
	go s.run(pumped)
	return nil
}

func (s *PlaybackSession) run(pumped <-chan struct{}) {
	defer close(s.done)

	select {
	case <-s.out.Done():
	case <-s.stop:
	}

	s.feed.Stop()
	<-pumped
	_ = s.out.Close()
	s.closeStream()
	s.setState(Stopped)
}

func (s *PlaybackSession) pump() {
	buf := make([]byte, pumpChunk)

	for {
		s.mu.Lock()
		n, err := s.stream.Read(buf)
		vol := s.volume
		epoch := s.feed.Epoch()
		s.mu.Unlock()

		if n > 0 {
			scale(buf[:n], vol)
			if _, werr := s.feed.WriteEpoch(buf[:n], epoch); werr != nil {
				return
			}
		}
		if err != nil || n == 0 {
			s.feed.CloseWrite()
			return
		}
	}
}

// scale applies a volume factor to little-endian 16-bit samples in place.
func scale(b []byte, vol float64) {
	if vol == 1 {
		return
	}
	for i := 0; i+1 < len(b); i += audio.BytesPerSample {
		v := int16(binary.LittleEndian.Uint16(b[i:]))
		binary.LittleEndian.PutUint16(b[i:], uint16(utils.ClampInt16(float64(v)*vol)))
	}
}

func (s *PlaybackSession) closeStream() {
	s.mu.Lock()
	_ = s.stream.Close()
	s.mu.Unlock()
}

func (s *PlaybackSession) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()

	if changed && s.notify != nil {
		s.notify(s.path, st)
	}
}

// Path is the file being played.
func (s *PlaybackSession) Path() string { return s.path }

// State reports the session state.
func (s *PlaybackSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session has fully stopped.
func (s *PlaybackSession) Done() <-chan struct{} { return s.done }

// Pause holds playback. It does nothing unless playing.
func (s *PlaybackSession) Pause() {
	if s.State() != Playing {
		return
	}
	s.feed.SetPaused(true)
	s.setState(Paused)
}

// Resume continues paused playback.
func (s *PlaybackSession) Resume() {
	if s.State() != Paused {
		return
	}
	s.feed.SetPaused(false)
	s.setState(Playing)
}

// Toggle switches between playing and paused.
func (s *PlaybackSession) Toggle() {
	switch s.State() {
	case Playing:
		s.Pause()
	case Paused:
		s.Resume()
	}
}

// Seek moves playback to a fraction of the file and drops buffered audio.
func (s *PlaybackSession) Seek(fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.stream.SeekFraction(fraction)
	s.feed.Flush()
	return err
}

// JumpTo moves playback to the given time in seconds.
func (s *PlaybackSession) JumpTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.stream.SeekSeconds(seconds)
	s.feed.Flush()
	return err
}

// SetVolume sets the gain applied to audio decoded from now on, in [0, 1].
func (s *PlaybackSession) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = clampVolume(v)
	s.mu.Unlock()
}

// SetLooping turns wrapping at the end of the track on or off.
func (s *PlaybackSession) SetLooping(on bool) {
	s.mu.Lock()
	s.stream.SetLooping(on)
	s.mu.Unlock()
}

// LengthSeconds is the duration of the track.
func (s *PlaybackSession) LengthSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.LengthSeconds()
}

// PositionSeconds estimates the time being heard, discounting audio still
// sitting in the feed.
func (s *PlaybackSession) PositionSeconds() float64 {
	buffered := int64(s.feed.Buffered() / audio.FrameSize)

	s.mu.Lock()
	sample := s.stream.Sample() - buffered
	h := s.stream.Header()
	looping := s.stream.Looping()
	s.mu.Unlock()

	if sample < 0 && looping {
		sample += h.TotalSamples - int64(h.LoopPoint)
	}
	return float64(max(0, sample)) / audio.SampleRate
}

// Err returns the read error that cut playback short, if any.
func (s *PlaybackSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.Err()
}

// Stop ends playback and waits for the session to tear down.
func (s *PlaybackSession) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })

	select {
	case <-s.done:
		return nil
	case <-time.After(StopTimeout):
		return ErrStopTimeout
	}
}

func clampVolume(v float64) float64 {
	return max(0, min(v, 1))
}
