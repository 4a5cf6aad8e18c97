// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"errors"
	"io"
	"sync"

	"github.com/smallnest/ringbuffer"

	"github.com/ik5/msukit/audio"
)

// DefaultFeedSize holds about half a second of 44.1 kHz stereo PCM.
const DefaultFeedSize = 88200

// Feed is the buffer between the goroutine decoding a stream and the sink
// playing it. The writer side blocks while the buffer is full; readers
// either block (Read) or take what is there (TryRead).
type Feed struct {
	buf *ringbuffer.RingBuffer

	mu      sync.Mutex
	cond    *sync.Cond
	epoch   uint64
	paused  bool
	closed  bool
	stopped bool
}

// NewFeed creates a Feed holding up to size bytes.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	f := &Feed{buf: ringbuffer.New(size)}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Write stores all of p, waiting for room as needed. It fails with
// io.ErrClosedPipe once the feed is stopped or closed.
func (f *Feed) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(p, f.epoch)
}

// WriteEpoch is Write for audio decoded during epoch. If the feed is
// flushed before all of p is stored, the rest is dropped and reported as
// written.
func (f *Feed) WriteEpoch(p []byte, epoch uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(p, epoch)
}

func (f *Feed) write(p []byte, epoch uint64) (int, error) {
	written := 0
	for written < len(p) {
		if f.stopped || f.closed {
			return written, io.ErrClosedPipe
		}
		if f.epoch != epoch {
			return len(p), nil
		}

		n, err := f.buf.Write(p[written:])
		written += n
		if n > 0 {
			f.cond.Broadcast()
		}
		if err != nil && !errors.Is(err, ringbuffer.ErrIsFull) && !errors.Is(err, ringbuffer.ErrTooMuchDataToWrite) {
			return written, err
		}
		if written < len(p) {
			f.cond.Wait()
		}
	}

	return written, nil
}

// Epoch counts flushes. Audio decoded before a flush belongs to an older
// epoch.
func (f *Feed) Epoch() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch
}

// Read blocks until audio is available and not paused, then returns whole
// frames. It returns io.EOF once the writer has closed and the buffer is
// drained, or as soon as the feed is stopped.
func (f *Feed) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for !f.stopped && (f.paused || (f.buf.Length() < audio.FrameSize && !f.closed)) {
		f.cond.Wait()
	}
	if f.stopped || f.buf.IsEmpty() {
		return 0, io.EOF
	}

	want := min(len(p), f.buf.Length())
	if want >= audio.FrameSize {
		want -= want % audio.FrameSize
	}

	n, err := f.buf.Read(p[:want])
	f.cond.Broadcast()
	if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
		return n, err
	}
	return n, nil
}

// TryRead copies the whole frames buffered into p without waiting. While
// paused it reads nothing. It returns io.EOF when no more audio will
// arrive.
func (f *Feed) TryRead(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped || (f.closed && f.buf.IsEmpty()) {
		return 0, io.EOF
	}
	want := min(len(p), f.buf.Length())
	want -= want % audio.FrameSize
	if f.paused || want == 0 {
		return 0, nil
	}

	n, err := f.buf.Read(p[:want])
	f.cond.Broadcast()
	if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
		return n, err
	}
	return n, nil
}

// SetPaused holds back reads while on.
func (f *Feed) SetPaused(on bool) {
	f.mu.Lock()
	f.paused = on
	f.cond.Broadcast()
	f.mu.Unlock()
}

// Paused reports whether reads are held back.
func (f *Feed) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

// Flush drops buffered audio and starts a new epoch, used after a seek.
func (f *Feed) Flush() {
	f.mu.Lock()
	f.buf.Reset()
	f.epoch++
	f.cond.Broadcast()
	f.mu.Unlock()
}

// Buffered is the number of bytes waiting to be played.
func (f *Feed) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Length()
}

// CloseWrite marks the end of the audio. Buffered bytes can still be read.
func (f *Feed) CloseWrite() {
	f.mu.Lock()
	f.closed = true
	f.cond.Broadcast()
	f.mu.Unlock()
}

// Stop ends the feed for both sides immediately.
func (f *Feed) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.cond.Broadcast()
	f.mu.Unlock()
}
