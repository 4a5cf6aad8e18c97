// SPDX-License-Identifier: EPL-2.0

package loop

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/formats/msu1"
)

// Stream reads the sample data of an MSU1 file as raw 16-bit stereo PCM,
// jumping back to the loop point whenever the data runs out. A loop point
// outside the sample data disables looping.
//
// Stream is not safe for concurrent use.
type Stream struct {
	r      io.ReadSeeker
	closer io.Closer
	size   int64
	end    int64
	header msu1.Header

	looping bool
	pos     int64
	err     error
}

// NewStream reads the header of r, a file of size bytes, and positions the
// stream at the first sample.
func NewStream(r io.ReadSeeker, size int64) (*Stream, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}

	h, err := msu1.ReadHeader(r, size)
	if err != nil {
		return nil, err
	}

	return &Stream{
		r:       r,
		size:    size,
		end:     h.Size(),
		header:  h,
		looping: h.LoopValid(),
		pos:     msu1.HeaderSize,
	}, nil
}

// OpenStream opens the MSU1 file at path. Close releases the file.
func OpenStream(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loop: %w", err)
	}

	s, err := NewStream(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f

	return s, nil
}

// Read fills p with PCM bytes. Reaching the end of the data while looping
// continues from the loop point within the same call. A read error ends
// the call early with the bytes gathered so far and is kept for Err.
// io.EOF is returned only when nothing at all could be read.
func (s *Stream) Read(p []byte) (int, error) {
	total := 0

	for total < len(p) {
		if s.pos >= s.end {
			if !s.looping {
				break
			}
			if err := s.seek(s.header.LoopOffset()); err != nil {
				s.err = err
				break
			}
			continue
		}

		want := int(min(int64(len(p)-total), s.end-s.pos))
		n, err := s.r.Read(p[total : total+want])
		total += n
		s.pos += int64(n)

		if err != nil && !errors.Is(err, io.EOF) {
			s.err = err
			break
		}
		if n == 0 {
			// The file is shorter than it was when opened.
			s.end = s.pos
			if !s.looping || s.end <= s.header.LoopOffset() {
				break
			}
		}
	}

	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

func (s *Stream) seek(off int64) error {
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("loop: %w", err)
	}
	s.pos = off
	return nil
}

// SeekFraction moves to 8 + round(f * (size - 8)), clamped to the file and
// rounded down to a whole frame. It returns the new byte offset.
func (s *Stream) SeekFraction(f float64) (int64, error) {
	off := msu1.HeaderSize + int64(math.Round(f*float64(s.size-msu1.HeaderSize)))
	off = max(msu1.HeaderSize, min(off, s.size))
	off = msu1.SampleOffset(msu1.SampleIndex(off))

	return off, s.seek(off)
}

// SeekPreview moves to lookback seconds before the end of the track so the
// loop seam is heard shortly after playback starts.
func (s *Stream) SeekPreview(lookback float64, sampleRate int) (int64, error) {
	start := s.header.TotalSamples - int64(lookback*float64(sampleRate))
	off := max(msu1.HeaderSize, msu1.SampleOffset(start))

	return off, s.seek(off)
}

// SeekSample moves to the given sample index, clamped to the data.
func (s *Stream) SeekSample(sample int64) error {
	sample = max(0, min(sample, s.header.TotalSamples))
	return s.seek(msu1.SampleOffset(sample))
}

// SeekSeconds moves to the given time in the track.
func (s *Stream) SeekSeconds(seconds float64) error {
	return s.SeekSample(int64(seconds * audio.SampleRate))
}

// Header is the parsed file header.
func (s *Stream) Header() msu1.Header { return s.header }

// Size is the file length in bytes.
func (s *Stream) Size() int64 { return s.size }

// Offset is the current byte offset in the file.
func (s *Stream) Offset() int64 { return s.pos }

// Sample is the index of the next sample to be read.
func (s *Stream) Sample() int64 { return msu1.SampleIndex(s.pos) }

// Looping reports whether the stream wraps at its end.
func (s *Stream) Looping() bool { return s.looping }

// SetLooping turns wrapping on or off. It cannot be turned on for a loop
// point outside the data.
func (s *Stream) SetLooping(on bool) {
	s.looping = on && s.header.LoopValid()
}

// LengthSeconds is the duration of the sample data.
func (s *Stream) LengthSeconds() float64 {
	return float64(s.header.TotalSamples) / audio.SampleRate
}

// PositionSeconds is the time of the next sample to be read.
func (s *Stream) PositionSeconds() float64 {
	return float64(s.Sample()) / audio.SampleRate
}

// Err returns the read error that truncated playback, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the file opened by OpenStream.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
