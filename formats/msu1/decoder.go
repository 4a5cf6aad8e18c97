// SPDX-License-Identifier: EPL-2.0

package msu1

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/utils"
)

// Extensions handled by this package.
var Extensions = []string{"pcm"}

type source struct {
	r      io.Reader
	closer io.Closer
	header Header
	buf    []byte
	// carry holds a trailing odd byte between reads.
	carry []byte
}

func (s *source) SampleRate() int { return audio.SampleRate }
func (s *source) Channels() int   { return audio.Channels }
func (s *source) BufSize() int    { return cap(s.buf) / audio.BytesPerSample }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * audio.BytesPerSample
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	lead := copy(s.buf, s.carry)
	s.carry = s.carry[:0]

	n, err := io.ReadAtLeast(s.r, s.buf[lead:], 1)
	n += lead

	whole := n - n%audio.BytesPerSample
	s.carry = append(s.carry, s.buf[whole:n]...)

	samples := whole / audio.BytesPerSample
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return samples, fmt.Errorf("msu1: %w", err)
	}
	return samples, err
}

// Header reports the parsed header of the source.
func (s *source) Header() Header { return s.header }

// Decoder reads MSU-1 PCM files as a 44.1 kHz stereo audio.Source that
// starts after the header. When r can report its size (a file or any
// io.Seeker) the header's TotalSamples is filled in.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	size, err := sizeOf(r)
	if err != nil {
		return nil, err
	}

	h, err := ReadHeader(r, size)
	if err != nil {
		return nil, err
	}

	closer, _ := r.(io.Closer)

	return &source{
		r:      r,
		closer: closer,
		header: h,
		buf:    make([]byte, 8192),
	}, nil
}

// Open decodes the MSU-1 file at path. Closing the source closes the file.
func Open(path string) (audio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msu1: %w", err)
	}

	src, err := Decoder{}.Decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return src, nil
}

// HeaderOf returns the header of a source produced by this package.
func HeaderOf(src audio.Source) (Header, bool) {
	s, ok := src.(*source)
	if !ok {
		return Header{}, false
	}
	return s.header, true
}

func sizeOf(r io.Reader) (int64, error) {
	if st, ok := r.(interface{ Stat() (os.FileInfo, error) }); ok {
		info, err := st.Stat()
		if err != nil {
			return 0, fmt.Errorf("msu1: %w", err)
		}
		return info.Size(), nil
	}

	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, nil
	}

	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("msu1: %w", err)
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("msu1: %w", err)
	}
	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("msu1: %w", err)
	}

	return end - cur, nil
}
