// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/msukit/audio"
)

// Extensions handled by this package.
var Extensions = []string{"ogg", "oga"}

// oggReader is the part of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec    oggReader
	closer io.Closer
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples reads whole frames only; a dst shorter than one frame yields 0.
func (s *source) ReadSamples(dst []float32) (int, error) {
	channels := s.dec.Channels()
	usable := len(dst) - len(dst)%channels
	if usable == 0 {
		return 0, nil
	}

	// oggvorbis fills interleaved samples and returns the sample count.
	n, err := s.dec.Read(dst[:usable])
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	closer, _ := r.(io.Closer)

	return &source{dec: dec, closer: closer}, nil
}
