// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/utils"
)

// Extensions handled by this package.
var Extensions = []string{"mp3"}

// mp3Reader is the part of gomp3.Decoder the source needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	closer     io.Closer
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }

// Channels is always 2, go-mp3 upmixes mono streams.
func (s *source) Channels() int { return 2 }
func (s *source) BufSize() int  { return cap(s.buf) / 2 }

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
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf)
	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	if samples == 0 && err == nil {
		return 0, nil
	}
	return samples, err
}

type Decoder struct{}

// Decode wraps r in a go-mp3 decoder. If r is an io.Closer it is closed
// together with the returned source.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	closer, _ := r.(io.Closer)

	return &source{
		dec:        dec,
		closer:     closer,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
