// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tphakala/flac"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/utils"
)

// Extensions handled by this package.
var Extensions = []string{"flac"}

var ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")

// frameReader is the part of flac.Decoder the source needs. Next returns
// one decoded block of interleaved little-endian samples.
type frameReader interface {
	Next() ([]byte, error)
}

type source struct {
	dec        frameReader
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int
	pending    []float32
	done       bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
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

func (s *source) fill() error {
	frame, err := s.dec.Next()
	if errors.Is(err, io.EOF) {
		s.done = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("flac: %w", err)
	}

	width := s.bitDepth / 8
	for i := 0; i+width <= len(frame); i += width {
		var v int
		switch s.bitDepth {
		case 8:
			v = int(int8(frame[i]))
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(frame[i:])))
		case 24:
			raw := int32(frame[i]) | int32(frame[i+1])<<8 | int32(frame[i+2])<<16
			if raw&0x800000 != 0 {
				raw |= -1 << 24
			}
			v = int(raw)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(frame[i:])))
		}
		s.pending = append(s.pending, utils.IntToFloat32(v, s.bitDepth))
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	for len(s.pending) < len(dst) && !s.done {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(dst, s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[n:])]

	if s.done && len(s.pending) == 0 {
		return n, io.EOF
	}
	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := flac.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}

	switch dec.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}

	closer, _ := r.(io.Closer)

	return &source{
		dec:        dec,
		closer:     closer,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NChannels),
		bitDepth:   int(dec.BitsPerSample),
	}, nil
}
