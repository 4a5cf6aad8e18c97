// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/msukit/utils"
)

const lowpassAlpha = 0.5

// Resampler streams src at another sample rate using Catmull-Rom
// interpolation. Channel count is preserved. When downsampling, input frames
// go through a one-pole low-pass first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// hist holds the frames at t-1, t, t+1 and t+2 around the read position.
	hist [4][]float32
	// real counts how many of hist[1:] came from the source rather than
	// from repeating the last frame at the end of the stream.
	real   int
	primed bool
	frac   float64

	in     []float32
	inPos  int
	inLen  int
	srcEOF bool

	lowpass   bool
	state     []float32
	stateInit bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, channels*1024),
		state:    make([]float32, channels),
	}
	r.lowpass = r.step > 1

	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// pull copies the next source frame into dst and reports false once the
// source is drained.
func (r *Resampler) pull(dst []float32) (bool, error) {
	for r.inPos >= r.inLen {
		if r.srcEOF {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		n -= n % r.channels
		r.inPos, r.inLen = 0, n

		if errors.Is(err, io.EOF) {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		if !r.stateInit {
			copy(r.state, dst)
			r.stateInit = true
		}
		for c := range dst {
			dst[c] = lowpassAlpha*dst[c] + (1-lowpassAlpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.pull(r.hist[1])
	if err != nil || !ok {
		return err
	}
	copy(r.hist[0], r.hist[1])
	r.real = 1

	for i := 2; i < len(r.hist); i++ {
		ok, err := r.pull(r.hist[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.hist[i], r.hist[i-1])
			continue
		}
		r.real++
	}

	return nil
}

func (r *Resampler) advance() error {
	oldest := r.hist[0]
	r.hist[0], r.hist[1], r.hist[2] = r.hist[1], r.hist[2], r.hist[3]
	r.hist[3] = oldest

	ok, err := r.pull(r.hist[3])
	if err != nil {
		return err
	}

	if !ok {
		copy(r.hist[3], r.hist[2])
		if r.real > 0 {
			r.real--
		}
	}

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.step == 1 {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if r.real == 0 {
			break
		}

		t := float32(r.frac)
		out := dst[written*r.channels:]
		for c := range r.channels {
			out[c] = utils.CatmullRom(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], t)
		}

		written++
		r.frac += r.step
	}

	if r.real == 0 {
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
