// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// SampleWriter consumes interleaved float32 samples.
type SampleWriter interface {
	WriteSamples(p []float32) error
}

// Conform adapts src to the MSU-1 layout (44.1 kHz stereo). Sources that
// already match are returned untouched.
func Conform(src Source) Source {
	if src.SampleRate() != SampleRate {
		src = NewResampler(src, SampleRate)
	}
	if src.Channels() != Channels {
		src = NewChannelMapper(src, Channels)
	}
	return src
}

// Copy streams src into w until the source is drained and returns the
// number of samples (not frames) copied.
func Copy(w SampleWriter, src Source, bufSize int) (int64, error) {
	channels := src.Channels()
	if channels <= 0 {
		return 0, ErrInvalidChannels
	}
	if bufSize < channels {
		bufSize = channels
	}
	buf := make([]float32, bufSize-bufSize%channels)

	var total int64
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if werr := w.WriteSamples(buf[:n]); werr != nil {
				return total, fmt.Errorf("writing samples: %w", werr)
			}
			total += int64(n)
		}

		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("%w", err)
		}
	}
}
