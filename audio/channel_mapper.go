// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper presents src with a different channel count.
//
// Output channel c averages every input channel ic where ic%out == c, so a
// stereo source folds into mono and a 5.1 source folds into stereo by
// alternating sides. Output channels with no matching input repeat input
// channel c%in, which duplicates mono into every output.
type ChannelMapper struct {
	src Source
	out int
	tmp []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src: src,
		out: channels,
		tmp: make([]float32, 4096),
	}
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.out }
func (m *ChannelMapper) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.out
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	for f := range got {
		frame := m.tmp[f*in : f*in+in]
		for c := range m.out {
			if c >= in {
				dst[f*m.out+c] = frame[c%in]
				continue
			}

			var sum float32
			count := 0
			for ic := c; ic < in; ic += m.out {
				sum += frame[ic]
				count++
			}
			dst[f*m.out+c] = sum / float32(count)
		}
	}

	return got * m.out, err
}
