// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/utils"
)

// Encoder writes 16-bit PCM WAV data and implements audio.SampleWriter.
// Close must be called to patch the RIFF sizes.
type Encoder struct {
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

func NewEncoder(w io.WriteSeeker, sampleRate, channels int) *Encoder {
	return &Encoder{
		enc: wav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

func (e *Encoder) WriteSamples(p []float32) error {
	if cap(e.buf.Data) < len(p) {
		e.buf.Data = make([]int, len(p))
	}
	e.buf.Data = e.buf.Data[:len(p)]

	for i, v := range p {
		e.buf.Data[i] = int(utils.Float32ToInt16(v))
	}

	if err := e.enc.Write(e.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func (e *Encoder) Close() error {
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// Export writes src to w as a 16-bit WAV at the source's own rate and
// channel count.
func Export(w io.WriteSeeker, src audio.Source) error {
	enc := NewEncoder(w, src.SampleRate(), src.Channels())

	if _, err := audio.Copy(enc, src, 8192); err != nil {
		return err
	}

	return enc.Close()
}

// ExportFile is Export into a newly created file at path.
func ExportFile(path string, src audio.Source) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := Export(f, src); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
