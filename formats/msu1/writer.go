// SPDX-License-Identifier: EPL-2.0

package msu1

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/utils"
)

// EmptyFrames is the length of the silent stub written by WriteEmpty: a
// quarter second, which keeps the file under the size the batch scheduler
// treats as an intentional stub.
const EmptyFrames = audio.SampleRate / 4

// Writer streams interleaved 16-bit stereo samples into an MSU-1 container.
// It implements audio.SampleWriter; the data must already be 44.1 kHz stereo.
type Writer struct {
	w      io.Writer
	buf    []byte
	frames int64
}

// NewWriter writes the header for loop and returns a Writer for the samples.
func NewWriter(w io.Writer, loop int32) (*Writer, error) {
	if _, err := w.Write(EncodeHeader(loop)); err != nil {
		return nil, fmt.Errorf("msu1: writing header: %w", err)
	}

	return &Writer{w: w, buf: make([]byte, 8192)}, nil
}

// WriteFrames writes interleaved left/right int16 samples.
func (w *Writer) WriteFrames(samples []int16) error {
	if len(samples)%audio.Channels != 0 {
		return ErrOddSamples
	}

	need := len(samples) * audio.BytesPerSample
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	b := w.buf[:need]

	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}

	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("msu1: %w", err)
	}
	w.frames += int64(len(samples) / audio.Channels)

	return nil
}

// WriteSamples converts interleaved float32 stereo samples and writes them.
func (w *Writer) WriteSamples(p []float32) error {
	if len(p)%audio.Channels != 0 {
		return ErrOddSamples
	}

	need := len(p) * audio.BytesPerSample
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	b := w.buf[:need]

	for i, v := range p {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(utils.Float32ToInt16(v)))
	}

	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("msu1: %w", err)
	}
	w.frames += int64(len(p) / audio.Channels)

	return nil
}

// Frames is the number of stereo frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// WriteFile creates path holding loop and the given interleaved samples.
func WriteFile(path string, loop int32, samples []int16) error {
	return create(path, loop, func(w *Writer) error {
		return w.WriteFrames(samples)
	})
}

// WriteEmpty replaces path with a short silent track looping at 0.
func WriteEmpty(path string) error {
	return create(path, 0, func(w *Writer) error {
		return w.WriteFrames(make([]int16, EmptyFrames*audio.Channels))
	})
}

// Encode writes src, conformed to 44.1 kHz stereo, into dst with the
// given loop point.
func Encode(dst io.Writer, src audio.Source, loop int32) (int64, error) {
	w, err := NewWriter(dst, loop)
	if err != nil {
		return 0, err
	}

	if _, err := audio.Copy(w, audio.Conform(src), 8192); err != nil {
		return w.Frames(), err
	}

	return w.Frames(), nil
}

func create(path string, loop int32, fill func(*Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("msu1: %w", err)
	}

	bw := bufio.NewWriter(f)
	w, err := NewWriter(bw, loop)
	if err == nil {
		err = fill(w)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("msu1: %w", err)
	}
	return nil
}
