// SPDX-License-Identifier: EPL-2.0

package msukit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/formats/aiff"
	"github.com/ik5/msukit/formats/flac"
	"github.com/ik5/msukit/formats/mp3"
	"github.com/ik5/msukit/formats/msu1"
	"github.com/ik5/msukit/formats/vorbis"
	"github.com/ik5/msukit/formats/wav"
	"github.com/ik5/msukit/utils"
)

// NewRegistry returns a registry with every decoder shipped in this module.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(wav.Decoder{}, wav.Extensions...)
	reg.Register(mp3.Decoder{}, mp3.Extensions...)
	reg.Register(vorbis.Decoder{}, vorbis.Extensions...)
	reg.Register(aiff.Decoder{}, aiff.Extensions...)
	reg.Register(flac.Decoder{}, flac.Extensions...)
	reg.Register(msu1.Decoder{}, msu1.Extensions...)

	return reg
}

var defaultRegistry = NewRegistry()

// OpenAudio decodes the file at path, picking the decoder by extension. Closing
// the returned source closes the file.
func OpenAudio(path string) (audio.Source, error) {
	return OpenAudioWith(defaultRegistry, path)
}

// OpenAudioWith is OpenAudio with an explicit registry.
func OpenAudioWith(reg *audio.Registry, path string) (audio.Source, error) {
	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, nil
}

// EncodeFile decodes in and writes it to out as an MSU-1 track looping at
// loop. It returns the number of samples written.
func EncodeFile(in, out string, loop int32) (int64, error) {
	src, err := OpenAudio(in)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	frames, err := EncodeMSU1(f, src, loop)
	if err != nil {
		f.Close()
		return frames, err
	}

	if err := f.Close(); err != nil {
		return frames, fmt.Errorf("%w", err)
	}

	return frames, nil
}

// EncodeMSU1 writes src to w as an MSU-1 stream looping at loop, resampling
// and remapping channels as needed. It returns the number of samples written.
func EncodeMSU1(w io.Writer, src audio.Source, loop int32) (int64, error) {
	return msu1.Encode(w, src, loop)
}

// ToPCM16 conforms src to 44.1 kHz stereo and collects it as interleaved
// 16-bit samples.
func ToPCM16(src audio.Source, bufferSize int) ([]int16, error) {
	conformed := audio.Conform(src)
	channels := conformed.Channels()
	if bufferSize < channels {
		bufferSize = channels
	}

	pcm16 := make([]int16, 0, audio.SampleRate*audio.Channels)
	buf := make([]float32, bufferSize-bufferSize%channels)

	for {
		n, err := conformed.ReadSamples(buf)
		for i := range n {
			pcm16 = append(pcm16, utils.Float32ToInt16(buf[i]))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pcm16, fmt.Errorf("%w", err)
		}
	}

	return pcm16, nil
}
