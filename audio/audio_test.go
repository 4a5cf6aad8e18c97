// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/ik5/msukit/internal/audiotest"
)

type nopDecoder struct{ name string }

func (nopDecoder) Decode(io.Reader) (Source, error) { return nil, nil }

type collector struct{ samples []float32 }

func (c *collector) WriteSamples(p []float32) error {
	c.samples = append(c.samples, p...)
	return nil
}

func drain(t *testing.T, src Source, bufSize int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, bufSize)
	for range 1 << 20 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	wav := nopDecoder{"wav"}
	ogg := nopDecoder{"ogg"}
	reg.Register(wav, "wav")
	reg.Register(ogg, ".ogg", "OGA")

	if d, ok := reg.Get("WAV"); !ok || d != wav {
		t.Errorf("Get(WAV) = %v, %v, want wav decoder", d, ok)
	}

	d, err := reg.ForPath("/music/Theme.oga")
	if err != nil || d != ogg {
		t.Errorf("ForPath(oga) = %v, %v, want ogg decoder", d, err)
	}

	if _, err := reg.ForPath("cover.png"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ForPath(png) error = %v, want ErrUnsupportedFormat", err)
	}

	want := []string{"oga", "ogg", "wav"}
	if got := reg.Extensions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}
}

func TestResampler_FrameCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		srcRate  int
		dstRate  int
		channels int
		frames   int
		want     int
	}{
		{"48k to 44.1k stereo", 48000, 44100, 2, 48000, 44100},
		{"22.05k to 44.1k mono", 22050, 44100, 1, 22050, 44100},
		{"44.1k to 16k", 44100, 16000, 1, 44100, 16000},
		{"same rate", 44100, 44100, 2, 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.srcRate, tt.channels, tt.frames, 440)
			r := NewResampler(src, tt.dstRate)

			if r.SampleRate() != tt.dstRate {
				t.Errorf("SampleRate() = %d, want %d", r.SampleRate(), tt.dstRate)
			}

			got := len(drain(t, r, 4096-4096%tt.channels)) / tt.channels
			if diff := got - tt.want; diff < -1 || diff > 1 {
				t.Errorf("frames = %d, want %d (+-1)", got, tt.want)
			}
		})
	}
}

func TestResampler_PreservesConstant(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(22050, 2, 500, 0.25)
	out := drain(t, NewResampler(src, 44100), 256)

	for i, v := range out {
		if math.Abs(float64(v-0.25)) > 1e-5 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestResampler_InvalidDst(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 2, 10), 16000)
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_Empty(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 1, 0), 16000)
	n, err := r.ReadSamples(make([]float32, 16))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 0, EOF", n, err)
	}
}

func TestChannelMapper(t *testing.T) {
	t.Parallel()

	t.Run("mono to stereo duplicates", func(t *testing.T) {
		t.Parallel()

		src := audiotest.NewMockSource(44100, 1, 4, func(s, _ int) float32 { return float32(s) / 10 })
		got := drain(t, NewChannelMapper(src, 2), 8)
		want := []float32{0, 0, 0.1, 0.1, 0.2, 0.2, 0.3, 0.3}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("samples = %v, want %v", got, want)
		}
	})

	t.Run("stereo to mono averages", func(t *testing.T) {
		t.Parallel()

		src := audiotest.NewMockSource(44100, 2, 2, func(_, ch int) float32 {
			if ch == 0 {
				return 1
			}
			return 0
		})
		got := drain(t, NewChannelMapper(src, 1), 4)
		want := []float32{0.5, 0.5}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("samples = %v, want %v", got, want)
		}
	})

	t.Run("quad to stereo folds sides", func(t *testing.T) {
		t.Parallel()

		src := audiotest.NewMockSource(44100, 4, 1, func(_, ch int) float32 { return float32(ch) })
		got := drain(t, NewChannelMapper(src, 2), 2)
		want := []float32{1, 2}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("samples = %v, want %v", got, want)
		}
	})

	t.Run("closes source", func(t *testing.T) {
		t.Parallel()

		src := audiotest.NewSilentSource(44100, 1, 1)
		if err := NewChannelMapper(src, 2).Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !src.Closed() {
			t.Error("source was not closed")
		}
	})
}

func TestConform(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(22050, 1, 2205, 220)
	c := Conform(src)
	if c.SampleRate() != SampleRate || c.Channels() != Channels {
		t.Fatalf("Conform() = %d Hz %d ch, want %d Hz %d ch", c.SampleRate(), c.Channels(), SampleRate, Channels)
	}

	already := audiotest.NewSilentSource(SampleRate, Channels, 10)
	if Conform(already) != Source(already) {
		t.Error("Conform() wrapped a source that already matches")
	}
}

func TestCopy(t *testing.T) {
	t.Parallel()

	var c collector
	n, err := Copy(&c, audiotest.NewConstantSource(44100, 2, 1000, 0.5), 333)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if n != 2000 || len(c.samples) != 2000 {
		t.Errorf("Copy() = %d (collected %d), want 2000", n, len(c.samples))
	}
}
