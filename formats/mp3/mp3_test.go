// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type fakeMP3 struct {
	r *bytes.Reader
}

func (f *fakeMP3) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *fakeMP3) SampleRate() int            { return 48000 }

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x00, 0x40, 0x00, 0xc0, 0x00, 0x20, 0x00, 0x00}
	s := &source{dec: &fakeMP3{r: bytes.NewReader(pcm)}, sampleRate: 48000}

	if s.Channels() != 2 || s.SampleRate() != 48000 {
		t.Fatalf("format = %d Hz %d ch", s.SampleRate(), s.Channels())
	}

	buf := make([]float32, 8)
	n, err := s.ReadSamples(buf)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v, want 4, nil", n, err)
	}

	want := []float32{0.5, -0.5, 0.25, 0}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("sample %d = %v, want %v", i, buf[i], w)
		}
	}

	if _, err := s.ReadSamples(buf); !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() error = %v, want EOF", err)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}
