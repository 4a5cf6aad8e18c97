// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type fakeFrames struct {
	frames [][]byte
	err    error
}

func (f *fakeFrames) Next() ([]byte, error) {
	if len(f.frames) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	fr := f.frames[0]
	f.frames = f.frames[1:]
	return fr, nil
}

func TestSource_BitDepths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		depth int
		frame []byte
		want  []float32
	}{
		{"8 bit", 8, []byte{0x40, 0xc0}, []float32{0.5, -0.5}},
		{"16 bit", 16, []byte{0x00, 0x40, 0x00, 0xc0}, []float32{0.5, -0.5}},
		{"24 bit", 24, []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xc0}, []float32{0.5, -0.5}},
		{"32 bit", 32, []byte{0, 0, 0, 0x40, 0, 0, 0, 0xc0}, []float32{0.5, -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &source{
				dec:        &fakeFrames{frames: [][]byte{tt.frame}},
				sampleRate: 44100,
				channels:   2,
				bitDepth:   tt.depth,
			}

			buf := make([]float32, 4)
			n, err := s.ReadSamples(buf)
			if !errors.Is(err, io.EOF) {
				t.Fatalf("ReadSamples() error = %v, want EOF", err)
			}
			if n != len(tt.want) {
				t.Fatalf("n = %d, want %d", n, len(tt.want))
			}
			for i, w := range tt.want {
				if buf[i] != w {
					t.Errorf("sample %d = %v, want %v", i, buf[i], w)
				}
			}
		})
	}
}

func TestSource_SpansFrames(t *testing.T) {
	t.Parallel()

	s := &source{
		dec: &fakeFrames{frames: [][]byte{
			{0x00, 0x40, 0x00, 0x40},
			{0x00, 0x20, 0x00, 0x20},
		}},
		sampleRate: 44100,
		channels:   2,
		bitDepth:   16,
	}

	buf := make([]float32, 3)
	n, err := s.ReadSamples(buf)
	if n != 3 || err != nil {
		t.Fatalf("ReadSamples() = %d, %v, want 3, nil", n, err)
	}
	if buf[2] != 0.25 {
		t.Errorf("buf[2] = %v, want 0.25", buf[2])
	}

	n, err = s.ReadSamples(buf)
	if n != 1 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 1, EOF", n, err)
	}
}

func TestSource_DecodeError(t *testing.T) {
	t.Parallel()

	boom := errors.New("crc mismatch")
	s := &source{dec: &fakeFrames{err: boom}, channels: 2, bitDepth: 16}

	if _, err := s.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("RIFF not flac"))); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}
