// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/msukit/internal/audiotest"
)

type fakePCM struct {
	data []int
	pos  int
	err  error
}

func (f *fakePCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data, f.data[f.pos:])
	f.pos += n
	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	s := &source{
		dec:      &fakePCM{data: []int{16384, -16384, 0, 8192, 32767}},
		format:   &goaudio.Format{NumChannels: 1, SampleRate: 22050},
		bitDepth: 16,
	}

	buf := make([]float32, 4)
	n, err := s.ReadSamples(buf)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v, want 4, nil", n, err)
	}
	if buf[0] != 0.5 || buf[1] != -0.5 || buf[3] != 0.25 {
		t.Errorf("samples = %v", buf)
	}

	n, err = s.ReadSamples(buf)
	if n != 1 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v, want 1, EOF", n, err)
	}

	n, err = s.ReadSamples(buf)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, EOF", n, err)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := &source{
		dec:      &fakePCM{err: boom},
		format:   &goaudio.Format{NumChannels: 2, SampleRate: 44100},
		bitDepth: 16,
	}

	if _, err := s.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestDecode_NotWav(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("MSU1\x00\x00\x00\x00garbage")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestExportDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	src := audiotest.NewSineSource(44100, 2, 4410, 440)

	if err := ExportFile(path, src); err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	dec, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != 44100 || dec.Channels() != 2 {
		t.Fatalf("format = %d Hz %d ch, want 44100 Hz 2 ch", dec.SampleRate(), dec.Channels())
	}

	ref := audiotest.NewSineSource(44100, 2, 4410, 440)
	got := make([]float32, 1024)
	want := make([]float32, 1024)
	total := 0

	for {
		n, err := dec.ReadSamples(got)
		m, _ := ref.ReadSamples(want[:n])
		if m != n {
			t.Fatalf("decoded %d samples, reference has %d", n, m)
		}
		for i := range n {
			if math.Abs(float64(got[i]-want[i])) > 1.0/16384 {
				t.Fatalf("sample %d = %v, want %v", total+i, got[i], want[i])
			}
		}
		total += n

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if total != 4410*2 {
		t.Errorf("decoded %d samples, want %d", total, 4410*2)
	}
}
