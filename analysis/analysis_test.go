// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ik5/msukit/formats/wav"
	"github.com/ik5/msukit/internal/audiotest"
)

type failingSource struct {
	*audiotest.MockSource
	after int
}

func (f *failingSource) ReadSamples(dst []float32) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("read failed")
	}
	f.after--
	return f.MockSource.ReadSamples(dst)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   float32
		wantAvg float64
		wantPk  float64
	}{
		{"full scale", 1, 0, 0},
		{"half", 0.5, -6.0206, -6.0206},
		{"tenth", 0.1, -20, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Analyze(audiotest.NewConstantSource(44100, 2, 5000, tt.level))
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if math.Abs(got.AverageDB-tt.wantAvg) > 1e-3 || math.Abs(got.PeakDB-tt.wantPk) > 1e-3 {
				t.Errorf("Analyze() = %+v, want avg %v peak %v", got, tt.wantAvg, tt.wantPk)
			}
			if got.Samples != 10000 {
				t.Errorf("Samples = %d, want 10000", got.Samples)
			}
		})
	}
}

func TestAnalyze_Sine(t *testing.T) {
	t.Parallel()

	got, err := Analyze(audiotest.NewSineSource(44100, 1, 44100, 441))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// RMS of a full-scale sine is 1/sqrt(2).
	if math.Abs(got.AverageDB-(-3.0103)) > 0.01 {
		t.Errorf("AverageDB = %v, want about -3.0103", got.AverageDB)
	}
	if got.PeakDB > 0 || got.PeakDB < -0.01 {
		t.Errorf("PeakDB = %v, want about 0", got.PeakDB)
	}
}

func TestAnalyze_NoData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  *audiotest.MockSource
	}{
		{"silence", audiotest.NewSilentSource(44100, 2, 4000)},
		{"empty", audiotest.NewSilentSource(44100, 2, 0)},
	}

	for _, tt := range tests {
		if _, err := Analyze(tt.src); !errors.Is(err, ErrNoData) {
			t.Errorf("%s: Analyze() error = %v, want ErrNoData", tt.name, err)
		}
	}

	src := &failingSource{MockSource: audiotest.NewConstantSource(44100, 2, 4000, 0.5), after: 1}
	if _, err := Analyze(src); !errors.Is(err, ErrNoData) {
		t.Errorf("failing read: Analyze() error = %v, want ErrNoData", err)
	}
}

func TestAnalyzeFile(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 2000)
	for i := range samples {
		samples[i] = 16384
	}
	path := audiotest.WriteFile(t, "loud.pcm", audiotest.PCMBytes(0, samples))

	got, err := AnalyzeFile(path)
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if got.PeakDB != -6.0206 {
		t.Errorf("PeakDB = %v, want -6.0206", got.PeakDB)
	}

	missing := filepath.Join(t.TempDir(), "missing.pcm")
	if _, err := AnalyzeFile(missing); !errors.Is(err, ErrNoData) {
		t.Errorf("AnalyzeFile(missing) error = %v, want ErrNoData", err)
	}

	headerOnly := audiotest.WriteFile(t, "empty.pcm", audiotest.MSU1Bytes(0, 0))
	if _, err := AnalyzeFile(headerOnly); !errors.Is(err, ErrNoData) {
		t.Errorf("AnalyzeFile(header only) error = %v, want ErrNoData", err)
	}
}

func TestFirstAudibleSample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		total    int
		onset    int
		level    float32
		want     int64
	}{
		{"immediate", 2, 10000, 0, 0.5, 0},
		{"delayed stereo", 2, 10000, 4321, 0.5, 4321},
		{"delayed mono", 1, 10000, 2500, 0.5, 2500},
		{"below threshold", 2, 3000, 100, 0.004, 3000},
		{"silent", 2, 3000, 0, 0, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewDelayedSource(44100, tt.channels, tt.total, tt.onset, tt.level)
			got, err := FirstAudibleSample(src, DefaultThreshold)
			if err != nil {
				t.Fatalf("FirstAudibleSample() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FirstAudibleSample() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLastAudibleSample(t *testing.T) {
	t.Parallel()

	// Loud for frames [0, 2500), silent afterwards.
	src := audiotest.NewMockSource(44100, 2, 6000, func(sample, _ int) float32 {
		if sample < 2500 {
			return 0.25
		}
		return 0
	})

	got, err := LastAudibleSample(src, DefaultThreshold)
	if err != nil {
		t.Fatalf("LastAudibleSample() error = %v", err)
	}
	if got != 2500 {
		t.Errorf("LastAudibleSample() = %d, want 2500", got)
	}

	got, err = LastAudibleSample(audiotest.NewSilentSource(44100, 2, 100), DefaultThreshold)
	if err != nil || got != 0 {
		t.Errorf("LastAudibleSample(silence) = %d, %v, want 0, nil", got, err)
	}
}

func TestAudibleSampleFiles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.wav")
	if err := wav.ExportFile(path, audiotest.NewDelayedSource(22050, 1, 5000, 1200, 0.5)); err != nil {
		t.Fatal(err)
	}

	first, err := FirstAudibleSampleFile(path)
	if err != nil || first != 1200 {
		t.Errorf("FirstAudibleSampleFile() = %d, %v, want 1200, nil", first, err)
	}

	last, err := LastAudibleSampleFile(path)
	if err != nil || last != 5000 {
		t.Errorf("LastAudibleSampleFile() = %d, %v, want 5000, nil", last, err)
	}
}

func TestInputInfo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	ok := filepath.Join(dir, "ok.wav")
	if err := wav.ExportFile(ok, audiotest.NewSilentSource(44100, 2, 100)); err != nil {
		t.Fatal(err)
	}
	info, err := InputInfo(ok)
	if err != nil {
		t.Fatalf("InputInfo() error = %v", err)
	}
	if info.SampleRate != 44100 || info.Channels != 2 || info.Warning != "" {
		t.Errorf("InputInfo() = %+v", info)
	}

	low := filepath.Join(dir, "low.wav")
	if err := wav.ExportFile(low, audiotest.NewSilentSource(32000, 1, 100)); err != nil {
		t.Fatal(err)
	}
	info, err = InputInfo(low)
	if err != nil {
		t.Fatalf("InputInfo() error = %v", err)
	}
	if info.SampleRate != 32000 || info.Warning == "" {
		t.Errorf("InputInfo() = %+v, want a sample rate warning", info)
	}

	if _, err := InputInfo(filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("InputInfo(unsupported) error = nil, want error")
	}

}
