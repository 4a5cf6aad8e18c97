// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/msukit"
	"github.com/ik5/msukit/audio"
	"github.com/ik5/msukit/formats/msu1"
	"github.com/ik5/msukit/utils"
)

// BlockSize is the number of samples read per step.
const BlockSize = 2000

// DefaultThreshold is the normalized amplitude above which a sample counts
// as audible.
const DefaultThreshold = 0.005

// Result holds loudness figures in dBFS rounded to four decimals.
type Result struct {
	AverageDB float64
	PeakDB    float64
	// Samples is the number of interleaved samples measured.
	Samples int64
}

// Analyze computes the RMS and peak level of src. Silent, empty or
// unreadable sources yield ErrNoData.
func Analyze(src audio.Source) (Result, error) {
	buf := make([]float32, BlockSize)

	var sum float64
	var peak float64
	var count int64

	for {
		n, err := src.ReadSamples(buf)
		for _, s := range buf[:n] {
			v := float64(s)
			sum += v * v
			peak = math.Max(peak, math.Abs(v))
		}
		count += int64(n)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		if n == 0 {
			break
		}
	}

	if count == 0 || sum == 0 {
		return Result{}, ErrNoData
	}

	return Result{
		AverageDB: utils.Decibels(math.Sqrt(sum / float64(count))),
		PeakDB:    utils.Decibels(peak),
		Samples:   count,
	}, nil
}

// AnalyzeFile runs Analyze over an MSU1 file. Missing files and files too
// short to hold a sample yield ErrNoData.
func AnalyzeFile(path string) (Result, error) {
	src, err := openMSU1(path)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	return Analyze(src)
}

// FirstAudibleSample returns the index of the first frame holding a sample
// whose magnitude exceeds threshold. A source that never does returns its
// total frame count.
func FirstAudibleSample(src audio.Source, threshold float64) (int64, error) {
	channels := max(src.Channels(), 1)
	buf := make([]float32, BlockSize-BlockSize%channels)

	var read int64
	for {
		n, err := src.ReadSamples(buf)
		for i, s := range buf[:n] {
			if math.Abs(float64(s)) > threshold {
				return (read + int64(i)) / int64(channels), nil
			}
		}
		read += int64(n)

		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return read / int64(channels), nil
		}
		if err != nil {
			return read / int64(channels), fmt.Errorf("analysis: %w", err)
		}
	}
}

// LastAudibleSample returns the frame index just past the last frame holding
// a sample whose magnitude exceeds threshold, or zero when none does.
func LastAudibleSample(src audio.Source, threshold float64) (int64, error) {
	channels := max(src.Channels(), 1)
	buf := make([]float32, BlockSize-BlockSize%channels)

	var read, last int64
	for {
		n, err := src.ReadSamples(buf)
		for i, s := range buf[:n] {
			if math.Abs(float64(s)) > threshold {
				last = (read+int64(i))/int64(channels) + 1
			}
		}
		read += int64(n)

		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return last, nil
		}
		if err != nil {
			return last, fmt.Errorf("analysis: %w", err)
		}
	}
}

// FirstAudibleSampleFile opens any supported audio file and runs
// FirstAudibleSample with DefaultThreshold.
func FirstAudibleSampleFile(path string) (int64, error) {
	src, err := msukit.OpenAudio(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	return FirstAudibleSample(src, DefaultThreshold)
}

// LastAudibleSampleFile opens any supported audio file and runs
// LastAudibleSample with DefaultThreshold.
func LastAudibleSampleFile(path string) (int64, error) {
	src, err := msukit.OpenAudio(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	return LastAudibleSample(src, DefaultThreshold)
}

func openMSU1(path string) (audio.Source, error) {
	src, err := msu1.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	return src, nil
}
