// SPDX-License-Identifier: EPL-2.0

package msu1

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/msukit/audio"
)

const (
	// Magic opens every MSU-1 PCM file.
	Magic = "MSU1"
	// HeaderSize is the magic plus the 32-bit loop point.
	HeaderSize = 8
	// FrameSize is one stereo 16-bit sample.
	FrameSize = audio.FrameSize
)

// Header is the decoded 8-byte preamble plus the sample count implied by
// the file length.
type Header struct {
	LoopPoint    int32
	TotalSamples int64
}

// LoopValid reports whether the loop point lies inside the sample data.
func (h Header) LoopValid() bool {
	return h.LoopPoint >= 0 && int64(h.LoopPoint) < h.TotalSamples
}

// LoopOffset is the byte offset of the loop point.
func (h Header) LoopOffset() int64 {
	return SampleOffset(int64(h.LoopPoint))
}

// Size is the file length the header describes.
func (h Header) Size() int64 {
	return SampleOffset(h.TotalSamples)
}

// SampleOffset converts a sample index to its byte offset in the file.
// Every sample/byte conversion in this module goes through here or
// SampleIndex.
func SampleOffset(sample int64) int64 {
	return HeaderSize + FrameSize*sample
}

// SampleIndex is the inverse of SampleOffset, rounding down to a whole frame.
// Offsets inside the header map to sample 0.
func SampleIndex(offset int64) int64 {
	if offset <= HeaderSize {
		return 0
	}
	return (offset - HeaderSize) / FrameSize
}

// TotalSamples is the number of whole frames in a file of size bytes.
func TotalSamples(size int64) int64 {
	if size < HeaderSize {
		return 0
	}
	return (size - HeaderSize) / FrameSize
}

// ParseHeader decodes the first HeaderSize bytes of b for a file of the
// given total size.
func ParseHeader(b []byte, size int64) (Header, error) {
	if len(b) < HeaderSize || string(b[:4]) != Magic {
		return Header{}, ErrBadHeader
	}

	return Header{
		LoopPoint:    int32(binary.LittleEndian.Uint32(b[4:HeaderSize])),
		TotalSamples: TotalSamples(size),
	}, nil
}

// ReadHeader reads the header from the start of r.
func ReadHeader(r io.Reader, size int64) (Header, error) {
	b := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrBadHeader
		}
		return Header{}, fmt.Errorf("msu1: reading header: %w", err)
	}

	return ParseHeader(b, size)
}

// ReadFileHeader opens path and decodes its header.
func ReadFileHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("msu1: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Header{}, fmt.Errorf("msu1: %w", err)
	}

	return ReadHeader(f, st.Size())
}

// EncodeHeader renders the 8-byte header for a loop point.
func EncodeHeader(loop int32) []byte {
	b := make([]byte, HeaderSize)
	copy(b, Magic)
	binary.LittleEndian.PutUint32(b[4:], uint32(loop))
	return b
}

// Validate checks a freshly built file: it must exist, start with the MSU1
// magic and carry a loop point in [0, total samples). Failures are returned
// as *FormatError.
func Validate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FormatError{Kind: ErrNotCreated, Path: path}
		}
		return fmt.Errorf("msu1: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("msu1: %w", err)
	}

	h, err := ReadHeader(f, st.Size())
	if errors.Is(err, ErrBadHeader) {
		return &FormatError{Kind: ErrBadHeader, Path: path}
	}
	if err != nil {
		return err
	}

	if !h.LoopValid() {
		return &FormatError{Kind: ErrBadLoopPoint, Path: path}
	}

	return nil
}
