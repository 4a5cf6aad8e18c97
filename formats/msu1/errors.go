// SPDX-License-Identifier: EPL-2.0

package msu1

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCreated means the file does not exist.
	ErrNotCreated = errors.New("file was not created")

	// ErrBadHeader means the file is shorter than a header or lacks the MSU1 magic.
	ErrBadHeader = errors.New("bad header")

	// ErrBadLoopPoint means the loop point is negative or not below the sample count.
	ErrBadLoopPoint = errors.New("bad loop point")

	// ErrOddSamples is returned when interleaved stereo data has a dangling sample.
	ErrOddSamples = errors.New("stereo data must hold an even number of samples")
)

// FormatError reports why a file failed validation. Kind is one of
// ErrNotCreated, ErrBadHeader or ErrBadLoopPoint.
type FormatError struct {
	Kind error
	Path string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("msu1: %s: %v", e.Path, e.Kind)
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}
