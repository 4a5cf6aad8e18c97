// SPDX-License-Identifier: EPL-2.0

package tool

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the configured executable does not exist.
var ErrNotFound = errors.New("executable not found")

// ProcessError is an error with the tool's stderr output
type ProcessError struct {
	Err    error
	Stderr string
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v\nStderr: %s", e.Err, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
