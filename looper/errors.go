// SPDX-License-Identifier: EPL-2.0

package looper

import "errors"

var (
	// ErrNotInstalled means the detector could not be run at all.
	ErrNotInstalled = errors.New("could not run PyMusicLooper, make sure it is installed and on PATH")

	// ErrTooOld means the installed detector predates MinVersion.
	ErrTooOld = errors.New("minimum required PyMusicLooper version is " + MinVersion.String())

	// ErrInvalidLoop means the detector answered without a usable loop.
	ErrInvalidLoop = errors.New("Invalid loop found")

	// ErrBadCache means a cached result file could not be parsed.
	ErrBadCache = errors.New("could not parse cached PyMusicLooper results")
)

// ToolError carries the detector's own error message, cleaned of its
// terminal decoration.
type ToolError struct {
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}
