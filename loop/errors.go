// SPDX-License-Identifier: EPL-2.0

package loop

import "errors"

var (
	// ErrStopTimeout means a session did not finish tearing down in time.
	ErrStopTimeout = errors.New("loop: playback did not stop in time")

	// ErrUnknownMode is returned by SelectSink for an unrecognized mode.
	ErrUnknownMode = errors.New("loop: unknown player mode")
)
