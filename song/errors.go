// SPDX-License-Identifier: EPL-2.0

package song

import "errors"

var (
	// ErrMixedComposition marks a node holding both sub-tracks and sub-channels.
	ErrMixedComposition = errors.New("sub-tracks and sub-channels on the same node")

	// ErrNoTracks is returned when a descriptor file lists no tracks.
	ErrNoTracks = errors.New("no tracks in descriptor")
)

// MissingInputError reports a leaf whose source file does not exist. Its
// message is the one shown to users as is.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return e.Path + " not found"
}
