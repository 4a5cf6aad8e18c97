// SPDX-License-Identifier: EPL-2.0

// Package song models what msupcm++ is asked to build.
//
// A Spec is an immutable snapshot of one song: a leaf with a single source
// file, or a composite of sub-tracks (played one after another) or
// sub-channels (mixed together). Inputs, Mixed and Validate are pure
// functions of that snapshot, so the build cache never looks at editable
// state. Descriptor is the JSON job file handed to msupcm++; LoadTracks
// reads the same format back from a pack's tracks file.
package song
