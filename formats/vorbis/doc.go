// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis input files through
// github.com/jfreymuth/oggvorbis. Samples come out of the decoder already
// normalized to [-1, 1].
package vorbis
