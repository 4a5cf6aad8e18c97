// SPDX-License-Identifier: EPL-2.0

// Package msu1 implements the MSU-1 PCM container.
//
// # Layout
//
//	offset 0  "MSU1"                   4 bytes
//	offset 4  loop point (samples)     int32, little endian
//	offset 8  PCM                      interleaved stereo, int16 little endian, 44.1 kHz
//
// A file of length L holds (L-8)/4 samples (stereo frames). The byte offset
// of sample s is 8+4*s; SampleOffset and SampleIndex are the only places
// that formula lives.
//
// # Validation
//
// Validate is the post-build check used by the generation pipeline. It fails
// with a *FormatError whose Kind is ErrNotCreated, ErrBadHeader or
// ErrBadLoopPoint. Playback is more forgiving: it reads the Header and, when
// LoopValid reports false, plays the file linearly instead of failing.
//
// # Reading and Writing
//
// Decoder and Open expose the samples as an audio.Source. Writer, WriteFile,
// WriteEmpty and Encode produce files; ApplyGain and ApplyVolume rescale an
// existing file in place.
package msu1
