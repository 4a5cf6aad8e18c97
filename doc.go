// SPDX-License-Identifier: EPL-2.0

// Package msukit builds and plays MSU-1 audio packs.
//
// The root package ties the decoders together. OpenAudio picks a decoder by file
// extension and EncodeFile turns any supported input into an MSU-1 track:
//
//	frames, err := msukit.EncodeFile("theme.flac", "game-1.pcm", 44100)
//
// # Supported Formats
//
//   - WAV via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//   - FLAC via formats/flac
//   - MSU-1 PCM via formats/msu1
//
// # Packs
//
// Whole packs are generated by handing each track's job descriptor to
// msupcm++ (package convert), fanned out by package batch and skipped when
// package cache says the output is current. Finished tracks can be checked
// with msu1.Validate, measured with package analysis and auditioned through
// package loop.
package msukit
