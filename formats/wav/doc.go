// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files through github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts integer PCM at 8, 16, 24 or 32 bits with any chunk layout
// (LIST/INFO chunks before the data chunk are skipped by go-audio):
//
//	f, _ := os.Open("intro.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// # Exporting
//
// Export and ExportFile write any audio.Source as 16-bit PCM, which is how
// an MSU-1 track is turned back into something a regular player accepts:
//
//	msu, _ := msu1.Open("pack-1.pcm")
//	err := wav.ExportFile("pack-1.wav", msu)
package wav
