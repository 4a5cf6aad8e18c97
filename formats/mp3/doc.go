// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 input files through github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the returned source reports two
// channels even for mono files. The sample rate is whatever the stream was
// encoded at; wrap the source with audio.Conform before writing MSU-1 data.
//
//	f, _ := os.Open("title.mp3")
//	src, err := mp3.Decoder{}.Decode(f) // closes f on src.Close()
package mp3
