// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives every other package builds on.
//
// # Source Interface
//
// A Source produces interleaved float32 samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Format decoders under formats/ return a Source, and processors such as
// Resampler and ChannelMapper wrap one, so they can be chained freely.
//
// # MSU-1 Layout
//
// MSU-1 audio is always 44.1 kHz, stereo, signed 16-bit little endian. The
// SampleRate, Channels and FrameSize constants describe that layout, and
// Conform wraps any Source so that it matches it:
//
//	src, _ := mp3.Decoder{}.Decode(file)
//	msu := audio.Conform(src) // 44100 Hz, 2 channels
//
// # Decoder Registry
//
// Registry maps file extensions to decoders:
//
//	reg := audio.NewRegistry()
//	reg.Register(wav.Decoder{}, "wav")
//	reg.Register(vorbis.Decoder{}, "ogg", "oga")
//	dec, err := reg.ForPath("theme.ogg")
//
// # Copying
//
// Copy drains a Source into any SampleWriter (the MSU-1 writer and the WAV
// encoder both implement it).
package audio
