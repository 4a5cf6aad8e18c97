// SPDX-License-Identifier: EPL-2.0

// Package loop plays MSU1 files the way the MSU-1 chip does: once through,
// then forever from the loop point.
//
// A Stream reads the sample data and wraps at the end. A PlaybackSession
// pumps the stream into a Feed which an AudioSink drains, either the audio
// device via miniaudio, an external player reading stdin, or nothing at
// all. The Engine keeps at most one session alive.
package loop
