// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF input files through github.com/go-audio/aiff.
//
// 8, 16, 24 and 32-bit integer PCM are accepted and normalized to float32.
// go-audio needs an io.ReadSeeker; plain readers are buffered in memory.
package aiff
