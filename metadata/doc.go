// SPDX-License-Identifier: EPL-2.0

// Package metadata reads title, artist and album tags from input audio.
package metadata
