// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC input files through github.com/tphakala/flac.
package flac
