// SPDX-License-Identifier: EPL-2.0

// Package analysis measures loudness and finds where sound starts and
// ends in decoded audio.
package analysis
