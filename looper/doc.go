// SPDX-License-Identifier: EPL-2.0

// Package looper finds loop points in input audio by running PyMusicLooper.
//
// The Detector probes the installed version once, builds the export-points
// command line, and parses either the single-result or the ranked
// multi-result output depending on what the version supports. Results are
// cached as YAML keyed by the input's path and content, the tool version,
// and the search parameters.
package looper
