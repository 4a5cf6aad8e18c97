// SPDX-License-Identifier: EPL-2.0

// Package tool runs the external executables msukit depends on (msupcm++
// and PyMusicLooper) and turns their loosely defined behaviour into a typed
// Result. Processes are created through an Executor so tests can replace
// them.
package tool
