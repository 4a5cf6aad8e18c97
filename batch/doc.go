// SPDX-License-Identifier: EPL-2.0

// Package batch runs many tracks through the converter with bounded
// concurrency.
//
// Parallel msupcm++ runs share SoX's scratch directory and occasionally
// collide on its wrapper temp file. Tracks that fail that way on the first
// pass are retried serially once every other track has finished.
package batch
