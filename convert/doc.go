// SPDX-License-Identifier: EPL-2.0

// Package convert drives msupcm++ to build MSU1 files from song specs.
//
// Generate writes a temporary job descriptor, consults the build cache,
// runs the converter and validates what it produced. Every path resolves
// into an Outcome of kind Success, Warning or Failure; the descriptor is
// removed on every exit.
//
// The converter signals errors on stderr rather than through its exit
// status, and may still write the output while complaining. An output
// whose modification time advanced during the run is therefore reported
// as a Warning instead of a Failure.
package convert
