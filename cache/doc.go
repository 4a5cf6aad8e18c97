// SPDX-License-Identifier: EPL-2.0

// Package cache decides whether an MSU-1 build is current.
//
// A record lives in a file named Key(output path) and holds the SHA-1 of
// the job descriptor, of the output itself and of every input, joined by
// "|". A build is cached only while the output exists and a fresh Value
// matches the record byte for byte, so touching any input, the descriptor
// or the output invalidates it. Records are never migrated; Sweep drops the
// ones nobody refreshed within the retention window.
package cache
