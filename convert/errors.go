// SPDX-License-Identifier: EPL-2.0

package convert

import "errors"

var (
	// ErrNotInstalled means msupcm++ is missing or did not identify itself.
	ErrNotInstalled = errors.New("msupcm++ is not installed")

	// ErrMissingSharedLibraries means msupcm++ exists but the loader could
	// not start it.
	ErrMissingSharedLibraries = errors.New("msupcm++ is missing shared libraries")
)
