// SPDX-License-Identifier: EPL-2.0

package analysis

import "errors"

// ErrNoData means there was nothing measurable: the file is missing, empty,
// silent or could not be read.
var ErrNoData = errors.New("no audio data")
