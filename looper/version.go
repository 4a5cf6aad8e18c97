// SPDX-License-Identifier: EPL-2.0

package looper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a PyMusicLooper release number.
type Version struct {
	Major, Minor, Patch int
}

var (
	// MinVersion is the oldest release the detector works with.
	MinVersion = Version{3, 0, 0}
	// MultiResultVersion is the first release that ranks alternatives.
	MultiResultVersion = Version{3, 2, 0}
)

const versionPrefix = "pymusiclooper "

var notVersion = regexp.MustCompile(`[^\d.]`)

// ParseVersion reads the output of `pymusiclooper --version`.
func ParseVersion(out string) (Version, error) {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(strings.ToLower(out), versionPrefix) {
		return Version{}, fmt.Errorf("%w: unexpected version output %q", ErrNotInstalled, out)
	}

	parts := strings.Split(notVersion.ReplaceAllString(out, ""), ".")
	if len(parts) < 3 {
		return Version{}, fmt.Errorf("%w: unexpected version output %q", ErrNotInstalled, out)
	}

	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return Version{}, fmt.Errorf("%w: unexpected version output %q", ErrNotInstalled, out)
		}
		nums[i] = n
	}

	return Version{nums[0], nums[1], nums[2]}, nil
}

// Number packs the version into one comparable integer.
func (v Version) Number() int {
	return v.Major*10000 + v.Minor*100 + v.Patch
}

// AtLeast reports whether v is min or newer.
func (v Version) AtLeast(min Version) bool {
	return v.Number() >= min.Number()
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
