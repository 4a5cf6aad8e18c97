// SPDX-License-Identifier: EPL-2.0

package looper

import (
	"math"
	"strconv"
)

// DefaultMinDurationMultiplier is the detector's own default.
const DefaultMinDurationMultiplier = 0.25

// Params narrows the loop search. Durations and positions are in seconds.
type Params struct {
	MinDurationMultiplier float64
	MinLoopDuration       *int
	MaxLoopDuration       *int
	// ApproxStart and ApproxEnd are only used together.
	ApproxStart *int
	ApproxEnd   *int
}

// normalized fills defaults and clamps the minimum loop duration to one
// second.
func (p Params) normalized() Params {
	if p.MinDurationMultiplier <= 0 {
		p.MinDurationMultiplier = DefaultMinDurationMultiplier
	}
	if p.MinLoopDuration != nil && *p.MinLoopDuration < 1 {
		one := 1
		p.MinLoopDuration = &one
	}
	return p
}

// Args builds the export-points command line for file.
func (p Params) Args(file string) []string {
	p = p.normalized()

	args := []string{
		"export-points",
		"--min-duration-multiplier", formatFloat(p.MinDurationMultiplier),
		"--path", file,
	}
	if p.MinLoopDuration != nil {
		args = append(args, "--min-loop-duration", strconv.Itoa(*p.MinLoopDuration))
	}
	if p.MaxLoopDuration != nil {
		args = append(args, "--max-loop-duration", strconv.Itoa(*p.MaxLoopDuration))
	}
	if p.ApproxStart != nil && p.ApproxEnd != nil {
		args = append(args, "--approx-loop-position", strconv.Itoa(*p.ApproxStart), strconv.Itoa(*p.ApproxEnd))
	}

	return args
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// cacheSuffix renders the parameters as they appear in a cache file name.
func (p Params) cacheSuffix() string {
	p = p.normalized()
	return formatFloat(math.Round(p.MinDurationMultiplier*100)/100) + "_" +
		optional(p.MinLoopDuration) + "_" +
		optional(p.MaxLoopDuration) + "_" +
		optional(p.ApproxStart) + "_" +
		optional(p.ApproxEnd)
}
