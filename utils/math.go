// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// CatmullRom interpolates between y1 and y2 at fraction t (0 <= t <= 1),
// using y0 and y3 as the outer control points.
func CatmullRom(y0, y1, y2, y3, t float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1
	return a0*t*t*t + a1*t*t + a2*t + a3
}

// Decibels converts a linear amplitude to dBFS, rounded to 4 decimals.
// Zero maps to -Inf.
func Decibels(v float64) float64 {
	db := 20 * math.Log10(math.Abs(v))
	if math.IsInf(db, 0) || math.IsNaN(db) {
		return db
	}
	return math.Round(db*10000) / 10000
}

// GainMultiplier converts a gain in dB to a linear factor.
func GainMultiplier(db float64) float64 {
	return math.Pow(10, db/20)
}
