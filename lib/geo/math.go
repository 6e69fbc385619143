package geo

import "math"

const PRECISION = 0.0001

// compare a and b and consider them equal if
// difference is less than precision e (e.g. e=0.001)
func PrecisionCompare(a, b, e float64) int {
	if math.Abs(a-b) < e {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// RoundDecimals rounds v to the given number of decimals.
// A negative decimals value leaves v untouched.
func RoundDecimals(v float64, decimals int) float64 {
	if decimals < 0 {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// HalfPixel moves v onto the center of the pixel it falls in so 1px strokes render crisp.
func HalfPixel(v float64) float64 {
	return math.Floor(v) + 0.5
}

// IntervalsOverlap reports whether [aStart, aEnd] and [bStart, bEnd] intersect.
// Touching endpoints count as overlapping.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart <= bEnd && bStart <= aEnd
}

// Clamp returns v limited to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
