package params

import "math"

// Clamp bounds value to [min, max] and snaps it to the nearest multiple of
// step counted from min. A non-positive step disables snapping. NaN maps to
// min.
func Clamp(value, min, max, step float64) float64 {
	if math.IsNaN(value) || value < min {
		return min
	}
	if value > max {
		return max
	}
	if step <= 0 {
		return value
	}
	v := min + math.Round((value-min)/step)*step
	if v > max {
		v -= step
	}
	return roundTo(v, 9)
}

// Round2 rounds to two decimal places for display.
func Round2(x float64) float64 {
	return roundTo(x, 2)
}

func roundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
