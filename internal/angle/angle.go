// Package angle provides degree-based trigonometry used by the solar and
// qibla calculators.
package angle

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func SinD(deg float64) float64 { return math.Sin(Deg2Rad(deg)) }
func CosD(deg float64) float64 { return math.Cos(Deg2Rad(deg)) }
func TanD(deg float64) float64 { return math.Tan(Deg2Rad(deg)) }

// AsinD returns asin(x) in degrees.
func AsinD(x float64) float64 { return Rad2Deg(math.Asin(x)) }

// AcosD returns acos(x) in degrees. The result is NaN when |x| > 1.
func AcosD(x float64) float64 { return Rad2Deg(math.Acos(x)) }

// Atan2D returns atan2(y, x) in degrees.
func Atan2D(y, x float64) float64 { return Rad2Deg(math.Atan2(y, x)) }

// AcotD returns the arc-cotangent of x in degrees.
func AcotD(x float64) float64 { return Rad2Deg(math.Atan(1 / x)) }

// Normalize360 maps d into [0, 360).
func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	if d >= 360.0 {
		// A tiny negative input rounds back up to 360.
		d = 0
	}
	return d
}

// Normalize24 maps h into [0, 24).
func Normalize24(h float64) float64 {
	h = math.Mod(h, 24.0)
	if h < 0 {
		h += 24.0
	}
	if h >= 24.0 {
		h = 0
	}
	return h
}
