package geom

import (
	"errors"
	"math"
)

var ErrInvalidRange = errors.New("invalid clamp range")

// Clamp limits v to [lo, hi]. An inverted range is an error.
func Clamp(v, lo, hi float64) (float64, error) {
	if lo > hi {
		return 0, ErrInvalidRange
	}
	return math.Min(math.Max(v, lo), hi), nil
}

// ClampInt is Clamp for ints; an inverted range returns lo.
func ClampInt(v, lo, hi int) int {
	if lo > hi || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// RoundTo rounds half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	f := math.Pow(10, float64(decimals))
	return math.Round(v*f) / f
}
