// Package utils contains small helpers shared across the footstep planning packages.
package utils

import (
	"math"
)

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleDiff returns the signed shortest rotation taking a2 onto a1, in the range [-pi, pi].
// It is odd-symmetric: AngleDiff(-a1, -a2) == -AngleDiff(a1, a2).
func AngleDiff(a1, a2 float64) float64 {
	return math.Remainder(a1-a2, 2*math.Pi)
}

// WrapAngle wraps an angle in radians into [-pi, pi].
func WrapAngle(angle float64) float64 {
	return math.Remainder(angle, 2*math.Pi)
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// PositiveMod returns a mod b in [0, b) for b > 0.
func PositiveMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
