// Package units holds the unit conversions and rounding rule shared by the
// trail model and the forecast compositor.
package units

import "math"

const (
	// FeetPerMeter converts provider elevations (meters) to feet
	FeetPerMeter = 3.28084
	// MetersPerFoot is the exact international foot
	MetersPerFoot = 0.3048
)

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so 49.5 becomes 50 and -10.5 becomes -10.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// MetersToFeet converts meters to feet without rounding
func MetersToFeet(m float64) float64 {
	return m * FeetPerMeter
}

// FeetToMeters converts feet to meters without rounding
func FeetToMeters(ft float64) float64 {
	return ft * MetersPerFoot
}
