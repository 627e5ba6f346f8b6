package utils

import (
	"math"
	"time"
)

// DaysSince returns t as a fractional day offset from the epoch.
func DaysSince(epoch, t time.Time) float64 {
	return t.Sub(epoch).Hours() / 24
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
