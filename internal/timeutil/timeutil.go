// Package timeutil holds the small time and interval helpers shared by the
// transcript, timeline and effects packages. All times are in seconds.
package timeutil

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxDurationSeconds is the longest media duration accepted for step generation.
const MaxDurationSeconds = 3600.0

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsPlausibleDuration reports whether d can be segmented without runaway loops.
func IsPlausibleDuration(d float64) bool {
	return IsFinite(d) && d > 0 && d <= MaxDurationSeconds
}

// FormatTimestamp renders seconds as m:ss, or h:mm:ss past the first hour.
func FormatTimestamp(seconds float64) string {
	if !IsFinite(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ToMillis converts seconds to integer milliseconds, rounding half away from zero.
func ToMillis(seconds float64) int64 {
	if !IsFinite(seconds) {
		return 0
	}
	return decimal.NewFromFloat(seconds).Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
}

// FromMillis converts integer milliseconds back to seconds.
func FromMillis(ms int64) float64 {
	f, _ := decimal.New(ms, -3).Float64()
	return f
}

// Interval is a time span [Start, End].
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Width returns End-Start.
func (i Interval) Width() float64 { return i.End - i.Start }

// Valid reports whether the interval is finite and not inverted.
func (i Interval) Valid() bool {
	return IsFinite(i.Start) && IsFinite(i.End) && i.Start <= i.End
}

// Contains reports whether t lies within the closed interval.
func (i Interval) Contains(t float64) bool {
	return t >= i.Start && t <= i.End
}

// Overlaps reports whether the two intervals share any time, treating both
// as half-open so that touching intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}
