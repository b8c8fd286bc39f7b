// Package effects computes the zoom transform applied on top of the video at
// a given playback position and the pure math behind editing a zoom region.
package effects

import (
	"math"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
)

const (
	// TransitionSeconds is the ramp-in and ramp-out length of a region.
	TransitionSeconds = 0.3
	// MinRegionWidth is the shortest region allowed, in seconds.
	MinRegionWidth = 0.5
	// DefaultRegionWidth is the width of a newly created region.
	DefaultRegionWidth = 3.0
	// DefaultMagnification is the zoom level of a newly created region.
	DefaultMagnification = 2.0

	MinMagnification = 1.0
	MaxMagnification = 3.0
)

// Region is a user-authored zoom block on the timeline.
type Region struct {
	Enabled       bool    `json:"enabled"`
	Start         float64 `json:"startTime"`
	End           float64 `json:"endTime"`
	Magnification float64 `json:"zoomLevel" validate:"gte=1,lte=3"`
	CenterX       float64 `json:"centerX" validate:"gte=0,lte=100"`
	CenterY       float64 `json:"centerY" validate:"gte=0,lte=100"`
}

// Transform is the visual transform to apply at one instant.
type Transform struct {
	Magnification float64 `json:"magnification"`
	CenterX       float64 `json:"centerX"`
	CenterY       float64 `json:"centerY"`
	Active        bool    `json:"active"`
}

// Identity is the transform outside any region.
var Identity = Transform{Magnification: 1, CenterX: 50, CenterY: 50}

// Width returns End - Start.
func (r Region) Width() float64 { return r.End - r.Start }

// Interval returns the region's time span.
func (r Region) Interval() timeutil.Interval {
	return timeutil.Interval{Start: r.Start, End: r.End}
}

// Sample returns the transform for region r at playback time t. The
// magnification ramps linearly from 1 to the target over the first
// min(0.3, width/2) seconds and back over the last, and holds the target in
// between. The center is fixed for the whole region.
func Sample(r Region, t float64) Transform {
	if !r.Enabled || !timeutil.IsFinite(t) || !r.Interval().Valid() || !r.Interval().Contains(t) {
		return Identity
	}

	target := timeutil.Clamp(r.Magnification, MinMagnification, MaxMagnification)
	ramp := math.Min(TransitionSeconds, r.Width()/2)

	progress := 1.0
	if ramp > 0 {
		in := (t - r.Start) / ramp
		out := (r.End - t) / ramp
		progress = timeutil.Clamp(math.Min(in, out), 0, 1)
	}

	return Transform{
		Magnification: 1 + (target-1)*progress,
		CenterX:       timeutil.Clamp(r.CenterX, 0, 100),
		CenterY:       timeutil.Clamp(r.CenterY, 0, 100),
		Active:        true,
	}
}

// NewRegionAt creates a default region starting at the playback position t,
// shifted left when it would run past duration.
func NewRegionAt(t, duration float64) Region {
	r := Region{
		Enabled:       true,
		Start:         t,
		End:           t + DefaultRegionWidth,
		Magnification: DefaultMagnification,
		CenterX:       50,
		CenterY:       50,
	}
	return r.Normalize(duration)
}

// Normalize returns r adjusted to satisfy 0 <= start < end <= duration with
// at least MinRegionWidth, magnification in [1,3] and centers in [0,100].
// A non-positive duration leaves the upper bound open.
func (r Region) Normalize(duration float64) Region {
	if !timeutil.IsFinite(r.Start) {
		r.Start = 0
	}
	if !timeutil.IsFinite(r.End) {
		r.End = r.Start + DefaultRegionWidth
	}
	if !timeutil.IsFinite(r.Magnification) {
		r.Magnification = DefaultMagnification
	}
	r.Magnification = timeutil.Clamp(r.Magnification, MinMagnification, MaxMagnification)
	r.CenterX = timeutil.Clamp(r.CenterX, 0, 100)
	r.CenterY = timeutil.Clamp(r.CenterY, 0, 100)

	if r.Start < 0 {
		r.Start = 0
	}
	if r.End-r.Start < MinRegionWidth {
		r.End = r.Start + MinRegionWidth
	}
	if timeutil.IsFinite(duration) && duration > 0 {
		if duration < MinRegionWidth {
			r.Start, r.End = 0, duration
			return r
		}
		if r.End > duration {
			w := math.Min(r.Width(), duration)
			r.End = duration
			r.Start = duration - w
		}
	}
	return r
}
