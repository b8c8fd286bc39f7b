package effects

import (
	"math"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
)

// DragMode selects how a pointer drag changes a region.
type DragMode int

const (
	Move DragMode = iota
	ResizeLeft
	ResizeRight
)

// DragSession is the state of one pointer-down to pointer-up interaction.
type DragSession struct {
	Mode    DragMode
	AnchorX float64
	Anchor  Region
}

// BeginDrag captures the pointer position and the region as they were at
// pointer-down.
func BeginDrag(mode DragMode, pointerX float64, r Region) DragSession {
	return DragSession{Mode: mode, AnchorX: pointerX, Anchor: r}
}

// Apply returns the anchor region moved or resized by the pointer
// displacement, scaled from pixels to seconds by duration / trackWidthPx.
// The result always stays inside [0, duration] and at least MinRegionWidth
// wide.
func (d DragSession) Apply(pointerX, trackWidthPx, duration float64) Region {
	r := d.Anchor
	if trackWidthPx <= 0 || !timeutil.IsFinite(trackWidthPx) || !timeutil.IsFinite(pointerX) ||
		duration <= 0 || !timeutil.IsFinite(duration) {
		return r
	}
	delta := (pointerX - d.AnchorX) * duration / trackWidthPx

	switch d.Mode {
	case Move:
		w := math.Min(math.Max(r.Width(), MinRegionWidth), duration)
		start := timeutil.Clamp(r.Start+delta, 0, duration-w)
		r.Start, r.End = start, start+w
	case ResizeLeft:
		hi := r.End - MinRegionWidth
		r.Start = timeutil.Clamp(r.Start+delta, 0, math.Max(hi, 0))
		if r.End-r.Start < MinRegionWidth {
			r.End = math.Min(r.Start+MinRegionWidth, duration)
		}
	case ResizeRight:
		lo := r.Start + MinRegionWidth
		r.End = timeutil.Clamp(r.End+delta, math.Min(lo, duration), duration)
		if r.End-r.Start < MinRegionWidth {
			r.Start = math.Max(r.End-MinRegionWidth, 0)
		}
	}
	return r
}
