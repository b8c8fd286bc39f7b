package effects

import (
	"math"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
)

// Defaults of DetectOptions.
const (
	DefaultStillnessPixels = 15.0
	DefaultStillFrames     = 10
	DefaultMinGapFrames    = 30

	leadInSeconds  = 0.3
	leadOutSeconds = 0.5
	centerPercent  = 50.0
	maxPercent     = 100.0
)

// Point is a cursor position in video pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DetectOptions tunes DetectZoomMoments. Zero fields take the defaults.
type DetectOptions struct {
	// StillnessPixels is the furthest the cursor may drift from where it
	// came to rest and still count as still.
	StillnessPixels float64
	// StillFrames is how many tracked frames the cursor must rest for.
	StillFrames int
	// MinGapFrames separates the end of one moment from the next.
	MinGapFrames int
	// FrameWidth and FrameHeight convert centers to percentages. When
	// unknown the center stays in the middle of the frame.
	FrameWidth  float64
	FrameHeight float64
	// Magnification of the returned regions.
	Magnification float64
}

func (o DetectOptions) withDefaults() DetectOptions {
	if o.StillnessPixels <= 0 || !timeutil.IsFinite(o.StillnessPixels) {
		o.StillnessPixels = DefaultStillnessPixels
	}
	if o.StillFrames <= 0 {
		o.StillFrames = DefaultStillFrames
	}
	if o.MinGapFrames <= 0 {
		o.MinGapFrames = DefaultMinGapFrames
	}
	if o.Magnification <= 0 {
		o.Magnification = DefaultMagnification
	}
	return o
}

type tracked struct {
	frame int
	pos   Point
}

// DetectZoomMoments suggests zoom regions where the cursor rests, one entry
// of positions per video frame. A nil entry is a frame where the cursor was
// not found. Each region starts 0.3s before the cursor stops, ends 0.5s after
// its still run and is centered on the mean resting position.
func DetectZoomMoments(positions []*Point, fps float64, opts DetectOptions) []Region {
	out := make([]Region, 0)
	if fps <= 0 || !timeutil.IsFinite(fps) {
		return out
	}
	opts = opts.withDefaults()

	valid := make([]tracked, 0, len(positions))
	for i, p := range positions {
		if p != nil && timeutil.IsFinite(p.X) && timeutil.IsFinite(p.Y) {
			valid = append(valid, tracked{frame: i, pos: *p})
		}
	}
	if len(valid) < opts.StillFrames {
		return out
	}

	lead := int(fps * leadInSeconds)
	tail := int(fps * leadOutSeconds)
	duration := float64(len(positions)) / fps
	lastEnd := -opts.MinGapFrames

	for i := 0; i < len(valid)-opts.StillFrames; {
		first := valid[i]
		if first.frame < lastEnd+opts.MinGapFrames {
			i++
			continue
		}

		still := 1
		sumX, sumY := first.pos.X, first.pos.Y
		limit := min(i+opts.StillFrames*2, len(valid))
		for j := i + 1; j < limit; j++ {
			p := valid[j].pos
			if math.Hypot(p.X-first.pos.X, p.Y-first.pos.Y) > opts.StillnessPixels {
				break
			}
			still++
			sumX += p.X
			sumY += p.Y
		}
		if still < opts.StillFrames {
			i++
			continue
		}

		startFrame := max(0, first.frame-lead)
		endFrame := min(len(positions)-1, first.frame+still+tail)
		r := Region{
			Enabled:       true,
			Start:         float64(startFrame) / fps,
			End:           float64(endFrame) / fps,
			Magnification: opts.Magnification,
			CenterX:       toPercent(sumX/float64(still), opts.FrameWidth),
			CenterY:       toPercent(sumY/float64(still), opts.FrameHeight),
		}
		out = append(out, r.Normalize(duration))

		lastEnd = endFrame
		i += still
	}
	return out
}

func toPercent(v, size float64) float64 {
	if size <= 0 || !timeutil.IsFinite(size) {
		return centerPercent
	}
	return timeutil.Clamp(v/size*maxPercent, 0, maxPercent)
}
