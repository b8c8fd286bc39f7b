package effects

import "testing"

// cursorTrack returns n frames of a cursor sweeping across the screen with
// rests at the given frame ranges.
func cursorTrack(n int, rests map[[2]int]Point) []*Point {
	out := make([]*Point, n)
	for i := range out {
		p := Point{X: 5000 + float64(i)*100, Y: 100}
		for r, at := range rests {
			if i >= r[0] && i < r[1] {
				p = Point{X: at.X + float64(i%3), Y: at.Y - float64(i%2)}
			}
		}
		out[i] = &p
	}
	return out
}

func TestDetectZoomMoments_SingleRest(t *testing.T) {
	positions := cursorTrack(90, map[[2]int]Point{{30, 60}: {X: 480, Y: 270}})
	got := DetectZoomMoments(positions, 30, DetectOptions{FrameWidth: 1920, FrameHeight: 1080})
	if len(got) != 1 {
		t.Fatalf("expected one moment, got %+v", got)
	}
	r := got[0]
	// Frames 30..49 fill the look-ahead window; padded 9 frames before, 15 after.
	if !almost(r.Start, 21.0/30) || !almost(r.End, 65.0/30) {
		t.Fatalf("unexpected span %v..%v", r.Start, r.End)
	}
	if r.CenterX < 25 || r.CenterX > 25.2 || r.CenterY < 24.9 || r.CenterY > 25 {
		t.Fatalf("unexpected center %v,%v", r.CenterX, r.CenterY)
	}
	if !r.Enabled || r.Magnification != DefaultMagnification {
		t.Fatalf("unexpected region %+v", r)
	}
}

func TestDetectZoomMoments_MinGap(t *testing.T) {
	rests := map[[2]int]Point{
		{0, 20}:  {X: 100, Y: 100},
		{40, 60}: {X: 900, Y: 500},
	}
	positions := cursorTrack(100, rests)

	if got := DetectZoomMoments(positions, 30, DetectOptions{}); len(got) != 1 {
		t.Fatalf("second rest is inside the default gap, got %+v", got)
	}

	got := DetectZoomMoments(positions, 30, DetectOptions{MinGapFrames: 1})
	if len(got) != 2 {
		t.Fatalf("expected two moments, got %+v", got)
	}
	if got[0].Start != 0 || !almost(got[0].End, 35.0/30) {
		t.Fatalf("first moment should clamp at frame 0: %+v", got[0])
	}
	if !almost(got[1].Start, 31.0/30) || !almost(got[1].End, 75.0/30) {
		t.Fatalf("unexpected second moment %+v", got[1])
	}
	if got[0].CenterX != centerPercent || got[0].CenterY != centerPercent {
		t.Fatalf("unknown frame size should center the zoom: %+v", got[0])
	}
}

func TestDetectZoomMoments_NotEnoughTracking(t *testing.T) {
	positions := make([]*Point, 60)
	for i := 0; i < 9; i++ {
		positions[i] = &Point{X: 10, Y: 10}
	}
	if got := DetectZoomMoments(positions, 30, DetectOptions{}); len(got) != 0 {
		t.Fatalf("expected no moments with 9 tracked frames, got %+v", got)
	}
	if got := DetectZoomMoments(cursorTrack(90, map[[2]int]Point{{0, 90}: {}}), 0, DetectOptions{}); len(got) != 0 {
		t.Fatalf("expected no moments without a frame rate, got %+v", got)
	}
}

func TestDetectZoomMoments_ShortRestIgnored(t *testing.T) {
	positions := cursorTrack(90, map[[2]int]Point{{30, 38}: {X: 480, Y: 270}})
	if got := DetectZoomMoments(positions, 30, DetectOptions{}); len(got) != 0 {
		t.Fatalf("an 8 frame rest should not zoom, got %+v", got)
	}
}
