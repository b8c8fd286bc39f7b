package timeutil

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestIsPlausibleDuration(t *testing.T) {
	tests := map[string]struct {
		d    float64
		want bool
	}{
		"negative": {-1, false},
		"zero":     {0, false},
		"nan":      {math.NaN(), false},
		"inf":      {math.Inf(1), false},
		"too long": {5000, false},
		"limit":    {3600, true},
		"normal":   {25, true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := IsPlausibleDuration(tt.d); got != tt.want {
				t.Fatalf("IsPlausibleDuration(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{7.9, "0:07"},
		{65, "1:05"},
		{3725, "1:02:05"},
		{-3, "0:00"},
		{math.NaN(), "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMillisRoundTrip(t *testing.T) {
	if got := ToMillis(1.2345); got != 1235 {
		t.Fatalf("ToMillis(1.2345) = %d, want 1235", got)
	}
	if got := ToMillis(0.1 + 0.2); got != 300 {
		t.Fatalf("ToMillis(0.3) = %d, want 300", got)
	}
	if got := FromMillis(1500); got != 1.5 {
		t.Fatalf("FromMillis(1500) = %v, want 1.5", got)
	}
}

func TestInterval(t *testing.T) {
	a := Interval{Start: 0, End: 7}
	b := Interval{Start: 7, End: 14}
	c := Interval{Start: 5, End: 9}

	if a.Overlaps(b) {
		t.Fatalf("touching intervals must not overlap")
	}
	if !a.Overlaps(c) || !c.Overlaps(b) {
		t.Fatalf("expected overlap with %v", c)
	}
	if !a.Contains(7) || a.Contains(7.01) {
		t.Fatalf("Contains must be closed at both ends")
	}
	if a.Width() != 7 {
		t.Fatalf("unexpected width %v", a.Width())
	}
	if (Interval{Start: 2, End: 1}).Valid() {
		t.Fatalf("inverted interval reported valid")
	}
}
