// Package timeline builds the step list of a generated document and keeps
// its screenshots filled in while the user edits it.
package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
	"github.com/erinovdaniil/onboarding/internal/transcript"
)

const (
	// DefaultInterval is the width of a fallback step in seconds.
	DefaultInterval = 7.0
	// MaxFallbackSteps bounds fallback segmentation regardless of duration.
	MaxFallbackSteps = 100
	// InsertedStepWidth is the width of a manually inserted step.
	InsertedStepWidth = 7.0

	placeholderTitle = "New Step"
)

// ErrStepNotFound is returned when an operation names an unknown step.
var ErrStepNotFound = errors.New("timeline: step not found")

// Step is one row of the generated document.
type Step struct {
	ID             string  `json:"id"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Title          string  `json:"title"`
	TranscriptText string  `json:"transcriptText"`
	Screenshot     []byte  `json:"screenshot,omitempty"`
	IsCapturing    bool    `json:"isCapturing"`
}

// StepPatch holds the fields to merge into a step. Nil fields are left alone.
type StepPatch struct {
	Title          *string  `json:"title,omitempty"`
	TranscriptText *string  `json:"transcriptText,omitempty"`
	Start          *float64 `json:"start,omitempty"`
	End            *float64 `json:"end,omitempty"`
}

func (p StepPatch) apply(s *Step) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.TranscriptText != nil {
		s.TranscriptText = *p.TranscriptText
	}
	if p.Start != nil && timeutil.IsFinite(*p.Start) {
		s.Start = *p.Start
	}
	if p.End != nil && timeutil.IsFinite(*p.End) {
		s.End = *p.End
	}
	if s.End < s.Start {
		s.End = s.Start
	}
}

// FromPhrases creates one step per phrase, titled "Step 1", "Step 2", ...
func FromPhrases(phrases []transcript.Phrase) []Step {
	out := make([]Step, 0, len(phrases))
	for i, p := range phrases {
		out = append(out, Step{
			ID:             fmt.Sprintf("step-%d", i),
			Start:          p.Start,
			End:            p.End,
			Title:          fmt.Sprintf("Step %d", i+1),
			TranscriptText: p.Text,
		})
	}
	return out
}

// Fallback partitions [0, duration) into windows of interval seconds with the
// last one truncated. An implausible duration yields no steps. A non-positive
// interval falls back to DefaultInterval.
func Fallback(duration, interval float64) []Step {
	out := make([]Step, 0)
	if !timeutil.IsPlausibleDuration(duration) {
		return out
	}
	if interval <= 0 || !timeutil.IsFinite(interval) {
		interval = DefaultInterval
	}

	n := int(math.Ceil(duration / interval))
	if n > MaxFallbackSteps {
		n = MaxFallbackSteps
	}
	for i := 0; i < n; i++ {
		start := float64(i) * interval
		end := math.Min(start+interval, duration)
		out = append(out, Step{
			ID:    fmt.Sprintf("step-%d", i),
			Start: start,
			End:   end,
			Title: fmt.Sprintf("Step %d", i+1),
		})
	}
	return out
}
