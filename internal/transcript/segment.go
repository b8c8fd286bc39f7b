package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

// Segmentation defaults, in seconds.
const (
	DefaultTargetDuration = 10.0
	DefaultMinDuration    = 5.0
	DefaultMaxDuration    = 20.0

	// sentencePause is the silence that counts as a natural boundary.
	sentencePause = 0.5
	// wordsPerSecond estimates speech timing when no timestamps exist.
	wordsPerSecond = 2.5
)

var (
	reSentenceEnd   = regexp.MustCompile(`[.!?]$`)
	reSentenceSplit = regexp.MustCompile(`[.!?]+\s+`)
)

// SegmentOptions bounds the duration of a step-sized segment.
type SegmentOptions struct {
	Target float64
	Min    float64
	Max    float64
}

func (o SegmentOptions) withDefaults() SegmentOptions {
	if o.Target <= 0 {
		o.Target = DefaultTargetDuration
	}
	if o.Min <= 0 {
		o.Min = DefaultMinDuration
	}
	if o.Max <= 0 {
		o.Max = DefaultMaxDuration
	}
	if o.Min > o.Max {
		o.Min = o.Max
	}
	return o
}

// StepSegment is a step-sized stretch of transcript returned by segmentation.
type StepSegment struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
	Title     string  `json:"title"`
}

// SmartSegment merges segment-level phrases into logical steps. A step ends
// at a sentence end or a long pause once it is at least Min long, once it
// passes Target, or unconditionally at Max.
func SmartSegment(items []Phrase, opts SegmentOptions) []StepSegment {
	opts = opts.withDefaults()
	out := make([]StepSegment, 0)
	if len(items) == 0 {
		return out
	}

	var (
		parts   []string
		start   float64
		lastEnd float64
	)
	flush := func() {
		text := strings.Join(parts, " ")
		n := len(out)
		out = append(out, StepSegment{
			ID:        fmt.Sprintf("segment-%d", n),
			StartTime: start,
			EndTime:   lastEnd,
			Text:      text,
			Title:     StepTitle(text, n+1),
		})
		parts = parts[:0]
	}

	for i, it := range items {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			continue
		}
		if len(parts) == 0 {
			start = it.Start
		}
		parts = append(parts, text)
		lastEnd = it.End

		dur := lastEnd - start
		longPause := i+1 < len(items) && items[i+1].Start-it.End > sentencePause

		end := false
		switch {
		case dur >= opts.Max:
			end = true
		case dur >= opts.Min:
			end = reSentenceEnd.MatchString(text) || longPause || dur >= opts.Target
		}
		if end {
			flush()
		}
	}
	if len(parts) > 0 {
		flush()
	}
	return out
}

// SegmentText splits untimed transcript text into sentences and packs them
// into steps of roughly target seconds using an average speaking rate.
func SegmentText(text string, target float64) []StepSegment {
	if target <= 0 {
		target = DefaultTargetDuration
	}
	sentences := splitSentences(text)
	out := make([]StepSegment, 0)

	var (
		cur   []string
		start float64
	)
	for i, s := range sentences {
		cur = append(cur, s)
		combined := strings.Join(cur, " ")
		est := float64(len(strings.Fields(combined))) / wordsPerSecond
		if est < target && i != len(sentences)-1 {
			continue
		}
		n := len(out)
		out = append(out, StepSegment{
			ID:        fmt.Sprintf("segment-%d", n),
			StartTime: start,
			EndTime:   start + est,
			Text:      combined,
			Title:     StepTitle(combined, n+1),
		})
		start += est
		cur = nil
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	prev := 0
	for _, loc := range reSentenceSplit.FindAllStringIndex(text, -1) {
		// keep the punctuation, drop the whitespace run after it
		cut := loc[0] + len(strings.TrimRight(text[loc[0]:loc[1]], " \t\r\n"))
		if s := strings.TrimSpace(text[prev:cut]); s != "" {
			out = append(out, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		out = append(out, s)
	}
	return out
}
