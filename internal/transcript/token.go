package transcript

import "strings"

// Token is one timed unit of recognized speech. It is either a RawWordToken
// produced by word-level recognition or a CleanedSegmentToken that has
// already been grouped and cleaned upstream.
type Token interface {
	span() (text string, start, end float64)
}

// RawWordToken is a single recognized word.
type RawWordToken struct {
	Text  string
	Start float64
	End   float64
}

func (t RawWordToken) span() (string, float64, float64) { return t.Text, t.Start, t.End }

// CleanedSegmentToken is a segment that must not be regrouped.
type CleanedSegmentToken struct {
	Text  string
	Start float64
	End   float64
}

func (t CleanedSegmentToken) span() (string, float64, float64) { return t.Text, t.Start, t.End }

// WireSegment is the transcript item shape exchanged with the transcription
// service and the UI.
type WireSegment struct {
	Text             string  `json:"word_or_segment_text"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	IsCleanedSegment bool    `json:"is_cleaned_segment,omitempty"`
}

// FromWire converts wire segments into tokens, choosing the variant from the
// is_cleaned_segment flag once at ingestion.
func FromWire(items []WireSegment) []Token {
	out := make([]Token, 0, len(items))
	for _, it := range items {
		if it.IsCleanedSegment {
			out = append(out, CleanedSegmentToken{Text: it.Text, Start: it.Start, End: it.End})
			continue
		}
		out = append(out, RawWordToken{Text: it.Text, Start: it.Start, End: it.End})
	}
	return out
}

// Word is a word-level timestamp as stored with a transcript.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a segment-level timestamp as stored with a transcript.
type Segment struct {
	ID    any     `json:"id,omitempty"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// CleanedSegment is a segment whose filler words were removed while keeping
// the original timestamps.
type CleanedSegment struct {
	ID           any     `json:"id,omitempty"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	OriginalText string  `json:"original_text"`
	CleanedText  string  `json:"cleaned_text"`
}

// Transcript is the stored recognition output of a project video.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words,omitempty"`
	// Edited is set once the user has changed Segments. Edited segments
	// then win over words and cleaned segments.
	Edited bool `json:"segments_edited,omitempty"`
}

// Tokens picks the best available token source: user-edited segments first,
// then cleaned segments, then word-level timestamps, then raw segments.
func Tokens(tr Transcript, cleaned []CleanedSegment) []Token {
	if tr.Edited && len(tr.Segments) > 0 {
		return SegmentTokens(tr.Segments)
	}
	if len(cleaned) > 0 {
		out := make([]Token, 0, len(cleaned))
		for _, c := range cleaned {
			text := c.CleanedText
			if strings.TrimSpace(text) == "" {
				text = c.OriginalText
			}
			out = append(out, CleanedSegmentToken{Text: text, Start: c.Start, End: c.End})
		}
		return out
	}
	if len(tr.Words) > 0 {
		out := make([]Token, 0, len(tr.Words))
		for _, w := range tr.Words {
			out = append(out, RawWordToken{Text: w.Word, Start: w.Start, End: w.End})
		}
		return out
	}
	out := make([]Token, 0, len(tr.Segments))
	for _, s := range tr.Segments {
		out = append(out, RawWordToken{Text: s.Text, Start: s.Start, End: s.End})
	}
	return out
}

// SegmentTokens treats edited segments as pre-grouped phrases.
func SegmentTokens(segments []Segment) []Token {
	out := make([]Token, 0, len(segments))
	for _, s := range segments {
		out = append(out, CleanedSegmentToken{Text: s.Text, Start: s.Start, End: s.End})
	}
	return out
}
