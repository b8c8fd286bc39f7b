package db

import (
	"testing"

	"github.com/erinovdaniil/onboarding/internal/effects"
	"github.com/erinovdaniil/onboarding/internal/transcript"
)

func TestDecodeJSONColumn(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "array", raw: `[{"start":0,"end":1,"text":"a"},{"start":1,"end":2,"text":"b"}]`, want: 2},
		{name: "string holding array", raw: `"[{\"start\":0,\"end\":1,\"text\":\"a\"}]"`, want: 1},
		{name: "null", raw: `null`, want: 0},
		{name: "empty", raw: ``, want: 0},
		{name: "empty string", raw: `""`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var segs []transcript.Segment
			if err := decodeJSONColumn([]byte(tt.raw), &segs); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(segs) != tt.want {
				t.Fatalf("expected %d segments, got %d", tt.want, len(segs))
			}
		})
	}
}

func TestDecodeJSONColumn_Invalid(t *testing.T) {
	var segs []transcript.Segment
	if err := decodeJSONColumn([]byte(`"not json"`), &segs); err == nil {
		t.Fatalf("expected error for string that is not JSON")
	}
}

func TestDecodeJSONColumn_ZoomConfig(t *testing.T) {
	var region *effects.Region
	raw := `"{\"enabled\":true,\"startTime\":1,\"endTime\":4,\"zoomLevel\":2,\"centerX\":40,\"centerY\":60}"`
	if err := decodeJSONColumn([]byte(raw), &region); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if region == nil || region.Start != 1 || region.End != 4 || region.CenterY != 60 {
		t.Fatalf("unexpected region: %+v", region)
	}

	region = nil
	if err := decodeJSONColumn([]byte("null"), &region); err != nil || region != nil {
		t.Fatalf("expected nil region, got %+v %v", region, err)
	}
}

func TestTranscriptRowDecode(t *testing.T) {
	row := transcriptRow{
		ProjectID: "p1",
		Text:      "hello world",
		Segments:  []byte(`"[{\"id\":0,\"start\":0,\"end\":1.5,\"text\":\"hello world\"}]"`),
		Words:     []byte(`[{"word":"hello","start":0,"end":0.5},{"word":"world","start":0.6,"end":1.5}]`),
	}
	tr, err := row.decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr.Language != "en" || len(tr.Segments) != 1 || len(tr.Words) != 2 || tr.Edited {
		t.Fatalf("unexpected transcript: %+v", tr)
	}

	row.Edited = true
	if tr, err = row.decode(); err != nil || !tr.Edited {
		t.Fatalf("edited flag not decoded: %+v %v", tr, err)
	}
}

func TestJoinText(t *testing.T) {
	segs := []transcript.Segment{{Text: " Open settings. "}, {Text: ""}, {Text: "Click save."}}
	if got := joinSegmentText(segs); got != "Open settings. Click save." {
		t.Fatalf("unexpected text %q", got)
	}
	cleaned := []transcript.CleanedSegment{{CleanedText: "a"}, {CleanedText: " "}, {CleanedText: "b"}}
	if got := joinCleanedText(cleaned); got != "a b" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}
