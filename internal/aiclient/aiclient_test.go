package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/erinovdaniil/onboarding/internal/transcript"
)

type fakeAPI struct {
	audio    openai.AudioResponse
	audioReq openai.AudioRequest
	chatReqs []openai.ChatCompletionRequest
	failOn   string
}

func (f *fakeAPI) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.audioReq = req
	return f.audio, nil
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.chatReqs = append(f.chatReqs, req)
	in := req.Messages[len(req.Messages)-1].Content
	if f.failOn != "" && in == f.failOn {
		return openai.ChatCompletionResponse{}, errors.New("rate limited")
	}
	out := strings.ReplaceAll(in, "um ", "")
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: " " + out + "\n"}}},
	}, nil
}

func TestTranscribe_RequestsWordTimestamps(t *testing.T) {
	api := &fakeAPI{}
	raw := `{"language":"","text":" open the menu ","segments":[{"id":0,"start":0,"end":1.2,"text":" open the menu"}],
		"words":[{"word":"open","start":0,"end":0.4},{"word":"the","start":0.4,"end":0.6},{"word":"menu","start":0.6,"end":1.2}]}`
	if err := json.Unmarshal([]byte(raw), &api.audio); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	c := NewWithAPI(api, nil)
	tr, err := c.Transcribe(context.Background(), "/tmp/audio.mp3")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if api.audioReq.Format != openai.AudioResponseFormatVerboseJSON || len(api.audioReq.TimestampGranularities) != 2 {
		t.Fatalf("unexpected request %+v", api.audioReq)
	}
	if tr.Text != "open the menu" || tr.Language != "en" || len(tr.Segments) != 1 || tr.Segments[0].Text != "open the menu" || len(tr.Words) != 3 {
		t.Fatalf("unexpected transcript %+v", tr)
	}
}

func TestTranscribe_NotConfigured(t *testing.T) {
	c := New("", "", nil)
	if _, err := c.Transcribe(context.Background(), "a.mp3"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCleanSegments(t *testing.T) {
	api := &fakeAPI{failOn: "um broken"}
	c := NewWithAPI(api, nil)
	segs := []transcript.Segment{
		{ID: 0, Start: 0, End: 2, Text: "um click save"},
		{ID: 1, Start: 2, End: 4, Text: "um broken"},
		{ID: 2, Start: 4, End: 5, Text: "  "},
	}

	out := c.CleanSegments(context.Background(), segs)
	if len(out) != 3 {
		t.Fatalf("expected one cleaned segment per input, got %d", len(out))
	}
	if out[0].CleanedText != "click save" || out[0].OriginalText != "um click save" || out[0].Start != 0 || out[0].End != 2 {
		t.Fatalf("unexpected first segment %+v", out[0])
	}
	if out[1].CleanedText != "um broken" {
		t.Fatalf("expected fallback to original text, got %q", out[1].CleanedText)
	}
	if len(api.chatReqs) != 2 {
		t.Fatalf("blank segment should not reach the API, got %d calls", len(api.chatReqs))
	}
	if api.chatReqs[0].Temperature != 0 || api.chatReqs[0].MaxTokens != cleanMaxTokens {
		t.Fatalf("unexpected completion request %+v", api.chatReqs[0])
	}
}

func TestCleanSegments_Disabled(t *testing.T) {
	out := New("", "", nil).CleanSegments(context.Background(), []transcript.Segment{{Text: "uh hi"}})
	if len(out) != 1 || out[0].CleanedText != "uh hi" {
		t.Fatalf("unexpected output %+v", out)
	}
}
