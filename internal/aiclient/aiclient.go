// Package aiclient wraps the OpenAI-compatible speech and chat APIs used for
// re-transcription and filler-word cleaning.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/transcript"
)

// ErrNotConfigured is returned by Transcribe when no API key was provided.
var ErrNotConfigured = errors.New("aiclient: API key not configured")

const (
	cleanModel     = openai.GPT4
	cleanMaxTokens = 500
)

const cleanPrompt = `You are a transcript cleaner. Your ONLY job is to remove filler words.

REMOVE ONLY these exact filler words/phrases:
- um, uh, er, ah, hmm
- repeated words like 'I I' or 'the the'

RULES:
- Do NOT change ANY other words
- Do NOT fix grammar
- Do NOT rephrase anything
- Do NOT add words
- Do NOT correct what seems like mistakes
- Keep the EXACT same meaning and wording

If the input has no filler words, return it EXACTLY as-is.
Output ONLY the text, nothing else.`

// API is the subset of *openai.Client used here.
type API interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client transcribes audio and cleans transcript segments.
type Client struct {
	api    API
	logger logrus.FieldLogger
}

// New builds a Client for apiKey. An empty baseURL uses the OpenAI default.
// With an empty apiKey the client is disabled: Transcribe fails and
// CleanSegments returns the original text.
func New(apiKey, baseURL string, logger logrus.FieldLogger) *Client {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if apiKey == "" {
		return &Client{logger: logger}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), logger: logger}
}

// NewWithAPI builds a Client over an existing API implementation.
func NewWithAPI(api API, logger logrus.FieldLogger) *Client {
	c := New("", "", logger)
	c.api = api
	return c
}

// Enabled reports whether an API is configured.
func (c *Client) Enabled() bool { return c.api != nil }

// Transcribe runs speech recognition on an audio file and returns the text
// with segment and word timestamps.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (transcript.Transcript, error) {
	if c.api == nil {
		return transcript.Transcript{}, ErrNotConfigured
	}
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	tr := transcript.Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Segments: make([]transcript.Segment, 0, len(resp.Segments)),
		Words:    make([]transcript.Word, 0, len(resp.Words)),
	}
	if tr.Language == "" {
		tr.Language = "en"
	}
	for _, s := range resp.Segments {
		tr.Segments = append(tr.Segments, transcript.Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	for _, w := range resp.Words {
		tr.Words = append(tr.Words, transcript.Word{Word: w.Word, Start: w.Start, End: w.End})
	}

	c.logger.WithFields(logrus.Fields{
		"segments": len(tr.Segments),
		"words":    len(tr.Words),
		"language": tr.Language,
	}).Info("audio transcribed")
	return tr, nil
}

// CleanSegments removes filler words from each segment while keeping its
// timestamps. A segment that fails to clean keeps its original text, so the
// result always has one entry per input segment.
func (c *Client) CleanSegments(ctx context.Context, segments []transcript.Segment) []transcript.CleanedSegment {
	out := make([]transcript.CleanedSegment, 0, len(segments))
	if c.api == nil {
		c.logger.Warn("no API key configured, skipping transcript cleaning")
	}
	for i, seg := range segments {
		cleaned := seg.Text
		if c.api != nil {
			text, err := c.cleanText(ctx, seg.Text)
			if err != nil {
				c.logger.WithError(err).WithField("segment", i).Error("error cleaning segment")
			} else {
				cleaned = text
			}
		}
		out = append(out, transcript.CleanedSegment{
			ID:           seg.ID,
			Start:        seg.Start,
			End:          seg.End,
			OriginalText: seg.Text,
			CleanedText:  cleaned,
		})
	}
	return out
}

func (c *Client) cleanText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: cleanModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: cleanPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   cleanMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	cleaned := strings.TrimSpace(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return "", errors.New("completion returned no text")
	}
	return cleaned, nil
}
