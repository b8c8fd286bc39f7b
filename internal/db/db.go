package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/erinovdaniil/onboarding/internal/effects"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/models"
)

// ErrRecordNotFound is returned when a lookup matches no row.
var ErrRecordNotFound = errors.New("db: record not found")

const (
	projectsTable          = "projects"
	transcriptsTable       = "transcripts"
	cleanedTranscriptTable = "cleaned_transcripts"
)

// Store is the persistence surface used by handlers and jobs.
type Store interface {
	GetProject(ctx context.Context, projectID string) (models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	GetTranscript(ctx context.Context, projectID string) (transcript.Transcript, error)
	SaveTranscript(ctx context.Context, projectID string, tr transcript.Transcript) error
	UpdateTranscriptSegments(ctx context.Context, projectID string, segments []transcript.Segment) error

	GetCleanedSegments(ctx context.Context, projectID string) ([]transcript.CleanedSegment, error)
	SaveCleanedSegments(ctx context.Context, projectID string, segments []transcript.CleanedSegment) error

	GetZoomConfig(ctx context.Context, projectID string) (*effects.Region, error)
	SaveZoomConfig(ctx context.Context, projectID string, region *effects.Region) error

	Close()
}

// decodeJSONColumn decodes a JSON column that may hold either the value
// itself or a string containing its encoding. Null and empty decode to the
// zero value.
func decodeJSONColumn(raw []byte, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("decode json string column: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		raw = []byte(s)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

// joinSegmentText rebuilds a transcript's full text from its segments.
func joinSegmentText(segments []transcript.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func joinCleanedText(segments []transcript.CleanedSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.CleanedText); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
