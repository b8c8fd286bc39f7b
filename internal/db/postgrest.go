package db

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/erinovdaniil/onboarding/internal/effects"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/models"
)

// Querier starts a PostgREST query on a table. Both *postgrest.Client and
// the Supabase client satisfy it.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// PostgrestStore keeps projects and transcripts in Supabase tables.
type PostgrestStore struct {
	db     Querier
	logger logrus.FieldLogger
}

// NewPostgrestStore returns a Store backed by PostgREST.
func NewPostgrestStore(q Querier, logger logrus.FieldLogger) *PostgrestStore {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &PostgrestStore{db: q, logger: logger}
}

type transcriptRow struct {
	ProjectID string          `json:"project_id"`
	Text      string          `json:"text"`
	Language  string          `json:"language"`
	Segments  json.RawMessage `json:"segments"`
	Words     json.RawMessage `json:"words,omitempty"`
	Edited    bool            `json:"segments_edited"`
}

type cleanedRow struct {
	ProjectID       string          `json:"project_id"`
	Segments        json.RawMessage `json:"segments"`
	FullCleanedText string          `json:"full_cleaned_text"`
}

// GetProject fetches a single project by id.
func (s *PostgrestStore) GetProject(ctx context.Context, projectID string) (models.Project, error) {
	var rows []models.Project
	_, err := s.db.From(projectsTable).
		Select("*", "", false).
		Eq("id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return models.Project{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	if len(rows) == 0 {
		return models.Project{}, fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	return rows[0], nil
}

// ListProjects returns every project, newest first.
func (s *PostgrestStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	var rows []models.Project
	_, err := s.db.From(projectsTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if rows == nil {
		rows = []models.Project{}
	}
	return rows, nil
}

// DeleteProject removes a project and its transcripts.
func (s *PostgrestStore) DeleteProject(ctx context.Context, projectID string) error {
	for _, table := range []string{cleanedTranscriptTable, transcriptsTable} {
		if _, _, err := s.db.From(table).Delete("minimal", "").Eq("project_id", projectID).Execute(); err != nil {
			return fmt.Errorf("delete %s for %s: %w", table, projectID, err)
		}
	}
	var rows []models.Project
	_, err := s.db.From(projectsTable).
		Delete("representation", "").
		Eq("id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	s.logger.WithField("project_id", projectID).Info("project deleted")
	return nil
}

// GetTranscript fetches the stored transcript of a project.
func (s *PostgrestStore) GetTranscript(ctx context.Context, projectID string) (transcript.Transcript, error) {
	var rows []transcriptRow
	_, err := s.db.From(transcriptsTable).
		Select("*", "", false).
		Eq("project_id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("get transcript %s: %w", projectID, err)
	}
	if len(rows) == 0 {
		return transcript.Transcript{}, fmt.Errorf("transcript %s: %w", projectID, ErrRecordNotFound)
	}
	return rows[0].decode()
}

func (r transcriptRow) decode() (transcript.Transcript, error) {
	tr := transcript.Transcript{Text: r.Text, Language: r.Language, Edited: r.Edited}
	if tr.Language == "" {
		tr.Language = "en"
	}
	if err := decodeJSONColumn(r.Segments, &tr.Segments); err != nil {
		return tr, fmt.Errorf("transcript %s segments: %w", r.ProjectID, err)
	}
	if err := decodeJSONColumn(r.Words, &tr.Words); err != nil {
		return tr, fmt.Errorf("transcript %s words: %w", r.ProjectID, err)
	}
	return tr, nil
}

// SaveTranscript inserts or replaces the transcript of a project.
func (s *PostgrestStore) SaveTranscript(ctx context.Context, projectID string, tr transcript.Transcript) error {
	record := map[string]interface{}{
		"project_id":      projectID,
		"text":            tr.Text,
		"language":        tr.Language,
		"segments":        tr.Segments,
		"segments_edited": tr.Edited,
		"created_at":      time.Now().UTC(),
	}
	if len(tr.Words) > 0 {
		record["words"] = tr.Words
	}
	return s.upsertByProject(transcriptsTable, projectID, record)
}

// UpdateTranscriptSegments replaces the segments and full text of an
// existing transcript.
func (s *PostgrestStore) UpdateTranscriptSegments(ctx context.Context, projectID string, segments []transcript.Segment) error {
	update := map[string]interface{}{
		"segments":        segments,
		"text":            joinSegmentText(segments),
		"segments_edited": true,
	}
	var rows []transcriptRow
	_, err := s.db.From(transcriptsTable).
		Update(update, "representation", "").
		Eq("project_id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("update transcript %s: %w", projectID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("transcript %s: %w", projectID, ErrRecordNotFound)
	}
	s.logger.WithFields(logrus.Fields{"project_id": projectID, "segments": len(segments)}).Info("transcript segments updated")
	return nil
}

// GetCleanedSegments fetches the filler-free segments of a project.
func (s *PostgrestStore) GetCleanedSegments(ctx context.Context, projectID string) ([]transcript.CleanedSegment, error) {
	var rows []cleanedRow
	_, err := s.db.From(cleanedTranscriptTable).
		Select("*", "", false).
		Eq("project_id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get cleaned transcript %s: %w", projectID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cleaned transcript %s: %w", projectID, ErrRecordNotFound)
	}
	var segs []transcript.CleanedSegment
	if err := decodeJSONColumn(rows[0].Segments, &segs); err != nil {
		return nil, fmt.Errorf("cleaned transcript %s: %w", projectID, err)
	}
	return segs, nil
}

// SaveCleanedSegments inserts or replaces the cleaned segments of a project.
func (s *PostgrestStore) SaveCleanedSegments(ctx context.Context, projectID string, segments []transcript.CleanedSegment) error {
	record := map[string]interface{}{
		"project_id":        projectID,
		"segments":          segments,
		"full_cleaned_text": joinCleanedText(segments),
		"created_at":        time.Now().UTC(),
	}
	return s.upsertByProject(cleanedTranscriptTable, projectID, record)
}

// GetZoomConfig returns the project's zoom region, or nil when none is set.
func (s *PostgrestStore) GetZoomConfig(ctx context.Context, projectID string) (*effects.Region, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var region *effects.Region
	if err := decodeJSONColumn(p.ZoomConfig, &region); err != nil {
		return nil, fmt.Errorf("project %s zoom config: %w", projectID, err)
	}
	return region, nil
}

// SaveZoomConfig stores region on the project. A nil region clears it.
func (s *PostgrestStore) SaveZoomConfig(ctx context.Context, projectID string, region *effects.Region) error {
	update := map[string]interface{}{
		"zoom_config": region,
		"updated_at":  time.Now().UTC(),
	}
	var rows []models.Project
	_, err := s.db.From(projectsTable).
		Update(update, "representation", "").
		Eq("id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("save zoom config %s: %w", projectID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	return nil
}

// Close is a no-op; PostgREST is stateless HTTP.
func (s *PostgrestStore) Close() {}

func (s *PostgrestStore) upsertByProject(table, projectID string, record map[string]interface{}) error {
	var existing []map[string]interface{}
	_, err := s.db.From(table).
		Select("project_id", "", false).
		Eq("project_id", projectID).
		ExecuteTo(&existing)
	if err != nil {
		return fmt.Errorf("lookup %s for %s: %w", table, projectID, err)
	}

	if len(existing) > 0 {
		_, _, err = s.db.From(table).
			Update(record, "minimal", "").
			Eq("project_id", projectID).
			Execute()
	} else {
		_, _, err = s.db.From(table).
			Insert(record, false, "", "minimal", "").
			Execute()
	}
	if err != nil {
		return fmt.Errorf("save %s for %s: %w", table, projectID, err)
	}
	s.logger.WithFields(logrus.Fields{"table": table, "project_id": projectID}).Info("record saved")
	return nil
}
