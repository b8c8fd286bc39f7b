package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/effects"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/models"
)

// PgStore talks to the same tables directly over the Postgres protocol.
type PgStore struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// NewPgStore connects to databaseURL and verifies the connection.
func NewPgStore(ctx context.Context, databaseURL string, logger logrus.FieldLogger) (*PgStore, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PgStore{pool: pool, logger: logger}, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrRecordNotFound)
	}
	return fmt.Errorf("query %s: %w", what, err)
}

// GetProject fetches a single project by id.
func (s *PgStore) GetProject(ctx context.Context, projectID string) (models.Project, error) {
	var (
		p    models.Project
		zoom *string
	)
	err := s.pool.QueryRow(ctx,
		`select id::text, name, coalesce(status, ''), video_url, zoom_config::text, created_at, updated_at
		   from projects where id::text = $1`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.Status, &p.VideoURL, &zoom, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Project{}, notFound(err, "project "+projectID)
	}
	if zoom != nil {
		p.ZoomConfig = json.RawMessage(*zoom)
	}
	return p, nil
}

// ListProjects returns every project, newest first.
func (s *PgStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx,
		`select id::text, name, coalesce(status, ''), video_url, zoom_config::text, created_at, updated_at
		   from projects order by created_at desc`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]models.Project, 0)
	for rows.Next() {
		var (
			p    models.Project
			zoom *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.VideoURL, &zoom, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if zoom != nil {
			p.ZoomConfig = json.RawMessage(*zoom)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// DeleteProject removes a project and its transcripts in one transaction.
func (s *PgStore) DeleteProject(ctx context.Context, projectID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete project: begin trx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, q := range []string{
		`delete from cleaned_transcripts where project_id::text = $1`,
		`delete from transcripts where project_id::text = $1`,
	} {
		if _, err := tx.Exec(ctx, q, projectID); err != nil {
			return fmt.Errorf("delete project %s: %w", projectID, err)
		}
	}
	tag, err := tx.Exec(ctx, `delete from projects where id::text = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("delete project: commit: %w", err)
	}
	s.logger.WithField("project_id", projectID).Info("project deleted")
	return nil
}

// GetTranscript fetches the stored transcript of a project.
func (s *PgStore) GetTranscript(ctx context.Context, projectID string) (transcript.Transcript, error) {
	var (
		segments, words *string
		row             transcriptRow
	)
	err := s.pool.QueryRow(ctx,
		`select coalesce(text, ''), coalesce(language, 'en'), segments::text, words::text,
		        coalesce(segments_edited, false)
		   from transcripts where project_id::text = $1`,
		projectID,
	).Scan(&row.Text, &row.Language, &segments, &words, &row.Edited)
	if err != nil {
		return transcript.Transcript{}, notFound(err, "transcript "+projectID)
	}
	row.ProjectID = projectID
	if segments != nil {
		row.Segments = json.RawMessage(*segments)
	}
	if words != nil {
		row.Words = json.RawMessage(*words)
	}
	return row.decode()
}

// SaveTranscript inserts or replaces the transcript of a project.
func (s *PgStore) SaveTranscript(ctx context.Context, projectID string, tr transcript.Transcript) error {
	segs, err := json.Marshal(tr.Segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	var words []byte
	if len(tr.Words) > 0 {
		if words, err = json.Marshal(tr.Words); err != nil {
			return fmt.Errorf("encode words: %w", err)
		}
	}
	return s.upsert(ctx, "transcripts", projectID,
		`update transcripts set text = $2, language = $3, segments = $4, words = $5,
		        segments_edited = $6, created_at = now()
		  where project_id::text = $1`,
		`insert into transcripts (project_id, text, language, segments, words, segments_edited, created_at)
		 values ($1, $2, $3, $4, $5, $6, now())`,
		projectID, tr.Text, tr.Language, string(segs), nullableJSON(words), tr.Edited,
	)
}

// UpdateTranscriptSegments replaces the segments and full text of an
// existing transcript.
func (s *PgStore) UpdateTranscriptSegments(ctx context.Context, projectID string, segments []transcript.Segment) error {
	segs, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`update transcripts set segments = $2, text = $3, segments_edited = true where project_id::text = $1`,
		projectID, string(segs), joinSegmentText(segments),
	)
	if err != nil {
		return fmt.Errorf("update transcript %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transcript %s: %w", projectID, ErrRecordNotFound)
	}
	s.logger.WithFields(logrus.Fields{"project_id": projectID, "segments": len(segments)}).Info("transcript segments updated")
	return nil
}

// GetCleanedSegments fetches the filler-free segments of a project.
func (s *PgStore) GetCleanedSegments(ctx context.Context, projectID string) ([]transcript.CleanedSegment, error) {
	var raw *string
	err := s.pool.QueryRow(ctx,
		`select segments::text from cleaned_transcripts where project_id::text = $1`,
		projectID,
	).Scan(&raw)
	if err != nil {
		return nil, notFound(err, "cleaned transcript "+projectID)
	}
	var segs []transcript.CleanedSegment
	if raw != nil {
		if err := decodeJSONColumn([]byte(*raw), &segs); err != nil {
			return nil, fmt.Errorf("cleaned transcript %s: %w", projectID, err)
		}
	}
	return segs, nil
}

// SaveCleanedSegments inserts or replaces the cleaned segments of a project.
func (s *PgStore) SaveCleanedSegments(ctx context.Context, projectID string, segments []transcript.CleanedSegment) error {
	segs, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("encode cleaned segments: %w", err)
	}
	return s.upsert(ctx, "cleaned_transcripts", projectID,
		`update cleaned_transcripts set segments = $2, full_cleaned_text = $3, created_at = now()
		  where project_id::text = $1`,
		`insert into cleaned_transcripts (project_id, segments, full_cleaned_text, created_at)
		 values ($1, $2, $3, now())`,
		projectID, string(segs), joinCleanedText(segments),
	)
}

// GetZoomConfig returns the project's zoom region, or nil when none is set.
func (s *PgStore) GetZoomConfig(ctx context.Context, projectID string) (*effects.Region, error) {
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
func (s *PgStore) SaveZoomConfig(ctx context.Context, projectID string, region *effects.Region) error {
	var raw []byte
	if region != nil {
		var err error
		if raw, err = json.Marshal(region); err != nil {
			return fmt.Errorf("encode zoom config: %w", err)
		}
	}
	tag, err := s.pool.Exec(ctx,
		`update projects set zoom_config = $2, updated_at = now() where id::text = $1`,
		projectID, nullableJSON(raw),
	)
	if err != nil {
		return fmt.Errorf("save zoom config %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	return nil
}

// Close releases the connection pool.
func (s *PgStore) Close() { s.pool.Close() }

// upsert runs update and falls back to insert when no row matched, inside one
// transaction.
func (s *PgStore) upsert(ctx context.Context, table, projectID, update, insert string, args ...any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save %s: begin trx: %w", table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, update, args...)
	if err != nil {
		return fmt.Errorf("update %s for %s: %w", table, projectID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert %s for %s: %w", table, projectID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save %s: commit: %w", table, err)
	}
	s.logger.WithFields(logrus.Fields{"table": table, "project_id": projectID}).Info("record saved")
	return nil
}

func nullableJSON(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	return &s
}
