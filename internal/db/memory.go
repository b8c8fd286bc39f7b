package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/erinovdaniil/onboarding/internal/effects"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/models"
)

// MemoryStore keeps everything in process memory. It backs offline CLI runs
// and tests.
type MemoryStore struct {
	mu          sync.Mutex
	projects    map[string]models.Project
	transcripts map[string]transcript.Transcript
	cleaned     map[string][]transcript.CleanedSegment
	zoom        map[string]*effects.Region

	// FailWrites, when set, is returned by every write.
	FailWrites error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:    make(map[string]models.Project),
		transcripts: make(map[string]transcript.Transcript),
		cleaned:     make(map[string][]transcript.CleanedSegment),
		zoom:        make(map[string]*effects.Region),
	}
}

// PutProject adds or replaces a project.
func (s *MemoryStore) PutProject(p models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	s.projects[p.ID] = p
}

func (s *MemoryStore) GetProject(ctx context.Context, projectID string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return models.Project{}, fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	if r := s.zoom[projectID]; r != nil {
		raw, _ := json.Marshal(r)
		p.ZoomConfig = raw
	}
	return p, nil
}

// ListProjects returns every project, newest first.
func (s *MemoryStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteProject removes a project together with its transcripts and zoom.
func (s *MemoryStore) DeleteProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if _, ok := s.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	delete(s.projects, projectID)
	delete(s.transcripts, projectID)
	delete(s.cleaned, projectID)
	delete(s.zoom, projectID)
	return nil
}

func (s *MemoryStore) GetTranscript(ctx context.Context, projectID string) (transcript.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.transcripts[projectID]
	if !ok {
		return transcript.Transcript{}, fmt.Errorf("transcript %s: %w", projectID, ErrRecordNotFound)
	}
	tr.Segments = append([]transcript.Segment(nil), tr.Segments...)
	tr.Words = append([]transcript.Word(nil), tr.Words...)
	return tr, nil
}

func (s *MemoryStore) SaveTranscript(ctx context.Context, projectID string, tr transcript.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if tr.Language == "" {
		tr.Language = "en"
	}
	s.transcripts[projectID] = tr
	return nil
}

func (s *MemoryStore) UpdateTranscriptSegments(ctx context.Context, projectID string, segments []transcript.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	tr, ok := s.transcripts[projectID]
	if !ok {
		return fmt.Errorf("transcript %s: %w", projectID, ErrRecordNotFound)
	}
	tr.Segments = append([]transcript.Segment(nil), segments...)
	tr.Text = joinSegmentText(segments)
	tr.Edited = true
	s.transcripts[projectID] = tr
	return nil
}

func (s *MemoryStore) GetCleanedSegments(ctx context.Context, projectID string) ([]transcript.CleanedSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs, ok := s.cleaned[projectID]
	if !ok {
		return nil, fmt.Errorf("cleaned transcript %s: %w", projectID, ErrRecordNotFound)
	}
	return append([]transcript.CleanedSegment(nil), segs...), nil
}

func (s *MemoryStore) SaveCleanedSegments(ctx context.Context, projectID string, segments []transcript.CleanedSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.cleaned[projectID] = append([]transcript.CleanedSegment(nil), segments...)
	return nil
}

func (s *MemoryStore) GetZoomConfig(ctx context.Context, projectID string) (*effects.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[projectID]; !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	r := s.zoom[projectID]
	if r == nil {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) SaveZoomConfig(ctx context.Context, projectID string, region *effects.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	if _, ok := s.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrRecordNotFound)
	}
	if region == nil {
		delete(s.zoom, projectID)
		return nil
	}
	cp := *region
	s.zoom[projectID] = &cp
	return nil
}

func (s *MemoryStore) Close() {}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgrestStore)(nil)
	_ Store = (*PgStore)(nil)
)
