// Package session keeps one editing session per project in memory: the
// step working set, the phrase grouping of its transcript, and the debounced
// persistence of transcript edits.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/autosave"
	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/internal/transcript"
)

// VideoLocator resolves the playable URL of a project's video.
type VideoLocator interface {
	VideoURL(ctx context.Context, projectID string) (string, error)
}

// DurationProber reads the duration of a video URL.
type DurationProber interface {
	ProbeDuration(ctx context.Context, url string) (float64, error)
}

// ScreenshotUploader stores a captured step screenshot.
type ScreenshotUploader interface {
	UploadScreenshot(ctx context.Context, projectID, stepID string, img []byte) (string, error)
}

// Deps are the collaborators of a Manager. Videos, Prober, Uploader and
// Provider are optional.
type Deps struct {
	Store          db.Store
	Videos         VideoLocator
	Prober         DurationProber
	Uploader       ScreenshotUploader
	Provider       timeline.FrameProvider
	Submitter      timeline.Submitter
	Logger         logrus.FieldLogger
	SaveDelay      time.Duration
	PauseThreshold float64
}

// Session is the in-memory state of one project being edited.
type Session struct {
	ProjectID string
	Builder   *timeline.Builder

	saver *autosave.Saver[[]transcript.Segment]

	mu       sync.Mutex
	segments []transcript.Segment
	phrases  []transcript.Phrase
	duration float64
	videoURL string
}

// Phrases returns the phrase grouping of the session's transcript.
func (s *Session) Phrases() []transcript.Phrase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transcript.Phrase(nil), s.phrases...)
}

// Segments returns the current, possibly unsaved, transcript segments.
func (s *Session) Segments() []transcript.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transcript.Segment(nil), s.segments...)
}

// Duration is the probed video duration, or 0 when unknown.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// VideoURL is the signed URL captures are taken from, if any.
func (s *Session) VideoURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoURL
}

// EditSegments replaces the local segments, regroups the phrases from them
// and schedules a save. The local copy is kept whatever the save outcome.
// Steps already materialized keep their own edits.
func (s *Session) EditSegments(segments []transcript.Segment) {
	cp := append([]transcript.Segment(nil), segments...)
	phrases := transcript.GroupIntoPhrases(transcript.SegmentTokens(cp), 0)
	s.mu.Lock()
	s.segments = cp
	s.phrases = phrases
	s.mu.Unlock()
	s.saver.Update(cp)
}

// SaveStatus reports the persistence state of segment edits.
func (s *Session) SaveStatus() (autosave.Status, error) { return s.saver.Status() }

// Flush saves pending segment edits now.
func (s *Session) Flush(ctx context.Context) error { return s.saver.Flush(ctx) }

type entry struct {
	ready chan struct{}
	s     *Session
	err   error
}

// Manager owns the sessions of every project currently being edited.
type Manager struct {
	deps   Deps
	logger logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager returns a Manager with no open sessions.
func NewManager(deps Deps) *Manager {
	if deps.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Logger = l
	}
	return &Manager{deps: deps, logger: deps.Logger, sessions: make(map[string]*entry)}
}

// Open returns the session of projectID, loading it on first use.
// Concurrent callers share a single load; a failed load is not cached.
func (m *Manager) Open(ctx context.Context, projectID string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[projectID]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		m.sessions[projectID] = e
	}
	m.mu.Unlock()

	if ok {
		select {
		case <-e.ready:
			return e.s, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.s, e.err = m.load(ctx, projectID)
	if e.err != nil {
		m.mu.Lock()
		delete(m.sessions, projectID)
		m.mu.Unlock()
	}
	close(e.ready)
	return e.s, e.err
}

// Get returns an already open session.
func (m *Manager) Get(projectID string) (*Session, bool) {
	m.mu.Lock()
	e, ok := m.sessions[projectID]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.ready:
		return e.s, e.err == nil
	default:
		return nil, false
	}
}

// Close flushes and forgets the session of projectID.
func (m *Manager) Close(ctx context.Context, projectID string) error {
	s, ok := m.Get(projectID)
	if !ok {
		return nil
	}
	m.mu.Lock()
	delete(m.sessions, projectID)
	m.mu.Unlock()
	return s.saver.Close(ctx)
}

// CloseAll flushes and forgets every open session.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) load(ctx context.Context, projectID string) (*Session, error) {
	log := m.logger.WithField("project_id", projectID)

	tr, err := m.deps.Store.GetTranscript(ctx, projectID)
	if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	cleaned, err := m.deps.Store.GetCleanedSegments(ctx, projectID)
	if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
		log.WithError(err).Warn("cleaned transcript unavailable, using raw transcript")
		cleaned = nil
	}

	s := &Session{
		ProjectID: projectID,
		segments:  tr.Segments,
		phrases:   transcript.GroupIntoPhrases(transcript.Tokens(tr, cleaned), m.deps.PauseThreshold),
	}

	if m.deps.Videos != nil {
		if u, err := m.deps.Videos.VideoURL(ctx, projectID); err != nil {
			log.WithError(err).Warn("no video source, screenshots disabled")
		} else {
			s.videoURL = u
		}
	}
	if s.videoURL != "" && m.deps.Prober != nil {
		if d, err := m.deps.Prober.ProbeDuration(ctx, s.videoURL); err != nil {
			log.WithError(err).Warn("video duration unknown")
		} else {
			s.duration = d
		}
	}

	s.saver = autosave.New(func(ctx context.Context, segs []transcript.Segment) error {
		return m.deps.Store.UpdateTranscriptSegments(ctx, projectID, segs)
	}, autosave.Options{Delay: m.deps.SaveDelay, Logger: log})

	opts := timeline.Options{
		Provider:  m.deps.Provider,
		Submitter: m.deps.Submitter,
		Logger:    log,
	}
	if s.videoURL != "" {
		opts.Source = timeline.URLSource(s.videoURL)
	}
	if m.deps.Uploader != nil {
		opts.OnChange = func(step timeline.Step) {
			if len(step.Screenshot) == 0 || step.IsCapturing {
				return
			}
			uctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := m.deps.Uploader.UploadScreenshot(uctx, projectID, step.ID, step.Screenshot); err != nil {
				log.WithError(err).WithField("step", step.ID).Warn("screenshot upload failed")
			}
		}
	}
	s.Builder = timeline.NewBuilder(opts)
	s.Builder.SetDuration(s.duration)

	if len(s.phrases) > 0 {
		s.Builder.MaterializeFromPhrases(transcript.Digest(s.phrases), s.phrases)
	} else {
		s.Builder.MaterializeFallback(s.duration, timeline.DefaultInterval)
	}

	log.WithFields(logrus.Fields{
		"phrases":  len(s.phrases),
		"steps":    len(s.Builder.Steps()),
		"duration": s.duration,
	}).Info("editing session opened")
	return s, nil
}
