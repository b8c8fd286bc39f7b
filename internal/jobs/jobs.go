// Package jobs holds the background work run on the worker pool:
// re-transcription of a project video and batch document generation.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/internal/worker"
	"github.com/erinovdaniil/onboarding/models"
)

// Job is a unit of background work with a reportable result.
type Job interface {
	worker.Job
	// Type names the kind of job, e.g. RETRANSCRIBE.
	Type() string
	// ProjectID is the project the job works on.
	ProjectID() string
	// Result is the job output once Execute succeeded.
	Result() any
}

// Videos reads project videos and stores screenshots.
type Videos interface {
	VideoURL(ctx context.Context, projectID string) (string, error)
	DownloadVideo(ctx context.Context, projectID string) ([]byte, string, error)
	UploadScreenshot(ctx context.Context, projectID, stepID string, img []byte) (string, error)
}

// AudioExtractor turns a video file into speech-API-ready audio.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, input, output string) error
}

// FrameCapturer decodes one frame of a video URL.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error)
}

// DurationProber reads the duration of a video URL.
type DurationProber interface {
	ProbeDuration(ctx context.Context, url string) (float64, error)
}

// Speech transcribes audio and cleans transcript segments.
type Speech interface {
	Transcribe(ctx context.Context, audioPath string) (transcript.Transcript, error)
	CleanSegments(ctx context.Context, segments []transcript.Segment) []transcript.CleanedSegment
}

// Deps are the collaborators jobs need. Not every job uses every field.
type Deps struct {
	Store    db.Store
	Videos   Videos
	Audio    AudioExtractor
	Frames   FrameCapturer
	Prober   DurationProber
	Speech   Speech
	Logger   logrus.FieldLogger
	TempDir  string
	Interval float64
}

func (d Deps) logger() logrus.FieldLogger {
	if d.Logger != nil {
		return d.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Tracker records the lifecycle of submitted jobs so clients can poll them.
type Tracker struct {
	mu     sync.Mutex
	jobs   map[uuid.UUID]*models.ProcessingJob
	logger logrus.FieldLogger
}

// NewTracker returns an empty Tracker.
func NewTracker(logger logrus.FieldLogger) *Tracker {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Tracker{jobs: make(map[uuid.UUID]*models.ProcessingJob), logger: logger}
}

// Track registers j as queued and returns the job to submit in its place,
// which updates the record as it runs.
func (t *Tracker) Track(j Job) (worker.Job, models.ProcessingJob) {
	id, err := uuid.Parse(j.ID())
	if err != nil {
		id = uuid.New()
	}
	now := time.Now().UTC()
	rec := &models.ProcessingJob{
		ID:        id,
		JobType:   j.Type(),
		ProjectID: j.ProjectID(),
		Status:    models.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.mu.Lock()
	t.jobs[id] = rec
	snapshot := *rec
	t.mu.Unlock()

	wrapped := worker.JobFunc{
		Name: id.String(),
		Fn: func(ctx context.Context) error {
			t.start(id)
			err := j.Execute(ctx)
			t.finish(id, j, err)
			return err
		},
	}
	return wrapped, snapshot
}

// Fail marks a tracked job failed, e.g. when it could not be queued.
func (t *Tracker) Fail(id uuid.UUID, err error) {
	t.finish(id, nil, err)
}

// Get returns the record of a job.
func (t *Tracker) Get(id uuid.UUID) (models.ProcessingJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.jobs[id]
	if !ok {
		return models.ProcessingJob{}, false
	}
	return *rec, true
}

// List returns every job of a project, newest first.
func (t *Tracker) List(projectID string) []models.ProcessingJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ProcessingJob, 0)
	for _, rec := range t.jobs {
		if rec.ProjectID == projectID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (t *Tracker) start(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	rec.Status = models.JobStatusRunning
	rec.StartedAt = &now
	rec.UpdatedAt = now
}

func (t *Tracker) finish(id uuid.UUID, j Job, err error) {
	var result json.RawMessage
	if err == nil && j != nil {
		if r := j.Result(); r != nil {
			raw, merr := json.Marshal(r)
			if merr != nil {
				err = errors.Join(errors.New("encode job result"), merr)
			} else {
				result = raw
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	rec.UpdatedAt = now
	rec.CompletedAt = &now
	if err != nil {
		msg := err.Error()
		rec.Status = models.JobStatusFailed
		rec.ErrorMessage = &msg
		t.logger.WithError(err).WithFields(logrus.Fields{"job_id": id, "job_type": rec.JobType}).Error("job failed")
		return
	}
	rec.Status = models.JobStatusCompleted
	rec.Result = result
	t.logger.WithFields(logrus.Fields{"job_id": id, "job_type": rec.JobType}).Info("job completed")
}
