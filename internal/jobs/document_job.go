package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/internal/timeutil"
	"github.com/erinovdaniil/onboarding/internal/transcript"
)

// DocumentStep is one step of a generated onboarding document.
type DocumentStep struct {
	ID         string  `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Timestamp  string  `json:"timestamp"`
	Title      string  `json:"title"`
	Text       string  `json:"text"`
	Screenshot string  `json:"screenshot,omitempty"`
}

// Document is the step-by-step guide generated for a project.
type Document struct {
	ProjectID string         `json:"project_id"`
	Source    string         `json:"source"`
	Duration  float64        `json:"duration,omitempty"`
	Steps     []DocumentStep `json:"steps"`
}

// DocumentJob builds the steps of a project from its transcript, or fixed
// windows when there is none, captures a screenshot per step and uploads it.
type DocumentJob struct {
	JobID   string
	Project string
	deps    Deps
	doc     *Document
}

// NewDocumentJob creates a DocumentJob for projectID.
func NewDocumentJob(projectID string, deps Deps) *DocumentJob {
	return &DocumentJob{JobID: uuid.NewString(), Project: projectID, deps: deps}
}

// ID returns the unique identifier of the job.
func (j *DocumentJob) ID() string { return j.JobID }

// Type returns the type of the job.
func (j *DocumentJob) Type() string { return "GENERATE_DOCUMENT" }

// ProjectID returns the project being documented.
func (j *DocumentJob) ProjectID() string { return j.Project }

// Result returns the generated document once Execute succeeded.
func (j *DocumentJob) Result() any {
	if j.doc == nil {
		return nil
	}
	return j.doc
}

// Document returns the generated document, or nil before success.
func (j *DocumentJob) Document() *Document { return j.doc }

// Execute generates the document.
func (j *DocumentJob) Execute(ctx context.Context) error {
	d := j.deps
	if d.Store == nil {
		return errors.New("document: missing store")
	}
	log := d.logger().WithFields(logrus.Fields{"job_id": j.JobID, "project_id": j.Project})
	log.Info("Executing DocumentJob")

	tr, err := d.Store.GetTranscript(ctx, j.Project)
	if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
		return fmt.Errorf("load transcript: %w", err)
	}
	cleaned, err := d.Store.GetCleanedSegments(ctx, j.Project)
	if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
		log.WithError(err).Warn("cleaned transcript unavailable")
		cleaned = nil
	}

	var videoURL string
	if d.Videos != nil {
		if videoURL, err = d.Videos.VideoURL(ctx, j.Project); err != nil {
			log.WithError(err).Warn("no video, document will have no screenshots")
			videoURL = ""
		}
	}
	var duration float64
	if videoURL != "" && d.Prober != nil {
		if duration, err = d.Prober.ProbeDuration(ctx, videoURL); err != nil {
			log.WithError(err).Warn("video duration unknown")
			duration = 0
		}
	}

	opts := timeline.Options{Submitter: timeline.InlineSubmitter{}, Logger: log}
	if videoURL != "" && d.Frames != nil {
		opts.Provider = timeline.URLProvider{Capturer: d.Frames}
		opts.Source = timeline.URLSource(videoURL)
	}
	b := timeline.NewBuilder(opts)
	b.SetDuration(duration)

	source := "transcript"
	phrases := transcript.GroupIntoPhrases(transcript.Tokens(tr, cleaned), 0)
	if !b.MaterializeFromPhrases(transcript.Digest(phrases), phrases) {
		source = "fallback"
		interval := d.Interval
		if interval <= 0 {
			interval = timeline.DefaultInterval
		}
		if !b.MaterializeFallback(duration, interval) {
			return fmt.Errorf("project %s has neither a transcript nor a usable video duration", j.Project)
		}
	}

	b.FillScreenshots(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := &Document{ProjectID: j.Project, Source: source, Duration: duration}
	for i, s := range b.Steps() {
		ds := DocumentStep{
			ID:        s.ID,
			Start:     s.Start,
			End:       s.End,
			Timestamp: timeutil.FormatTimestamp(s.Start),
			Title:     transcript.StepTitle(s.TranscriptText, i+1),
			Text:      s.TranscriptText,
		}
		if len(s.Screenshot) > 0 && d.Videos != nil {
			p, err := d.Videos.UploadScreenshot(ctx, j.Project, s.ID, s.Screenshot)
			if err != nil {
				log.WithError(err).WithField("step", s.ID).Warn("screenshot upload failed")
			} else {
				ds.Screenshot = p
			}
		}
		doc.Steps = append(doc.Steps, ds)
	}
	j.doc = doc

	log.WithFields(logrus.Fields{"steps": len(doc.Steps), "source": source}).Info("DocumentJob completed")
	return nil
}
