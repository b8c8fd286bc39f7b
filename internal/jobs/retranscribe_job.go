package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RetranscribeResult summarizes a finished re-transcription.
type RetranscribeResult struct {
	Language        string `json:"language"`
	Segments        int    `json:"segments"`
	Words           int    `json:"words"`
	CleanedSegments int    `json:"cleaned_segments"`
}

// RetranscribeJob downloads a project's video, transcribes its audio with
// word timestamps, and stores both the transcript and its filler-free
// cleaned segments.
type RetranscribeJob struct {
	JobID   string
	Project string
	deps    Deps
	result  *RetranscribeResult
}

// NewRetranscribeJob creates a RetranscribeJob for projectID.
func NewRetranscribeJob(projectID string, deps Deps) *RetranscribeJob {
	return &RetranscribeJob{JobID: uuid.NewString(), Project: projectID, deps: deps}
}

// ID returns the unique identifier of the job.
func (j *RetranscribeJob) ID() string { return j.JobID }

// Type returns the type of the job.
func (j *RetranscribeJob) Type() string { return "RETRANSCRIBE" }

// ProjectID returns the project being transcribed.
func (j *RetranscribeJob) ProjectID() string { return j.Project }

// Result returns the summary once Execute succeeded.
func (j *RetranscribeJob) Result() any {
	if j.result == nil {
		return nil
	}
	return j.result
}

// Execute runs download, audio extraction, transcription and cleaning.
func (j *RetranscribeJob) Execute(ctx context.Context) error {
	d := j.deps
	if d.Store == nil || d.Videos == nil || d.Audio == nil || d.Speech == nil {
		return errors.New("retranscribe: missing dependencies")
	}
	log := d.logger().WithFields(logrus.Fields{"job_id": j.JobID, "project_id": j.Project})
	log.Info("Executing RetranscribeJob")

	dir, err := os.MkdirTemp(d.TempDir, "retranscribe-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	data, name, err := d.Videos.DownloadVideo(ctx, j.Project)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	videoPath := filepath.Join(dir, name)
	if err := os.WriteFile(videoPath, data, 0o600); err != nil {
		return fmt.Errorf("write video: %w", err)
	}
	log.WithField("bytes", len(data)).Info("video downloaded")

	audioPath := filepath.Join(dir, "audio.mp3")
	if err := d.Audio.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}

	tr, err := d.Speech.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	if err := d.Store.SaveTranscript(ctx, j.Project, tr); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}

	cleaned := d.Speech.CleanSegments(ctx, tr.Segments)
	if err := d.Store.SaveCleanedSegments(ctx, j.Project, cleaned); err != nil {
		return fmt.Errorf("save cleaned transcript: %w", err)
	}

	j.result = &RetranscribeResult{
		Language:        tr.Language,
		Segments:        len(tr.Segments),
		Words:           len(tr.Words),
		CleanedSegments: len(cleaned),
	}
	log.WithFields(logrus.Fields{"segments": len(tr.Segments), "words": len(tr.Words)}).Info("RetranscribeJob completed")
	return nil
}
