package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/autosave"
	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/jobs"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/utils"
)

// TranscriptResponse is the stored transcript of a project.
type TranscriptResponse struct {
	Text            string                      `json:"text"`
	Language        string                      `json:"language"`
	Segments        []transcript.Segment        `json:"segments"`
	Words           []transcript.Word           `json:"words,omitempty"`
	CleanedSegments []transcript.CleanedSegment `json:"cleaned_segments,omitempty"`
}

// TranscriptSegmentInput is one edited transcript segment.
type TranscriptSegmentInput struct {
	ID    interface{} `json:"id"`
	Start float64     `json:"start" validate:"gte=0"`
	End   float64     `json:"end" validate:"gtefield=Start"`
	Text  string      `json:"text"`
}

// UpdateTranscriptRequest replaces the segments of a transcript.
type UpdateTranscriptRequest struct {
	Segments []TranscriptSegmentInput `json:"segments" validate:"required,dive"`
}

// SaveStatusResponse reports the persistence state of transcript edits.
type SaveStatusResponse struct {
	Status autosave.Status `json:"status" swaggertype:"string" enums:"Saved,Unsaved,Saving,Failed"`
	Error  string          `json:"error,omitempty"`
}

// SegmentRequest asks for step-sized segments of a project transcript.
type SegmentRequest struct {
	ProjectID       string  `json:"projectId" validate:"required"`
	SegmentDuration float64 `json:"segmentDuration" validate:"gte=0,lte=600"`
	MinDuration     float64 `json:"minDuration" validate:"gte=0,lte=600"`
	MaxDuration     float64 `json:"maxDuration" validate:"gte=0,lte=600"`
}

// GroupPhrasesRequest carries raw transcript items to group into phrases.
type GroupPhrasesRequest struct {
	Segments       []transcript.WireSegment `json:"segments" validate:"required"`
	PauseThreshold float64                  `json:"pauseThreshold" validate:"gte=0"`
}

// PhrasesResponse is a phrase grouping and its content digest.
type PhrasesResponse struct {
	Digest  string              `json:"digest"`
	Phrases []transcript.Phrase `json:"phrases"`
}

// GetTranscript godoc
// @Summary Get a project transcript
// @Description Returns the stored transcript with word timestamps and, when available, its cleaned segments.
// @Tags transcripts
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} TranscriptResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/transcript [get]
func (h *ApplicationHandler) GetTranscript(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	ctx := c.UserContext()

	tr, err := h.Store.GetTranscript(ctx, projectID)
	if err != nil {
		return h.respondWithStoreError(c, err, "transcript")
	}
	cleaned, err := h.Store.GetCleanedSegments(ctx, projectID)
	if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
		h.Logger.WithError(err).WithField("project_id", projectID).Warn("Could not load cleaned transcript")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, TranscriptResponse{
		Text:            tr.Text,
		Language:        tr.Language,
		Segments:        tr.Segments,
		Words:           tr.Words,
		CleanedSegments: cleaned,
	})
}

// UpdateTranscript godoc
// @Summary Update transcript segments
// @Description Replaces the segments of the transcript. The edit is kept in the editing session and saved after a short delay; pass flush=true to save before responding.
// @Tags transcripts
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param flush query bool false "Save immediately"
// @Param body body UpdateTranscriptRequest true "Edited segments"
// @Success 200 {object} SaveStatusResponse
// @Success 202 {object} SaveStatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} SaveStatusResponse
// @Router /api/v1/projects/{projectId}/transcript [put]
func (h *ApplicationHandler) UpdateTranscript(c *fiber.Ctx) error {
	req := new(UpdateTranscriptRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}

	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}

	segs := make([]transcript.Segment, 0, len(req.Segments))
	for _, in := range req.Segments {
		segs = append(segs, transcript.Segment{ID: in.ID, Start: in.Start, End: in.End, Text: utils.SanitizeInput(in.Text)})
	}
	s.EditSegments(segs)
	h.Logger.WithFields(logrus.Fields{"project_id": s.ProjectID, "segments": len(segs)}).Info("Transcript edited")

	if !c.QueryBool("flush") {
		st, _ := s.SaveStatus()
		return utils.RespondWithJSON(c, fiber.StatusAccepted, SaveStatusResponse{Status: st})
	}
	if err := s.Flush(c.UserContext()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Transcript edit kept locally but could not be saved",
			"data":    SaveStatusResponse{Status: autosave.Failed, Error: err.Error()},
		})
	}
	st, _ := s.SaveStatus()
	return utils.RespondWithJSON(c, fiber.StatusOK, SaveStatusResponse{Status: st})
}

// GetTranscriptSaveStatus godoc
// @Summary Transcript save status
// @Tags transcripts
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} SaveStatusResponse
// @Router /api/v1/projects/{projectId}/transcript/status [get]
func (h *ApplicationHandler) GetTranscriptSaveStatus(c *fiber.Ctx) error {
	resp := SaveStatusResponse{Status: autosave.Saved}
	if h.Sessions != nil {
		if s, ok := h.Sessions.Get(c.Params("projectId")); ok {
			st, err := s.SaveStatus()
			resp.Status = st
			if err != nil {
				resp.Error = err.Error()
			}
		}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, resp)
}

// GetPhrases godoc
// @Summary Phrases of the editing session
// @Tags transcripts
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} PhrasesResponse
// @Router /api/v1/projects/{projectId}/phrases [get]
func (h *ApplicationHandler) GetPhrases(c *fiber.Ctx) error {
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}
	phrases := s.Phrases()
	return utils.RespondWithJSON(c, fiber.StatusOK, PhrasesResponse{Digest: transcript.Digest(phrases), Phrases: phrases})
}

// GroupPhrases godoc
// @Summary Group transcript items into phrases
// @Description Groups word-level items by pauses, or passes cleaned segments through unchanged.
// @Tags transcripts
// @Accept json
// @Produce json
// @Param body body GroupPhrasesRequest true "Transcript items"
// @Success 200 {object} PhrasesResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/phrases [post]
func (h *ApplicationHandler) GroupPhrases(c *fiber.Ctx) error {
	req := new(GroupPhrasesRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	phrases := transcript.GroupIntoPhrases(transcript.FromWire(req.Segments), req.PauseThreshold)
	return utils.RespondWithJSON(c, fiber.StatusOK, PhrasesResponse{Digest: transcript.Digest(phrases), Phrases: phrases})
}

// SegmentTranscript godoc
// @Summary Segment a transcript into steps
// @Description Splits the project transcript into logical step-sized segments at sentence ends and pauses.
// @Tags transcripts
// @Accept json
// @Produce json
// @Param body body SegmentRequest true "Segmentation options"
// @Success 200 {object} map[string][]transcript.StepSegment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/transcripts/segment [post]
func (h *ApplicationHandler) SegmentTranscript(c *fiber.Ctx) error {
	req := new(SegmentRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	ctx := c.UserContext()

	tr, err := h.Store.GetTranscript(ctx, req.ProjectID)
	if err != nil {
		return h.respondWithStoreError(c, err, "transcript")
	}
	cleaned, err := h.Store.GetCleanedSegments(ctx, req.ProjectID)
	if err != nil && !errors.Is(err, db.ErrRecordNotFound) {
		h.Logger.WithError(err).WithField("project_id", req.ProjectID).Warn("Could not load cleaned transcript")
		cleaned = nil
	}

	var segments []transcript.StepSegment
	if items := segmentItems(tr, cleaned); len(items) > 0 {
		segments = transcript.SmartSegment(items, transcript.SegmentOptions{
			Target: req.SegmentDuration,
			Min:    req.MinDuration,
			Max:    req.MaxDuration,
		})
	} else {
		segments = transcript.SegmentText(tr.Text, req.SegmentDuration)
	}

	h.Logger.WithFields(logrus.Fields{"project_id": req.ProjectID, "segments": len(segments)}).Info("Transcript segmented")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"segments": segments})
}

// segmentItems returns segment-level items, preferring cleaned text.
func segmentItems(tr transcript.Transcript, cleaned []transcript.CleanedSegment) []transcript.Phrase {
	var items []transcript.Phrase
	if len(cleaned) > 0 {
		for i, cs := range cleaned {
			text := cs.CleanedText
			if strings.TrimSpace(text) == "" {
				text = cs.OriginalText
			}
			items = append(items, transcript.Phrase{ID: fmt.Sprintf("segment-%d", i), Text: text, Start: cs.Start, End: cs.End})
		}
		return items
	}
	for i, s := range tr.Segments {
		items = append(items, transcript.Phrase{ID: fmt.Sprintf("segment-%d", i), Text: s.Text, Start: s.Start, End: s.End})
	}
	return items
}

// Retranscribe godoc
// @Summary Re-transcribe a project video
// @Description Queues a job that extracts the audio, transcribes it with word timestamps and stores cleaned segments.
// @Tags transcripts
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 202 {object} models.ProcessingJob
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/retranscribe [post]
func (h *ApplicationHandler) Retranscribe(c *fiber.Ctx) error {
	return h.enqueue(c, jobs.NewRetranscribeJob(c.Params("projectId"), h.JobDeps))
}

// enqueue tracks and submits j, answering with the job record.
func (h *ApplicationHandler) enqueue(c *fiber.Ctx, j jobs.Job) error {
	if h.Queue == nil {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Background processing is not available")
	}
	wrapped, rec := h.Tracker.Track(j)
	if err := h.Queue.Submit(wrapped); err != nil {
		h.Tracker.Fail(rec.ID, err)
		h.Logger.WithError(err).WithField("job_type", j.Type()).Error("Could not queue job")
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Job queue is full, try again later")
	}
	h.Logger.WithFields(logrus.Fields{"job_id": rec.ID, "job_type": rec.JobType, "project_id": rec.ProjectID}).Info("Job queued")
	return utils.RespondWithMessage(c, fiber.StatusAccepted, "Job queued", rec)
}
