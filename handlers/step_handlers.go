package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/jobs"
	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/utils"
)

// StepsResponse is the working set of an editing session.
type StepsResponse struct {
	State    string          `json:"state"`
	Digest   string          `json:"digest,omitempty"`
	Duration float64         `json:"duration,omitempty"`
	Steps    []timeline.Step `json:"steps"`
}

// InsertStepRequest places a new step at a playback position.
type InsertStepRequest struct {
	Time float64 `json:"time" validate:"gte=0"`
}

// UpdateStepRequest edits a step. Omitted fields are left unchanged.
type UpdateStepRequest struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	TranscriptText *string  `json:"transcriptText,omitempty"`
	Start          *float64 `json:"start,omitempty" validate:"omitempty,gte=0"`
	End            *float64 `json:"end,omitempty" validate:"omitempty,gte=0"`
}

// FallbackRequest asks for fixed-interval steps of a video.
type FallbackRequest struct {
	Duration float64 `json:"duration" validate:"gt=0,lte=3600"`
	Interval float64 `json:"interval" validate:"gte=0"`
}

func stepsResponse(b *timeline.Builder, duration float64) StepsResponse {
	return StepsResponse{
		State:    b.State().String(),
		Digest:   b.Digest(),
		Duration: duration,
		Steps:    b.Steps(),
	}
}

// ListSteps godoc
// @Summary List steps
// @Description Opens the editing session of the project if needed and returns its steps. Steps are derived once from the transcript, or from fixed windows of the video when there is none.
// @Tags steps
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} StepsResponse
// @Router /api/v1/projects/{projectId}/steps [get]
func (h *ApplicationHandler) ListSteps(c *fiber.Ctx) error {
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, stepsResponse(s.Builder, s.Duration()))
}

// InsertStep godoc
// @Summary Insert a step
// @Description Adds a placeholder step starting at the given time and captures its screenshot.
// @Tags steps
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param body body InsertStepRequest true "Position in seconds"
// @Success 201 {object} timeline.Step
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/steps [post]
func (h *ApplicationHandler) InsertStep(c *fiber.Ctx) error {
	req := new(InsertStepRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}

	step, err := s.Builder.InsertStepAtTime(c.UserContext(), req.Time)
	if err != nil {
		// the step exists even when its capture could not be queued
		h.Logger.WithError(err).WithField("step", step.ID).Warn("Screenshot of inserted step not queued")
	}
	h.Logger.WithFields(logrus.Fields{"project_id": s.ProjectID, "step": step.ID, "start": step.Start}).Info("Step inserted")
	return utils.RespondWithMessage(c, fiber.StatusCreated, "Step inserted", step)
}

// UpdateStep godoc
// @Summary Update a step
// @Tags steps
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param stepId path string true "Step ID"
// @Param body body UpdateStepRequest true "Fields to change"
// @Success 200 {object} timeline.Step
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/steps/{stepId} [patch]
func (h *ApplicationHandler) UpdateStep(c *fiber.Ctx) error {
	req := new(UpdateStepRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}

	patch := timeline.StepPatch{
		TranscriptText: req.TranscriptText,
		Start:          req.Start,
		End:            req.End,
	}
	if req.Title != nil {
		title := utils.SanitizeInput(*req.Title)
		patch.Title = &title
	}
	step, err := s.Builder.UpdateStep(c.Params("stepId"), patch)
	if err != nil {
		return h.respondWithStoreError(c, err, "step")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, step)
}

// DeleteStep godoc
// @Summary Delete a step
// @Tags steps
// @Param projectId path string true "Project ID"
// @Param stepId path string true "Step ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/steps/{stepId} [delete]
func (h *ApplicationHandler) DeleteStep(c *fiber.Ctx) error {
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}
	if err := s.Builder.DeleteStep(c.Params("stepId")); err != nil {
		return h.respondWithStoreError(c, err, "step")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Step deleted",
	})
}

// RecaptureStep godoc
// @Summary Recapture a step screenshot
// @Description Captures the screenshot again at the step start. The previous screenshot is kept if the capture fails.
// @Tags steps
// @Param projectId path string true "Project ID"
// @Param stepId path string true "Step ID"
// @Success 202 {object} timeline.Step
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/steps/{stepId}/recapture [post]
func (h *ApplicationHandler) RecaptureStep(c *fiber.Ctx) error {
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}
	id := c.Params("stepId")
	if err := s.Builder.RecaptureStep(c.UserContext(), id); err != nil {
		return h.respondWithStoreError(c, err, "step")
	}
	step, err := s.Builder.Step(id)
	if err != nil {
		return h.respondWithStoreError(c, err, "step")
	}
	return utils.RespondWithJSON(c, fiber.StatusAccepted, step)
}

// FillScreenshots godoc
// @Summary Capture missing screenshots
// @Description Starts one capture per step without a screenshot and returns immediately.
// @Tags steps
// @Param projectId path string true "Project ID"
// @Success 202 {object} map[string]int
// @Router /api/v1/projects/{projectId}/steps/screenshots [post]
func (h *ApplicationHandler) FillScreenshots(c *fiber.Ctx) error {
	s, err := h.openSession(c)
	if err != nil {
		return h.respondWithStoreError(c, err, "editing session")
	}
	n := s.Builder.FillScreenshots(c.UserContext())
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{"dispatched": n})
}

// ResetSteps godoc
// @Summary Discard the editing session
// @Description Saves pending transcript edits and drops the session so the next request derives steps again.
// @Tags steps
// @Param projectId path string true "Project ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/projects/{projectId}/steps/reset [post]
func (h *ApplicationHandler) ResetSteps(c *fiber.Ctx) error {
	if h.Sessions == nil {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Editing sessions are not configured")
	}
	if err := h.Sessions.Close(c.UserContext(), c.Params("projectId")); err != nil {
		h.Logger.WithError(err).Warn("Pending transcript edit not saved on reset")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Editing session reset",
	})
}

// FallbackSteps godoc
// @Summary Fixed-interval steps
// @Description Splits a video of the given duration into windows of interval seconds (default 7).
// @Tags steps
// @Accept json
// @Produce json
// @Param body body FallbackRequest true "Duration and interval"
// @Success 200 {array} timeline.Step
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/steps/fallback [post]
func (h *ApplicationHandler) FallbackSteps(c *fiber.Ctx) error {
	req := new(FallbackRequest)
	if ok, err := h.parseBody(c, req); !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, timeline.Fallback(req.Duration, req.Interval))
}

// GenerateDocument godoc
// @Summary Generate the onboarding document
// @Description Queues a job that builds the steps, captures and uploads their screenshots.
// @Tags steps
// @Param projectId path string true "Project ID"
// @Success 202 {object} models.ProcessingJob
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/document [post]
func (h *ApplicationHandler) GenerateDocument(c *fiber.Ctx) error {
	return h.enqueue(c, jobs.NewDocumentJob(c.Params("projectId"), h.JobDeps))
}
