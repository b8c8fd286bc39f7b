package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/jobs"
	"github.com/erinovdaniil/onboarding/internal/session"
	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/internal/worker"
	"github.com/erinovdaniil/onboarding/utils"
)

// VideoSource resolves the signed URL of a project's uploaded video.
type VideoSource interface {
	VideoURL(ctx context.Context, projectID string) (string, error)
}

// FrameCapturer decodes a single frame of a video URL.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error)
}

// JobQueue accepts background jobs. *worker.Dispatcher satisfies it.
type JobQueue interface {
	Submit(job worker.Job) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger   *logrus.Logger
	Store    db.Store
	Sessions *session.Manager
	Videos   VideoSource
	Frames   FrameCapturer
	Queue    JobQueue
	Tracker  *jobs.Tracker
	JobDeps  jobs.Deps
	Validate *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
// Logger, Tracker and Validate are filled in when left empty.
func NewApplicationHandler(h ApplicationHandler) *ApplicationHandler {
	if h.Logger == nil {
		h.Logger = logrus.New()
	}
	if h.Tracker == nil {
		h.Tracker = jobs.NewTracker(h.Logger)
	}
	if h.Validate == nil {
		h.Validate = validator.New()
	}
	return &h
}

// RegisterRoutes mounts every API route on router.
func (h *ApplicationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)

	apiV1 := router.Group("/api/v1")

	apiV1.Get("/projects", h.ListProjects)
	apiV1.Get("/projects/:projectId", h.GetProject)
	apiV1.Delete("/projects/:projectId", h.DeleteProject)

	// Transcript routes
	apiV1.Get("/projects/:projectId/transcript", h.GetTranscript)
	apiV1.Put("/projects/:projectId/transcript", h.UpdateTranscript)
	apiV1.Get("/projects/:projectId/transcript/status", h.GetTranscriptSaveStatus)
	apiV1.Get("/projects/:projectId/phrases", h.GetPhrases)
	apiV1.Post("/projects/:projectId/retranscribe", h.Retranscribe)
	apiV1.Post("/transcripts/segment", h.SegmentTranscript)
	apiV1.Post("/phrases", h.GroupPhrases)

	// Step routes within a project editing session
	steps := apiV1.Group("/projects/:projectId/steps")
	steps.Get("", h.ListSteps)
	steps.Post("", h.InsertStep)
	steps.Post("/screenshots", h.FillScreenshots)
	steps.Post("/reset", h.ResetSteps)
	steps.Patch("/:stepId", h.UpdateStep)
	steps.Delete("/:stepId", h.DeleteStep)
	steps.Post("/:stepId/recapture", h.RecaptureStep)
	apiV1.Post("/steps/fallback", h.FallbackSteps)
	apiV1.Post("/projects/:projectId/document", h.GenerateDocument)

	// Zoom effect routes
	apiV1.Get("/projects/:projectId/zoom", h.GetZoomConfig)
	apiV1.Put("/projects/:projectId/zoom", h.SaveZoomConfig)
	apiV1.Post("/effects/region", h.NewZoomRegion)
	apiV1.Post("/effects/sample", h.SampleZoom)
	apiV1.Post("/effects/drag", h.DragZoom)
	apiV1.Post("/effects/detect", h.DetectZoom)

	// Frames
	apiV1.Get("/projects/:projectId/frames", h.GetFrame)

	// Jobs
	apiV1.Get("/jobs/:jobId", h.GetJobStatus)
	apiV1.Get("/projects/:projectId/jobs", h.ListProjectJobs)
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *ApplicationHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"message": "Onboarding API is healthy",
	})
}

// parseBody decodes and validates the request body into v, writing the
// error response itself. ok is false when the handler should return.
func (h *ApplicationHandler) parseBody(c *fiber.Ctx, v interface{}) (bool, error) {
	if err := c.BodyParser(v); err != nil {
		h.Logger.WithError(err).Warn("Cannot parse request body")
		return false, utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request JSON: "+err.Error())
	}
	if err := h.Validate.Struct(v); err != nil {
		return false, utils.RespondWithValidationError(c, err)
	}
	return true, nil
}

// openSession returns the editing session of the :projectId route param.
func (h *ApplicationHandler) openSession(c *fiber.Ctx) (*session.Session, error) {
	if h.Sessions == nil {
		return nil, errors.New("editing sessions are not configured")
	}
	return h.Sessions.Open(c.UserContext(), c.Params("projectId"))
}

// respondWithStoreError maps store errors onto HTTP statuses.
func (h *ApplicationHandler) respondWithStoreError(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, db.ErrRecordNotFound):
		return utils.RespondWithError(c, fiber.StatusNotFound, what+" not found")
	case errors.Is(err, timeline.ErrStepNotFound):
		return utils.RespondWithError(c, fiber.StatusNotFound, "Step not found")
	case errors.Is(err, context.DeadlineExceeded):
		return utils.RespondWithError(c, fiber.StatusGatewayTimeout, "Upstream timed out")
	}
	h.Logger.WithError(err).WithField("project_id", c.Params("projectId")).Errorf("Could not load %s", what)
	return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load "+what)
}
