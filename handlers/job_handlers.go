package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/erinovdaniil/onboarding/utils"
)

// GetJobStatus godoc
// @Summary Get job status
// @Description Retrieves the status, and once completed the result, of a background job.
// @Tags jobs
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} models.ProcessingJob
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/jobs/{jobId} [get]
func (h *ApplicationHandler) GetJobStatus(c *fiber.Ctx) error {
	jobIDStr := c.Params("jobId")
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		h.Logger.WithField("job_id", jobIDStr).Warn("Invalid job ID format")
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	job, ok := h.Tracker.Get(jobID)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// ListProjectJobs godoc
// @Summary List project jobs
// @Tags jobs
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {array} models.ProcessingJob
// @Router /api/v1/projects/{projectId}/jobs [get]
func (h *ApplicationHandler) ListProjectJobs(c *fiber.Ctx) error {
	return utils.RespondWithJSON(c, fiber.StatusOK, h.Tracker.List(c.Params("projectId")))
}
