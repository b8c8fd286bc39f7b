package handlers

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/ffmpeg"
	"github.com/erinovdaniil/onboarding/internal/storage"
	"github.com/erinovdaniil/onboarding/utils"
)

// GetFrame godoc
// @Summary Capture a video frame
// @Description Decodes the frame of the project video at t seconds and returns it as JPEG. Frames are cached by position.
// @Tags frames
// @Produce image/jpeg
// @Param projectId path string true "Project ID"
// @Param t query number true "Position in seconds"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/v1/projects/{projectId}/frames [get]
func (h *ApplicationHandler) GetFrame(c *fiber.Ctx) error {
	if h.Videos == nil || h.Frames == nil {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Frame capture is not configured")
	}
	projectID := c.Params("projectId")
	t := c.QueryFloat("t", -1)
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Query parameter t must be a non-negative number of seconds")
	}
	log := h.Logger.WithFields(logrus.Fields{"project_id": projectID, "t": t})

	url, err := h.Videos.VideoURL(c.UserContext(), projectID)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Project video not found")
		}
		log.WithError(err).Error("Could not sign video URL")
		return utils.RespondWithError(c, fiber.StatusBadGateway, "Could not access project video")
	}

	img, err := h.Frames.CaptureFrame(c.UserContext(), url, t)
	if err != nil {
		if errors.Is(err, ffmpeg.ErrCaptureTimeout) {
			return utils.RespondWithError(c, fiber.StatusGatewayTimeout, "Frame capture timed out")
		}
		log.WithError(err).Warn("Frame capture failed")
		return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, "Could not capture frame")
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Status(fiber.StatusOK).Send(img)
}
