package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/erinovdaniil/onboarding/models"
	"github.com/erinovdaniil/onboarding/utils"
)

// ProjectSuccessResponse defines the structure for a successful response for a single project.
type ProjectSuccessResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    models.Project `json:"data"`
}

// ProjectListResponse defines the structure for a successful project listing.
type ProjectListResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Data    []models.Project `json:"data"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GetProject godoc
// @Summary Get a project
// @Description Retrieves a project, including its stored zoom configuration.
// @Tags projects
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} ProjectSuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/projects/{projectId} [get]
func (h *ApplicationHandler) GetProject(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	h.Logger.WithField("project_id", projectID).Info("Received request to get project")

	project, err := h.Store.GetProject(c.UserContext(), projectID)
	if err != nil {
		return h.respondWithStoreError(c, err, "project")
	}
	return utils.RespondWithMessage(c, fiber.StatusOK, "Project retrieved successfully", project)
}

// ListProjects godoc
// @Summary List projects
// @Description Lists every project, newest first.
// @Tags projects
// @Produce json
// @Success 200 {object} ProjectListResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/projects [get]
func (h *ApplicationHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Store.ListProjects(c.UserContext())
	if err != nil {
		h.Logger.WithError(err).Error("Failed to list projects")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list projects")
	}
	return utils.RespondWithMessage(c, fiber.StatusOK, "Projects retrieved successfully", projects)
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Closes the project's editing session and deletes the project with its transcripts.
// @Tags projects
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/projects/{projectId} [delete]
func (h *ApplicationHandler) DeleteProject(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	log := h.Logger.WithField("project_id", projectID)

	if h.Sessions != nil {
		if err := h.Sessions.Close(c.UserContext(), projectID); err != nil {
			log.WithError(err).Warn("Pending transcript edits dropped with the project")
		}
	}
	if err := h.Store.DeleteProject(c.UserContext(), projectID); err != nil {
		return h.respondWithStoreError(c, err, "project")
	}
	log.Info("Project deleted")
	return utils.RespondWithMessage(c, fiber.StatusOK, "Project deleted successfully", nil)
}
