package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mabel-app/mabel-backend/internal/adapter/dto"
	"github.com/mabel-app/mabel-backend/internal/usecase/lifecycle"
	"github.com/mabel-app/mabel-backend/internal/usecase/project"
)

// Project handles memoir project HTTP requests
type Project struct {
	projectService   project.Service
	lifecycleService lifecycle.Service
	logger           *zap.Logger
}

// NewProject creates a new project handler
func NewProject(projectService project.Service, lifecycleService lifecycle.Service, logger *zap.Logger) *Project {
	return &Project{
		projectService:   projectService,
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Create starts a new memoir project
// @Summary Create a memoir project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProjectRequest true "Project details"
// @Success 201 {object} dto.ProjectResponse
// @Router /v1/projects [post]
func (h *Project) Create(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	p, err := h.projectService.Create(c.Request().Context(), userID, req.Title)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusCreated, dto.NewProjectResponse(p))
}

// List returns the caller's projects
// @Summary List projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProjectResponse
// @Router /v1/projects [get]
func (h *Project) List(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projects, err := h.projectService.List(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewProjectListResponse(projects))
}

// Get returns one project with its interviewee
// @Summary Get a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} dto.ProjectResponse
// @Router /v1/projects/{id} [get]
func (h *Project) Get(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	p, err := h.projectService.Get(c.Request().Context(), userID, projectID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewProjectResponse(p))
}

// Delete removes a project and everything under it
// @Summary Delete a project
// @Tags projects
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 204
// @Router /v1/projects/{id} [delete]
func (h *Project) Delete(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.projectService.Delete(c.Request().Context(), userID, projectID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AddInterviewee stores the memoir subject profile
// @Summary Add the interviewee profile
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body dto.CreateIntervieweeRequest true "Interviewee details"
// @Success 201 {object} dto.IntervieweeResponse
// @Router /v1/projects/{id}/interviewee [post]
func (h *Project) AddInterviewee(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.CreateIntervieweeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	interviewee, err := h.projectService.AddInterviewee(
		c.Request().Context(), userID, projectID,
		req.Name, req.Relationship, req.BirthYear, req.Topics,
	)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusCreated, dto.NewIntervieweeResponse(interviewee))
}

// Export compiles the approved modules into a memoir PDF
// @Summary Export the memoir as PDF
// @Tags projects
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {file} binary
// @Router /v1/projects/{id}/export [get]
func (h *Project) Export(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	data, filename, err := h.lifecycleService.ExportProject(c.Request().Context(), userID, projectID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
