package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/mabel-app/mabel-backend/errors"
	"github.com/mabel-app/mabel-backend/internal/adapter/dto"
	"github.com/mabel-app/mabel-backend/internal/usecase/jobs"
	"github.com/mabel-app/mabel-backend/internal/usecase/project"
)

// Job handles background job polling requests
type Job struct {
	tracker        jobs.Tracker
	projectService project.Service
	logger         *zap.Logger
}

// NewJob creates a new job handler
func NewJob(tracker jobs.Tracker, projectService project.Service, logger *zap.Logger) *Job {
	return &Job{
		tracker:        tracker,
		projectService: projectService,
		logger:         logger,
	}
}

// Get returns the current status of a job
// @Summary Poll a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Success 200 {object} dto.JobResponse
// @Router /v1/jobs/{jobId} [get]
func (h *Job) Get(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	jobID, err := pathUUID(c, "jobId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	job, err := h.tracker.Get(c.Request().Context(), jobID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if job.UserID != userID {
		return respondError(c, h.logger, apperrors.ErrJobNotFound(jobID.String()))
	}

	return respond(c, http.StatusOK, dto.NewJobResponse(job))
}

// ListByProject returns a project's jobs, newest first
// @Summary List a project's jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {array} dto.JobResponse
// @Router /v1/projects/{id}/jobs [get]
func (h *Job) ListByProject(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	// ownership check rides on the project lookup
	if _, err := h.projectService.Get(c.Request().Context(), userID, projectID); err != nil {
		return respondError(c, h.logger, err)
	}

	jobList, err := h.tracker.ListByProject(c.Request().Context(), projectID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewJobListResponse(jobList))
}
