package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/mabel-app/mabel-backend/errors"
	"github.com/mabel-app/mabel-backend/internal/adapter/dto"
	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/usecase/lifecycle"
)

// maxUploadBytes caps audio and illustration uploads
const maxUploadBytes = 100 << 20 // 100 MB

// Module handles memoir module HTTP requests
type Module struct {
	lifecycleService lifecycle.Service
	logger           *zap.Logger
}

// NewModule creates a new module handler
func NewModule(lifecycleService lifecycle.Service, logger *zap.Logger) *Module {
	return &Module{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Create starts a module and kicks off question generation
// @Summary Create a module and generate its questions
// @Tags modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body dto.CreateModuleRequest true "Module details"
// @Success 202 {object} dto.ModuleJobResponse
// @Router /v1/projects/{id}/modules [post]
func (h *Module) Create(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.CreateModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	module, job, err := h.lifecycleService.CreateModule(c.Request().Context(), userID, projectID, req.Title, req.Theme)
	if err != nil {
		return respondProviderError(c, h.logger, err)
	}

	return respond(c, http.StatusAccepted, dto.ModuleJobResponse{
		Module: dto.NewModuleResponse(module),
		Job:    dto.NewJobResponse(job),
	})
}

// List returns a project's modules
// @Summary List a project's modules
// @Tags modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {array} dto.ModuleResponse
// @Router /v1/projects/{id}/modules [get]
func (h *Module) List(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	projectID, err := pathUUID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	modules, err := h.lifecycleService.ListModules(c.Request().Context(), userID, projectID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewModuleListResponse(modules))
}

// Get returns a module with questions and its current chapter
// @Summary Get a module
// @Tags modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} dto.ModuleResponse
// @Router /v1/projects/{id}/modules/{moduleId} [get]
func (h *Module) Get(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	module, err := h.lifecycleService.GetModule(c.Request().Context(), userID, moduleID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewModuleResponse(module))
}

// Delete removes a module and renumbers the remaining ones
// @Summary Delete a module
// @Tags modules
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Success 204
// @Router /v1/projects/{id}/modules/{moduleId} [delete]
func (h *Module) Delete(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.lifecycleService.DeleteModule(c.Request().Context(), userID, moduleID); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GenerateChapter requests chapter generation for a module
// @Summary Generate the module's chapter
// @Tags chapters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.GenerateChapterRequest false "Narrative settings"
// @Success 202 {object} dto.ChapterJobResponse
// @Router /v1/projects/{id}/modules/{moduleId}/chapter/generate [post]
func (h *Module) GenerateChapter(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.GenerateChapterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	chapter, job, err := h.lifecycleService.RequestChapterGeneration(
		c.Request().Context(), userID, moduleID, req.Settings.ToSettings(),
	)
	if err != nil {
		return respondProviderError(c, h.logger, err)
	}

	return respond(c, http.StatusAccepted, dto.ChapterJobResponse{
		Chapter: *dto.NewChapterResponse(chapter),
		Job:     dto.NewJobResponse(job),
	})
}

// RegenerateChapter creates a new chapter version from the same answers
// @Summary Regenerate the module's chapter
// @Tags chapters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.RegenerateChapterRequest false "Feedback and overrides"
// @Success 202 {object} dto.ChapterJobResponse
// @Router /v1/projects/{id}/modules/{moduleId}/chapter/regenerate [post]
func (h *Module) RegenerateChapter(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.RegenerateChapterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	var override *entities.NarrativeSettings
	if req.Settings != nil {
		s := req.Settings.ToSettings()
		override = &s
	}

	chapter, job, err := h.lifecycleService.RegenerateChapter(
		c.Request().Context(), userID, moduleID, req.Feedback, override,
	)
	if err != nil {
		return respondProviderError(c, h.logger, err)
	}

	return respond(c, http.StatusAccepted, dto.ChapterJobResponse{
		Chapter: *dto.NewChapterResponse(chapter),
		Job:     dto.NewJobResponse(job),
	})
}

// Approve locks the module's current chapter
// @Summary Approve a module
// @Tags modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} dto.ModuleResponse
// @Router /v1/projects/{id}/modules/{moduleId}/approve [post]
func (h *Module) Approve(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	module, err := h.lifecycleService.ApproveModule(c.Request().Context(), userID, moduleID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewModuleResponse(module))
}

// GenerateImage requests an illustration for the current chapter
// @Summary Generate a chapter illustration
// @Tags chapters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.GenerateImageRequest false "Optional prompt"
// @Success 202 {object} dto.JobResponse
// @Router /v1/projects/{id}/modules/{moduleId}/chapter/image/generate [post]
func (h *Module) GenerateImage(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.GenerateImageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	job, err := h.lifecycleService.GenerateIllustration(c.Request().Context(), userID, moduleID, req.Prompt)
	if err != nil {
		return respondProviderError(c, h.logger, err)
	}

	return respond(c, http.StatusAccepted, dto.NewJobResponse(job))
}

// UploadImage stores a user-provided illustration on the current chapter
// @Summary Upload a chapter illustration
// @Tags chapters
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.ChapterResponse
// @Router /v1/projects/{id}/modules/{moduleId}/chapter/image/upload [post]
func (h *Module) UploadImage(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("image file is required"))
	}
	if file.Size > maxUploadBytes {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("image file too large"))
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer src.Close()

	chapter, err := h.lifecycleService.UploadIllustration(
		c.Request().Context(), userID, moduleID,
		src, file.Filename, file.Size, file.Header.Get("Content-Type"),
	)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewChapterResponse(chapter))
}

// ExportChapter downloads the module's current chapter as a PDF
// @Summary Export the chapter as PDF
// @Tags chapters
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {file} binary
// @Router /v1/projects/{id}/modules/{moduleId}/chapter/export [get]
func (h *Module) ExportChapter(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	data, filename, err := h.lifecycleService.ExportChapter(c.Request().Context(), userID, moduleID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
