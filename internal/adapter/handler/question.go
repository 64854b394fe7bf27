package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/mabel-app/mabel-backend/errors"
	"github.com/mabel-app/mabel-backend/internal/adapter/dto"
	"github.com/mabel-app/mabel-backend/internal/usecase/lifecycle"
)

// Question handles interview question HTTP requests
type Question struct {
	lifecycleService lifecycle.Service
	logger           *zap.Logger
}

// NewQuestion creates a new question handler
func NewQuestion(lifecycleService lifecycle.Service, logger *zap.Logger) *Question {
	return &Question{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Answer records a typed response to a question
// @Summary Answer an interview question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Param questionId path string true "Question ID"
// @Param request body dto.AnswerQuestionRequest true "Response text"
// @Success 200 {object} dto.QuestionResponse
// @Router /v1/projects/{id}/modules/{moduleId}/questions/{questionId} [patch]
func (h *Question) Answer(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	questionID, err := pathUUID(c, "questionId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.AnswerQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	question, err := h.lifecycleService.AnswerQuestion(c.Request().Context(), userID, moduleID, questionID, req.Response)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, dto.NewQuestionResponse(question))
}

// AnswerAudio uploads a spoken answer for transcription
// @Summary Upload an audio answer
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param moduleId path string true "Module ID"
// @Param questionId path string true "Question ID"
// @Param audio formData file true "Audio file"
// @Success 202 {object} dto.JobResponse
// @Router /v1/projects/{id}/modules/{moduleId}/questions/{questionId}/audio [post]
func (h *Question) AnswerAudio(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	moduleID, err := pathUUID(c, "moduleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	questionID, err := pathUUID(c, "questionId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("audio file is required"))
	}
	if file.Size > maxUploadBytes {
		return respondError(c, h.logger, apperrors.ErrInvalidArgument("audio file too large"))
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer src.Close()

	job, err := h.lifecycleService.AnswerQuestionWithAudio(
		c.Request().Context(), userID, moduleID, questionID,
		src, file.Filename, file.Size, file.Header.Get("Content-Type"),
	)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusAccepted, dto.NewJobResponse(job))
}
