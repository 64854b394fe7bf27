package handler

import (
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/mabel-app/mabel-backend/errors"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
)

// UserIDKey is the echo context key the auth middleware fills with the
// session user's id
const UserIDKey = "user_id"

// respond sends the success envelope
func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, map[string]interface{}{"data": data})
}

// respondError maps an error to the JSON error envelope. Sentinel errors
// from the usecase layer and AppErrors both carry their own status; a
// bare error from an AI provider is pattern-matched to one.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr apperrors.AppError
	if stdErrors.As(err, &appErr) {
		return writeAppError(c, logger, appErr)
	}

	if appErr, ok := mapSentinel(err); ok {
		return writeAppError(c, logger, appErr)
	}

	return writeAppError(c, logger, apperrors.ErrInternal(err))
}

// respondProviderError maps AI provider failures by message pattern
func respondProviderError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr apperrors.AppError
	if stdErrors.As(err, &appErr) {
		return writeAppError(c, logger, appErr)
	}
	if appErr, ok := mapSentinel(err); ok {
		return writeAppError(c, logger, appErr)
	}
	return writeAppError(c, logger, apperrors.ClassifyProviderError(err))
}

func writeAppError(c echo.Context, logger *zap.Logger, appErr apperrors.AppError) error {
	if appErr.HTTPCode >= 500 && logger != nil {
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("code", appErr.Code.String()),
			zap.Error(appErr.Raw),
		)
	}

	body := map[string]interface{}{
		"error": appErr.Message,
		"code":  appErr.Code,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.JSON(appErr.HTTPCode, body)
}

// mapSentinel translates usecase sentinel errors to AppErrors
func mapSentinel(err error) (apperrors.AppError, bool) {
	switch {
	case stdErrors.Is(err, uerr.ErrInvalidInput):
		return apperrors.ErrInvalidArgument(err.Error()), true
	case stdErrors.Is(err, uerr.ErrUnauthorized):
		return apperrors.ErrUnauthenticated(), true
	case stdErrors.Is(err, uerr.ErrForbidden):
		return apperrors.ErrPermissionDenied("resource is owned by another user"), true
	case stdErrors.Is(err, uerr.ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials(), true
	case stdErrors.Is(err, uerr.ErrTokenInvalid), stdErrors.Is(err, uerr.ErrTokenExpired):
		return apperrors.ErrInvalidRefreshToken(), true
	case stdErrors.Is(err, uerr.ErrEmailAlreadyUsed):
		return apperrors.ErrUserAlreadyExists(""), true
	case stdErrors.Is(err, uerr.ErrUserNotFound):
		return apperrors.ErrNotFound("user"), true
	case stdErrors.Is(err, uerr.ErrProjectNotFound):
		return apperrors.ErrProjectNotFound(""), true
	case stdErrors.Is(err, uerr.ErrIntervieweeExists):
		return apperrors.ErrInvalidArgument("interviewee already set for this project"), true
	case stdErrors.Is(err, uerr.ErrIntervieweeNotFound):
		return apperrors.ErrInvalidArgument("project has no interviewee profile yet"), true
	case stdErrors.Is(err, uerr.ErrModuleNotFound):
		return apperrors.ErrModuleNotFound(""), true
	case stdErrors.Is(err, uerr.ErrQuestionNotFound):
		return apperrors.ErrQuestionNotFound(""), true
	case stdErrors.Is(err, uerr.ErrChapterNotFound), stdErrors.Is(err, uerr.ErrNoChapter):
		return apperrors.ErrChapterNotFound(""), true
	case stdErrors.Is(err, uerr.ErrJobNotFound):
		return apperrors.ErrJobNotFound(""), true
	case stdErrors.Is(err, uerr.ErrGenerationInFlight):
		return apperrors.ErrGenerationInFlight(""), true
	case stdErrors.Is(err, uerr.ErrThresholdNotMet):
		return apperrors.ErrInvalidArgument("not enough questions answered to generate a chapter"), true
	case stdErrors.Is(err, uerr.ErrNoQuestions):
		return apperrors.ErrInvalidArgument("module has no questions yet"), true
	case stdErrors.Is(err, uerr.ErrInvalidTransition):
		return apperrors.ErrModuleInvalidState("", "", ""), true
	case stdErrors.Is(err, uerr.ErrAlreadyApproved):
		return apperrors.ErrModuleInvalidState("", "approved", "approve"), true
	case stdErrors.Is(err, uerr.ErrLastModule):
		return apperrors.ErrLastModule(""), true
	case stdErrors.Is(err, uerr.ErrNoApprovedModules):
		return apperrors.ErrInvalidArgument("project has no approved modules to export"), true
	}
	return apperrors.AppError{}, false
}

// sessionUserID reads the authenticated user id set by the middleware
func sessionUserID(c echo.Context) (uuid.UUID, error) {
	raw := c.Get(UserIDKey)
	if raw == nil {
		return uuid.Nil, apperrors.ErrUnauthenticated()
	}
	switch v := raw.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, apperrors.ErrUnauthenticated()
		}
		return id, nil
	}
	return uuid.Nil, apperrors.ErrUnauthenticated()
}

// pathUUID parses a uuid path parameter
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidArgument("invalid " + name)
	}
	return id, nil
}

// bindAndValidate binds the request body and runs struct validation,
// returning the first validation message as a 400
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ErrInvalidPayload()
	}
	if err := c.Validate(req); err != nil {
		msg := err.Error()
		if idx := strings.Index(msg, "Error:"); idx != -1 {
			msg = msg[idx+len("Error:"):]
		}
		return apperrors.ErrInvalidArgument(strings.TrimSpace(msg))
	}
	return nil
}
