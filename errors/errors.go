package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError là custom error type cho application
type AppError struct {
	Raw      error
	HTTPCode int
	Code     ErrorCode
	Message  string
	Details  map[string]string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrPermissionDenied(action string) AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_PERMISSION_DENIED,
		Message:  fmt.Sprintf("Permission denied: %s", action),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

// Authentication Errors

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid authentication token",
	}
}

func ErrInvalidCredentials() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_CREDENTIALS,
		Message:  "Invalid email or password",
	}
}

func ErrUserAlreadyExists(email string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_AUTH_USER_ALREADY_EXISTS,
		Message:  "User already exists",
	}.WithDetail("email", email)
}

func ErrInvalidRefreshToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_REFRESH_TOKEN,
		Message:  "Invalid refresh token",
	}
}

// Project / Module Errors

func ErrProjectNotFound(projectID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_PROJECT_NOT_FOUND,
		Message:  "Project not found",
	}.WithDetail("project_id", projectID)
}

func ErrModuleNotFound(moduleID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_MODULE_NOT_FOUND,
		Message:  "Module not found",
	}.WithDetail("module_id", moduleID)
}

func ErrModuleInvalidState(moduleID, currentState, requestedAction string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MODULE_INVALID_STATE,
		Message:  "Module is in the wrong state for this action",
	}.WithDetail("module_id", moduleID).
		WithDetail("current_state", currentState).
		WithDetail("requested_action", requestedAction)
}

func ErrGenerationInFlight(moduleID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_MODULE_GENERATION_IN_FLIGHT,
		Message:  "Chapter generation is already in progress for this module",
	}.WithDetail("module_id", moduleID)
}

func ErrAnsweredThresholdNotMet(answered, required int) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MODULE_THRESHOLD_NOT_MET,
		Message:  fmt.Sprintf("At least %d answered questions are required before generating a chapter (currently %d)", required, answered),
	}
}

func ErrLastModule(moduleID string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MODULE_LAST_MODULE,
		Message:  "Cannot delete the only module of a project",
	}.WithDetail("module_id", moduleID)
}

func ErrChapterNotFound(moduleID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_CHAPTER_NOT_FOUND,
		Message:  "No chapter has been generated for this module yet",
	}.WithDetail("module_id", moduleID)
}

func ErrQuestionNotFound(questionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_QUESTION_NOT_FOUND,
		Message:  "Question not found",
	}.WithDetail("question_id", questionID)
}

func ErrJobNotFound(jobID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_JOB_NOT_FOUND,
		Message:  "Job not found",
	}.WithDetail("job_id", jobID)
}

// AI Provider Errors

func ErrAIQuotaExceeded(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_AI_QUOTA_EXCEEDED,
		Message:  "AI provider quota exceeded, please try again later",
	}
}

func ErrAIRateLimited(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_AI_RATE_LIMITED,
		Message:  "AI provider rate limit hit, please try again in a moment",
	}
}

func ErrAIAuthFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_AI_AUTH_FAILED,
		Message:  "AI provider rejected our credentials",
	}
}

func ErrAITimeout(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusGatewayTimeout,
		Code:     ErrorCode_AI_TIMEOUT,
		Message:  "AI provider timed out",
	}
}

func ErrAIGenerationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_AI_GENERATION_FAILED,
		Message:  fmt.Sprintf("AI generation failed: %v", err),
	}
}

func ErrAITranscriptionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_AI_TRANSCRIPTION_FAILED,
		Message:  "Audio transcription failed",
	}
}

// Export / Integration Errors

func ErrExportFailed(format string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXPORT_FAILED,
		Message:  "Failed to export document",
	}.WithDetail("format", format)
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// ClassifyProviderError maps a raw AI provider error onto a specific AppError
// by matching well-known substrings of the provider's message. Unrecognized
// errors fall through to a generic 500 with the raw message kept for
// debuggability.
func ClassifyProviderError(err error) AppError {
	if err == nil {
		return ErrInternal(nil)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"):
		return ErrAIQuotaExceeded(err)
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return ErrAIRateLimited(err)
	case strings.Contains(msg, "api key"), strings.Contains(msg, "unauthorized"), strings.Contains(msg, "invalid authentication"):
		return ErrAIAuthFailed(err)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return ErrAITimeout(err)
	case strings.Contains(msg, "model"):
		return ErrInvalidArgument(fmt.Sprintf("AI model error: %v", err))
	default:
		return ErrAIGenerationFailed(err)
	}
}
