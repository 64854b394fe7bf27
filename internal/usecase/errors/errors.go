package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrEmailAlreadyUsed   = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
)

// Project errors
var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrIntervieweeExists   = errors.New("interviewee already set for this project")
	ErrIntervieweeNotFound = errors.New("interviewee not found")
)

// Module lifecycle errors
var (
	ErrModuleNotFound       = errors.New("module not found")
	ErrInvalidTransition    = errors.New("invalid module status transition")
	ErrGenerationInFlight   = errors.New("chapter generation already in progress")
	ErrThresholdNotMet      = errors.New("answered question threshold not met")
	ErrNoQuestions          = errors.New("module has no questions")
	ErrNoChapter            = errors.New("module has no chapter yet")
	ErrLastModule           = errors.New("cannot delete the only module of a project")
	ErrAlreadyApproved      = errors.New("module already approved")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrChapterNotFound      = errors.New("chapter not found")
	ErrNoApprovedModules    = errors.New("project has no approved modules to export")
)

// Job errors
var (
	ErrJobNotFound = errors.New("job not found")
)
