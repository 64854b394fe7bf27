package errors

// ErrorCode identifies an error category in API responses
type ErrorCode string

const (
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS   ErrorCode = "ALREADY_EXISTS"
	ErrorCode_PERMISSION_DENIED ErrorCode = "PERMISSION_DENIED"
	ErrorCode_UNAUTHENTICATED  ErrorCode = "UNAUTHENTICATED"
	ErrorCode_CONFLICT         ErrorCode = "CONFLICT"

	ErrorCode_AUTH_INVALID_TOKEN         ErrorCode = "AUTH_INVALID_TOKEN"
	ErrorCode_AUTH_TOKEN_EXPIRED         ErrorCode = "AUTH_TOKEN_EXPIRED"
	ErrorCode_AUTH_INVALID_CREDENTIALS   ErrorCode = "AUTH_INVALID_CREDENTIALS"
	ErrorCode_AUTH_USER_ALREADY_EXISTS   ErrorCode = "AUTH_USER_ALREADY_EXISTS"
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN ErrorCode = "AUTH_INVALID_REFRESH_TOKEN"

	ErrorCode_PROJECT_NOT_FOUND ErrorCode = "PROJECT_NOT_FOUND"
	ErrorCode_MODULE_NOT_FOUND  ErrorCode = "MODULE_NOT_FOUND"
	ErrorCode_MODULE_INVALID_STATE ErrorCode = "MODULE_INVALID_STATE"
	ErrorCode_MODULE_GENERATION_IN_FLIGHT ErrorCode = "MODULE_GENERATION_IN_FLIGHT"
	ErrorCode_MODULE_THRESHOLD_NOT_MET    ErrorCode = "MODULE_THRESHOLD_NOT_MET"
	ErrorCode_MODULE_LAST_MODULE          ErrorCode = "MODULE_LAST_MODULE"

	ErrorCode_CHAPTER_NOT_FOUND ErrorCode = "CHAPTER_NOT_FOUND"
	ErrorCode_QUESTION_NOT_FOUND ErrorCode = "QUESTION_NOT_FOUND"
	ErrorCode_JOB_NOT_FOUND      ErrorCode = "JOB_NOT_FOUND"

	ErrorCode_AI_QUOTA_EXCEEDED   ErrorCode = "AI_QUOTA_EXCEEDED"
	ErrorCode_AI_RATE_LIMITED     ErrorCode = "AI_RATE_LIMITED"
	ErrorCode_AI_AUTH_FAILED      ErrorCode = "AI_AUTH_FAILED"
	ErrorCode_AI_TIMEOUT          ErrorCode = "AI_TIMEOUT"
	ErrorCode_AI_GENERATION_FAILED ErrorCode = "AI_GENERATION_FAILED"
	ErrorCode_AI_TRANSCRIPTION_FAILED ErrorCode = "AI_TRANSCRIPTION_FAILED"

	ErrorCode_EXPORT_FAILED              ErrorCode = "EXPORT_FAILED"
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INVALID_PAYLOAD            ErrorCode = "INVALID_PAYLOAD"
)

// String returns the code as a string
func (c ErrorCode) String() string {
	return string(c)
}
