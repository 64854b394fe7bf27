package entities

import (
	"time"

	"github.com/google/uuid"
)

// QuestionProcessingStatus tracks the audio-answer pipeline for one question
type QuestionProcessingStatus string

const (
	QuestionProcessingRecording  QuestionProcessingStatus = "recording"
	QuestionProcessingUploading  QuestionProcessingStatus = "uploading"
	QuestionProcessingProcessing QuestionProcessingStatus = "processing"
	QuestionProcessingComplete   QuestionProcessingStatus = "complete"
	QuestionProcessingError      QuestionProcessingStatus = "error"
)

// ModuleQuestion is one interview question within a module. A question
// with a non-null response counts toward the answered threshold
// regardless of its processing status.
type ModuleQuestion struct {
	ID               uuid.UUID                `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ModuleID         uuid.UUID                `gorm:"type:uuid;not null;index" json:"module_id"`
	Question         string                   `gorm:"type:text;not null" json:"question"`
	Category         string                   `gorm:"type:varchar(100)" json:"category"`
	Order            int                      `gorm:"column:question_order;not null" json:"order"`
	Response         *string                  `gorm:"type:text" json:"response,omitempty"`
	RespondedAt      *time.Time               `json:"responded_at,omitempty"`
	AudioFileKey     *string                  `gorm:"type:varchar(512)" json:"audio_file_key,omitempty"`
	RawTranscript    *string                  `gorm:"type:text" json:"raw_transcript,omitempty"`
	NarrativeText    *string                  `gorm:"type:text" json:"narrative_text,omitempty"`
	ProcessingStatus QuestionProcessingStatus `gorm:"type:varchar(20);default:'recording'" json:"processing_status"`
	ErrorMessage     *string                  `gorm:"type:text" json:"error_message,omitempty"`
	Duration         *int                     `json:"duration,omitempty"` // seconds
	ContextSource    *string                  `gorm:"type:varchar(255)" json:"context_source,omitempty"`
	CreatedAt        time.Time                `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time                `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for ModuleQuestion
func (ModuleQuestion) TableName() string {
	return "module_questions"
}

// IsAnswered reports whether the question counts toward the threshold
func (q *ModuleQuestion) IsAnswered() bool {
	return q.Response != nil && *q.Response != ""
}

// SetResponse records a text answer
func (q *ModuleQuestion) SetResponse(response string) {
	now := time.Now()
	q.Response = &response
	q.RespondedAt = &now
	q.ProcessingStatus = QuestionProcessingComplete
	q.UpdatedAt = now
}

// MarkProcessingFailed records a transcription pipeline failure
func (q *ModuleQuestion) MarkProcessingFailed(errMsg string) {
	q.ProcessingStatus = QuestionProcessingError
	q.ErrorMessage = &errMsg
	q.UpdatedAt = time.Now()
}
