package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobStatus represents the lifecycle of one long-running operation
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobType enumerates the long-running operations we track
type JobType string

const (
	JobTypeGenerateQuestions       JobType = "generate_questions"
	JobTypeTranscribeAudio         JobType = "transcribe_audio"
	JobTypeGenerateNarrative       JobType = "generate_narrative"
	JobTypeGenerateModuleQuestions JobType = "generate_module_questions"
	JobTypeGenerateModuleChapter   JobType = "generate_module_chapter"
	JobTypeGenerateIllustration    JobType = "generate_illustration"
)

// Job is a tracked record of one long-running operation. Jobs are never
// retried or expired server-side; a caller resubmits the action, which
// creates a new job. Progress values are coarse UI checkpoints, not
// throughput estimates.
type Job struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        JobType        `gorm:"type:varchar(50);not null;index" json:"type"`
	Status      JobStatus      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Progress    int            `gorm:"default:0;check:progress >= 0 AND progress <= 100" json:"progress"`
	Input       datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"input,omitempty"`
	Output      datatypes.JSON `gorm:"type:jsonb" json:"output,omitempty"`
	Error       *string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Job
func (Job) TableName() string {
	return "jobs"
}

// NewJob creates a job in pending state
func NewJob(projectID, userID uuid.UUID, jobType JobType, input datatypes.JSON) *Job {
	if input == nil {
		input = datatypes.JSON([]byte("{}"))
	}
	return &Job{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Type:      jobType,
		Status:    JobStatusPending,
		Input:     input,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsTerminal reports whether the job reached a final status
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// MarkAsRunning marks the job running
func (j *Job) MarkAsRunning() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted marks the job completed with its output document
func (j *Job) MarkAsCompleted(output datatypes.JSON) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.Output = output
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks the job failed with an error message
func (j *Job) MarkAsFailed(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.Error = &errMsg
	j.CompletedAt = &now
	j.UpdatedAt = now
}
