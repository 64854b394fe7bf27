package dto

import (
	"encoding/json"
	"time"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
)

// JobResponse is the polling view of a tracked job
type JobResponse struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Progress    int             `json:"progress"`
	Output      json.RawMessage `json:"output,omitempty"`
	Error       *string         `json:"error,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewJobResponse maps a job entity to its polling view
func NewJobResponse(j *entities.Job) JobResponse {
	resp := JobResponse{
		ID:          j.ID.String(),
		ProjectID:   j.ProjectID.String(),
		Type:        string(j.Type),
		Status:      string(j.Status),
		Progress:    j.Progress,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
	}
	if len(j.Output) > 0 {
		resp.Output = json.RawMessage(j.Output)
	}
	return resp
}

// NewJobListResponse maps a slice of jobs
func NewJobListResponse(jobList []entities.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobList))
	for i := range jobList {
		out = append(out, NewJobResponse(&jobList[i]))
	}
	return out
}
