package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
)

// JobRepository defines the interface for job data access
type JobRepository interface {
	// Create creates a new job
	Create(ctx context.Context, job *entities.Job) error

	// FindByID retrieves a job by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Job, error)

	// ListByProject retrieves a project's jobs, newest first
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]entities.Job, error)

	// MarkRunning flips a pending job to running
	MarkRunning(ctx context.Context, jobID uuid.UUID) error

	// UpdateProgress records a progress checkpoint
	UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error

	// Complete marks a job completed with its output
	Complete(ctx context.Context, jobID uuid.UUID, output datatypes.JSON) error

	// Fail marks a job failed with an error message
	Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error
}
