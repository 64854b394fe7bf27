package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
)

// JobRepository handles job data operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) repositories.JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(ctx context.Context, job *entities.Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID retrieves a job by its ID
func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	var job entities.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListByProject retrieves a project's jobs, newest first
func (r *JobRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]entities.Job, error) {
	var jobs []entities.Job
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkRunning flips a pending job to running
func (r *JobRepository) MarkRunning(ctx context.Context, jobID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.JobStatusRunning,
			"started_at": now,
			"updated_at": now,
		}).Error
}

// UpdateProgress records a progress checkpoint
func (r *JobRepository) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"progress":   progress,
			"updated_at": time.Now(),
		}).Error
}

// Complete marks a job completed with its output
func (r *JobRepository) Complete(ctx context.Context, jobID uuid.UUID, output datatypes.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.JobStatusCompleted,
			"progress":     100,
			"output":       output,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// Fail marks a job failed with an error message
func (r *JobRepository) Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.JobStatusFailed,
			"error":        errMsg,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}
