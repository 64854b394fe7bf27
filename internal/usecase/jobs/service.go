package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
)

// Progress checkpoints reported by long-running operations. These are
// coarse UI markers, not throughput estimates.
const (
	ProgressStarted    = 25
	ProgressProviderOK = 50
	ProgressPersisting = 75
	ProgressDone       = 100
)

// Tracker records the lifecycle of long-running operations so clients
// can poll for their outcome
type Tracker interface {
	// Begin creates a pending job for a project-scoped operation
	Begin(ctx context.Context, projectID, userID uuid.UUID, jobType entities.JobType, input interface{}) (*entities.Job, error)

	// Start flips a pending job to running
	Start(ctx context.Context, jobID uuid.UUID) error

	// Checkpoint records a progress value
	Checkpoint(ctx context.Context, jobID uuid.UUID, progress int)

	// Succeed marks a job completed with an output document
	Succeed(ctx context.Context, jobID uuid.UUID, output interface{}) error

	// Fail marks a job failed with an error message
	Fail(ctx context.Context, jobID uuid.UUID, cause error) error

	// Get retrieves a job, enforcing project ownership through the caller
	Get(ctx context.Context, jobID uuid.UUID) (*entities.Job, error)

	// ListByProject retrieves a project's jobs, newest first
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]entities.Job, error)
}

type tracker struct {
	jobRepo repositories.JobRepository
	logger  *zap.Logger
}

// NewTracker constructs a job tracker
func NewTracker(jobRepo repositories.JobRepository, logger *zap.Logger) Tracker {
	return &tracker{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

func (t *tracker) Begin(ctx context.Context, projectID, userID uuid.UUID, jobType entities.JobType, input interface{}) (*entities.Job, error) {
	var payload datatypes.JSON
	if input != nil {
		b, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal job input: %w", err)
		}
		payload = datatypes.JSON(b)
	}

	job := entities.NewJob(projectID, userID, jobType, payload)
	if err := t.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if t.logger != nil {
		t.logger.Info("📋 Job created",
			zap.String("job_id", job.ID.String()),
			zap.String("project_id", projectID.String()),
			zap.String("type", string(jobType)),
		)
	}

	return job, nil
}

func (t *tracker) Start(ctx context.Context, jobID uuid.UUID) error {
	if err := t.jobRepo.MarkRunning(ctx, jobID); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return nil
}

// Checkpoint is best-effort: a failed progress write never fails the job
func (t *tracker) Checkpoint(ctx context.Context, jobID uuid.UUID, progress int) {
	if err := t.jobRepo.UpdateProgress(ctx, jobID, progress); err != nil {
		if t.logger != nil {
			t.logger.Warn("⚠️ Failed to record job progress",
				zap.String("job_id", jobID.String()),
				zap.Int("progress", progress),
				zap.Error(err),
			)
		}
	}
}

func (t *tracker) Succeed(ctx context.Context, jobID uuid.UUID, output interface{}) error {
	var payload datatypes.JSON
	if output != nil {
		b, err := json.Marshal(output)
		if err != nil {
			return fmt.Errorf("failed to marshal job output: %w", err)
		}
		payload = datatypes.JSON(b)
	}

	if err := t.jobRepo.Complete(ctx, jobID, payload); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	if t.logger != nil {
		t.logger.Info("✅ Job completed",
			zap.String("job_id", jobID.String()),
		)
	}
	return nil
}

func (t *tracker) Fail(ctx context.Context, jobID uuid.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	if err := t.jobRepo.Fail(ctx, jobID, msg); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	if t.logger != nil {
		t.logger.Error("❌ Job failed",
			zap.String("job_id", jobID.String()),
			zap.String("error", msg),
		)
	}
	return nil
}

func (t *tracker) Get(ctx context.Context, jobID uuid.UUID) (*entities.Job, error) {
	job, err := t.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, uerr.ErrJobNotFound
	}
	return job, nil
}

func (t *tracker) ListByProject(ctx context.Context, projectID uuid.UUID) ([]entities.Job, error) {
	return t.jobRepo.ListByProject(ctx, projectID)
}
