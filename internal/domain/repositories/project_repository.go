package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mabel-app/mabel-backend/internal/domain/entities"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *entities.Project) error

	// FindByID retrieves a project by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error)

	// FindByIDWithInterviewee retrieves a project with its interviewee preloaded
	FindByIDWithInterviewee(ctx context.Context, id uuid.UUID) (*entities.Project, error)

	// ListByOwner retrieves all projects owned by a user
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Project, error)

	// Update updates an existing project
	Update(ctx context.Context, project *entities.Project) error

	// UpdateStatus updates the project status
	UpdateStatus(ctx context.Context, projectID uuid.UUID, status entities.ProjectStatus) error

	// AdjustModulesCompleted adds delta to total_modules_completed
	AdjustModulesCompleted(ctx context.Context, projectID uuid.UUID, delta int) error

	// Delete deletes a project and cascades to its children
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateInterviewee stores the project's interviewee profile
	CreateInterviewee(ctx context.Context, interviewee *entities.Interviewee) error

	// FindInterviewee retrieves a project's interviewee profile
	FindInterviewee(ctx context.Context, projectID uuid.UUID) (*entities.Interviewee, error)
}
