package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mabel-app/mabel-backend/internal/domain/entities"
)

// ModuleRepository defines the interface for module data access
type ModuleRepository interface {
	// Create creates a new module
	Create(ctx context.Context, module *entities.Module) error

	// FindByID retrieves a module by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Module, error)

	// FindByIDWithChildren retrieves a module with questions and chapters preloaded,
	// questions ordered by question_order and chapters by version
	FindByIDWithChildren(ctx context.Context, id uuid.UUID) (*entities.Module, error)

	// ListByProject retrieves a project's modules ordered by module_number
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.Module, error)

	// CountByProject counts a project's modules
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)

	// NextModuleNumber returns max(module_number)+1 for a project
	NextModuleNumber(ctx context.Context, projectID uuid.UUID) (int, error)

	// TransitionStatus atomically moves a module from one status to another.
	// It updates the row only when the current status matches `from` and
	// returns false when zero rows were affected (the claim was lost).
	TransitionStatus(ctx context.Context, moduleID uuid.UUID, from, to entities.ModuleStatus) (bool, error)

	// SetApproved marks a module approved with its approval timestamp,
	// guarded by the same conditional-update claim as TransitionStatus
	SetApproved(ctx context.Context, moduleID uuid.UUID, from entities.ModuleStatus) (bool, error)

	// DeleteAndRenumber deletes a module, cascades to questions and
	// chapters, and renumbers the remaining modules of the project to a
	// dense 1..N sequence, in a single transaction
	DeleteAndRenumber(ctx context.Context, module *entities.Module) error
}

// QuestionRepository defines the interface for module question data access
type QuestionRepository interface {
	// CreateBatch inserts a module's question set in one statement
	CreateBatch(ctx context.Context, questions []entities.ModuleQuestion) error

	// FindByID retrieves a question by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ModuleQuestion, error)

	// ListByModule retrieves a module's questions ordered by question_order
	ListByModule(ctx context.Context, moduleID uuid.UUID) ([]entities.ModuleQuestion, error)

	// CountByModule returns (total, answered) for a module
	CountByModule(ctx context.Context, moduleID uuid.UUID) (total int64, answered int64, err error)

	// Update updates a question
	Update(ctx context.Context, question *entities.ModuleQuestion) error
}

// ChapterRepository defines the interface for chapter version data access
type ChapterRepository interface {
	// Create appends a new chapter version row
	Create(ctx context.Context, chapter *entities.ModuleChapter) error

	// FindByID retrieves a chapter by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ModuleChapter, error)

	// LatestByModule retrieves the highest-version chapter for a module
	LatestByModule(ctx context.Context, moduleID uuid.UUID) (*entities.ModuleChapter, error)

	// MaxVersion returns the highest chapter version for a module (0 when none)
	MaxVersion(ctx context.Context, moduleID uuid.UUID) (int, error)

	// CountByModule counts a module's chapter rows
	CountByModule(ctx context.Context, moduleID uuid.UUID) (int64, error)

	// Update updates a chapter row
	Update(ctx context.Context, chapter *entities.ModuleChapter) error

	// Delete removes a chapter row. Used to discard the placeholder row
	// when generation fails before any content lands.
	Delete(ctx context.Context, id uuid.UUID) error
}
