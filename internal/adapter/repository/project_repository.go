package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
)

// ProjectRepository handles project data operations
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) repositories.ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entities.Project) error {
	if project == nil {
		return errors.New("project cannot be nil")
	}
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID retrieves a project by its ID
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	var project entities.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// FindByIDWithInterviewee retrieves a project with its interviewee preloaded
func (r *ProjectRepository) FindByIDWithInterviewee(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	var project entities.Project
	if err := r.db.WithContext(ctx).
		Preload("Interviewee").
		Where("id = ?", id).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// ListByOwner retrieves all projects owned by a user
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Project, error) {
	var projects []*entities.Project
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates an existing project
func (r *ProjectRepository) Update(ctx context.Context, project *entities.Project) error {
	if project == nil {
		return errors.New("project cannot be nil")
	}
	return r.db.WithContext(ctx).Save(project).Error
}

// UpdateStatus updates the project status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, projectID uuid.UUID, status entities.ProjectStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// AdjustModulesCompleted adds delta to total_modules_completed
func (r *ProjectRepository) AdjustModulesCompleted(ctx context.Context, projectID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&entities.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"total_modules_completed": gorm.Expr("total_modules_completed + ?", delta),
			"updated_at":              time.Now(),
		}).Error
}

// Delete deletes a project and cascades to its children
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id IN (?)",
			tx.Model(&entities.Module{}).Select("id").Where("project_id = ?", id),
		).Delete(&entities.ModuleQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN (?)",
			tx.Model(&entities.Module{}).Select("id").Where("project_id = ?", id),
		).Delete(&entities.ModuleChapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&entities.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&entities.Interviewee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&entities.Job{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Project{}).Error
	})
}

// CreateInterviewee stores the project's interviewee profile
func (r *ProjectRepository) CreateInterviewee(ctx context.Context, interviewee *entities.Interviewee) error {
	if interviewee == nil {
		return errors.New("interviewee cannot be nil")
	}
	return r.db.WithContext(ctx).Create(interviewee).Error
}

// FindInterviewee retrieves a project's interviewee profile
func (r *ProjectRepository) FindInterviewee(ctx context.Context, projectID uuid.UUID) (*entities.Interviewee, error) {
	var interviewee entities.Interviewee
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&interviewee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &interviewee, nil
}
