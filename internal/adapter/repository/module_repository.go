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

// ModuleRepository handles module data operations
type ModuleRepository struct {
	db *gorm.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *gorm.DB) repositories.ModuleRepository {
	return &ModuleRepository{db: db}
}

// Create creates a new module
func (r *ModuleRepository) Create(ctx context.Context, module *entities.Module) error {
	if module == nil {
		return errors.New("module cannot be nil")
	}
	return r.db.WithContext(ctx).Create(module).Error
}

// FindByID retrieves a module by its ID
func (r *ModuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Module, error) {
	var module entities.Module
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

// FindByIDWithChildren retrieves a module with questions and chapters preloaded
func (r *ModuleRepository) FindByIDWithChildren(ctx context.Context, id uuid.UUID) (*entities.Module, error) {
	var module entities.Module
	if err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("version ASC")
		}).
		Where("id = ?", id).
		First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

// ListByProject retrieves a project's modules ordered by module_number
func (r *ModuleRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.Module, error) {
	var modules []*entities.Module
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("module_number ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CountByProject counts a project's modules
func (r *ModuleRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Module{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextModuleNumber returns max(module_number)+1 for a project
func (r *ModuleRepository) NextModuleNumber(ctx context.Context, projectID uuid.UUID) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&entities.Module{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(module_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// TransitionStatus atomically moves a module from one status to another.
// The conditional update closes the read-then-write gap: only one of two
// racing requests can match the `from` status, the other sees zero rows
// affected and loses the claim.
func (r *ModuleRepository) TransitionStatus(ctx context.Context, moduleID uuid.UUID, from, to entities.ModuleStatus) (bool, error) {
	if !entities.CanTransition(from, to) {
		return false, nil
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Module{}).
		Where("id = ? AND status = ?", moduleID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetApproved marks a module approved with its approval timestamp
func (r *ModuleRepository) SetApproved(ctx context.Context, moduleID uuid.UUID, from entities.ModuleStatus) (bool, error) {
	if !entities.CanTransition(from, entities.ModuleStatusApproved) {
		return false, nil
	}
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entities.Module{}).
		Where("id = ? AND status = ?", moduleID, from).
		Updates(map[string]interface{}{
			"status":      entities.ModuleStatusApproved,
			"approved_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteAndRenumber deletes a module, cascades to questions and chapters,
// and renumbers the project's remaining modules to a dense 1..N sequence
func (r *ModuleRepository) DeleteAndRenumber(ctx context.Context, module *entities.Module) error {
	if module == nil {
		return errors.New("module cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", module.ID).Delete(&entities.ModuleQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", module.ID).Delete(&entities.ModuleChapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", module.ID).Delete(&entities.Module{}).Error; err != nil {
			return err
		}

		var remaining []entities.Module
		if err := tx.Where("project_id = ?", module.ProjectID).
			Order("module_number ASC").
			Find(&remaining).Error; err != nil {
			return err
		}
		for i, m := range remaining {
			if m.ModuleNumber != i+1 {
				if err := tx.Model(&entities.Module{}).
					Where("id = ?", m.ID).
					Updates(map[string]interface{}{
						"module_number": i + 1,
						"updated_at":    time.Now(),
					}).Error; err != nil {
					return err
				}
			}
		}

		if module.IsApproved() {
			if err := tx.Model(&entities.Project{}).
				Where("id = ?", module.ProjectID).
				Update("total_modules_completed", gorm.Expr("total_modules_completed - 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
