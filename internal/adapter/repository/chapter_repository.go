package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
)

// ChapterRepository handles chapter version data operations
type ChapterRepository struct {
	db *gorm.DB
}

// NewChapterRepository creates a new chapter repository
func NewChapterRepository(db *gorm.DB) repositories.ChapterRepository {
	return &ChapterRepository{db: db}
}

// Create appends a new chapter version row
func (r *ChapterRepository) Create(ctx context.Context, chapter *entities.ModuleChapter) error {
	if chapter == nil {
		return errors.New("chapter cannot be nil")
	}
	return r.db.WithContext(ctx).Create(chapter).Error
}

// FindByID retrieves a chapter by its ID
func (r *ChapterRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ModuleChapter, error) {
	var chapter entities.ModuleChapter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chapter, nil
}

// LatestByModule retrieves the highest-version chapter for a module
func (r *ChapterRepository) LatestByModule(ctx context.Context, moduleID uuid.UUID) (*entities.ModuleChapter, error) {
	var chapter entities.ModuleChapter
	if err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("version DESC").
		First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chapter, nil
}

// MaxVersion returns the highest chapter version for a module (0 when none)
func (r *ChapterRepository) MaxVersion(ctx context.Context, moduleID uuid.UUID) (int, error) {
	var max int
	if err := r.db.WithContext(ctx).
		Model(&entities.ModuleChapter{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// CountByModule counts a module's chapter rows
func (r *ChapterRepository) CountByModule(ctx context.Context, moduleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ModuleChapter{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates a chapter row
func (r *ChapterRepository) Update(ctx context.Context, chapter *entities.ModuleChapter) error {
	if chapter == nil {
		return errors.New("chapter cannot be nil")
	}
	return r.db.WithContext(ctx).Save(chapter).Error
}

// Delete removes a chapter row
func (r *ChapterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.ModuleChapter{}, "id = ?", id).Error
}
