package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
)

// QuestionRepository handles module question data operations
type QuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionRepository{db: db}
}

// CreateBatch inserts a module's question set in one statement
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []entities.ModuleQuestion) error {
	if len(questions) == 0 {
		return errors.New("questions cannot be empty")
	}
	return r.db.WithContext(ctx).Create(&questions).Error
}

// FindByID retrieves a question by its ID
func (r *QuestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ModuleQuestion, error) {
	var question entities.ModuleQuestion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

// ListByModule retrieves a module's questions ordered by question_order
func (r *QuestionRepository) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]entities.ModuleQuestion, error) {
	var questions []entities.ModuleQuestion
	if err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("question_order ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByModule returns (total, answered) for a module. A question counts
// as answered when its response is non-null and non-empty, regardless of
// processing status.
func (r *QuestionRepository) CountByModule(ctx context.Context, moduleID uuid.UUID) (int64, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ModuleQuestion{}).
		Where("module_id = ?", moduleID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var answered int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ModuleQuestion{}).
		Where("module_id = ? AND response IS NOT NULL AND response <> ''", moduleID).
		Count(&answered).Error; err != nil {
		return 0, 0, err
	}
	return total, answered, nil
}

// Update updates a question
func (r *QuestionRepository) Update(ctx context.Context, question *entities.ModuleQuestion) error {
	if question == nil {
		return errors.New("question cannot be nil")
	}
	return r.db.WithContext(ctx).Save(question).Error
}
