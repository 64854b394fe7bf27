package project

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
)

// Service manages memoir projects and their interviewee profiles
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, title string) (*entities.Project, error)
	Get(ctx context.Context, userID, projectID uuid.UUID) (*entities.Project, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
	AddInterviewee(ctx context.Context, userID, projectID uuid.UUID, name, relationship string, birthYear int, topics []string) (*entities.Interviewee, error)
}

type service struct {
	projectRepo repositories.ProjectRepository
	logger      *zap.Logger
}

// NewService constructs the project service
func NewService(projectRepo repositories.ProjectRepository, logger *zap.Logger) Service {
	return &service{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, title string) (*entities.Project, error) {
	project := entities.NewProject(ownerID, title)
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📚 Project created",
			zap.String("project_id", project.ID.String()),
			zap.String("owner_id", ownerID.String()),
		)
	}
	return project, nil
}

func (s *service) owned(ctx context.Context, userID, projectID uuid.UUID) (*entities.Project, error) {
	project, err := s.projectRepo.FindByIDWithInterviewee(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, uerr.ErrProjectNotFound
	}
	if !project.IsOwnedBy(userID) {
		return nil, uerr.ErrForbidden
	}
	return project, nil
}

func (s *service) Get(ctx context.Context, userID, projectID uuid.UUID) (*entities.Project, error) {
	return s.owned(ctx, userID, projectID)
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]*entities.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

// Delete removes a project with all of its modules, questions, chapters
// and jobs
func (s *service) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🗑️ Project deleted",
			zap.String("project_id", projectID.String()),
		)
	}
	return nil
}

// AddInterviewee stores the subject profile. One per project; the profile
// is immutable after creation.
func (s *service) AddInterviewee(ctx context.Context, userID, projectID uuid.UUID, name, relationship string, birthYear int, topics []string) (*entities.Interviewee, error) {
	project, err := s.owned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Interviewee != nil {
		return nil, uerr.ErrIntervieweeExists
	}

	interviewee := entities.NewInterviewee(projectID, name, relationship, birthYear, topics)
	if err := s.projectRepo.CreateInterviewee(ctx, interviewee); err != nil {
		return nil, fmt.Errorf("failed to create interviewee: %w", err)
	}

	project.Status = entities.ProjectStatusIntervieweeAdded
	if err := s.projectRepo.Update(ctx, project); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to update project status", zap.Error(err))
	}

	if s.logger != nil {
		s.logger.Info("🎙️ Interviewee added",
			zap.String("project_id", projectID.String()),
			zap.String("generation", interviewee.Generation),
		)
	}
	return interviewee, nil
}
