package lifecycle

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
	"github.com/mabel-app/mabel-backend/internal/usecase/dispatch"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
	"github.com/mabel-app/mabel-backend/internal/usecase/jobs"
	"github.com/mabel-app/mabel-backend/pkg/ai"
	"github.com/mabel-app/mabel-backend/pkg/pdf"
)

// DefaultQuestionCount is how many interview questions a new module gets
const DefaultQuestionCount = 15

// ObjectStore is the subset of blob storage the lifecycle service needs
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Service drives memoir modules through their lifecycle: question
// generation, interview answers, chapter generation and versioning,
// approval, and export.
type Service interface {
	CreateModule(ctx context.Context, userID, projectID uuid.UUID, title, theme string) (*entities.Module, *entities.Job, error)
	GetModule(ctx context.Context, userID, moduleID uuid.UUID) (*entities.Module, error)
	ListModules(ctx context.Context, userID, projectID uuid.UUID) ([]*entities.Module, error)
	DeleteModule(ctx context.Context, userID, moduleID uuid.UUID) error

	AnswerQuestion(ctx context.Context, userID, moduleID, questionID uuid.UUID, response string) (*entities.ModuleQuestion, error)
	AnswerQuestionWithAudio(ctx context.Context, userID, moduleID, questionID uuid.UUID, audio io.Reader, filename string, size int64, contentType string) (*entities.Job, error)

	RequestChapterGeneration(ctx context.Context, userID, moduleID uuid.UUID, settings entities.NarrativeSettings) (*entities.ModuleChapter, *entities.Job, error)
	RegenerateChapter(ctx context.Context, userID, moduleID uuid.UUID, feedback string, override *entities.NarrativeSettings) (*entities.ModuleChapter, *entities.Job, error)
	ApproveModule(ctx context.Context, userID, moduleID uuid.UUID) (*entities.Module, error)

	GenerateIllustration(ctx context.Context, userID, moduleID uuid.UUID, prompt string) (*entities.Job, error)
	UploadIllustration(ctx context.Context, userID, moduleID uuid.UUID, image io.Reader, filename string, size int64, contentType string) (*entities.ModuleChapter, error)

	ExportChapter(ctx context.Context, userID, moduleID uuid.UUID) ([]byte, string, error)
	ExportProject(ctx context.Context, userID, projectID uuid.UUID) ([]byte, string, error)
}

type service struct {
	projectRepo  repositories.ProjectRepository
	moduleRepo   repositories.ModuleRepository
	questionRepo repositories.QuestionRepository
	chapterRepo  repositories.ChapterRepository
	tracker      jobs.Tracker
	dispatcher   *dispatch.Dispatcher
	gateway      ai.Gateway
	transcriber  ai.Transcriber
	store        ObjectStore
	renderer     *pdf.Renderer
	logger       *zap.Logger
}

// NewService constructs the lifecycle service and registers its event
// handlers on the dispatcher. The same handlers serve both the stream
// consumers and the inline fallback path.
func NewService(
	projectRepo repositories.ProjectRepository,
	moduleRepo repositories.ModuleRepository,
	questionRepo repositories.QuestionRepository,
	chapterRepo repositories.ChapterRepository,
	tracker jobs.Tracker,
	dispatcher *dispatch.Dispatcher,
	gateway ai.Gateway,
	transcriber ai.Transcriber,
	store ObjectStore,
	renderer *pdf.Renderer,
	logger *zap.Logger,
) Service {
	s := &service{
		projectRepo:  projectRepo,
		moduleRepo:   moduleRepo,
		questionRepo: questionRepo,
		chapterRepo:  chapterRepo,
		tracker:      tracker,
		dispatcher:   dispatcher,
		gateway:      gateway,
		transcriber:  transcriber,
		store:        store,
		renderer:     renderer,
		logger:       logger,
	}

	dispatcher.Register(dispatch.EventGenerateQuestions, s.handleGenerateQuestions)
	dispatcher.Register(dispatch.EventGenerateChapter, s.handleGenerateChapter)
	dispatcher.Register(dispatch.EventTranscribeAudio, s.handleTranscribeAudio)
	dispatcher.Register(dispatch.EventGenerateImage, s.handleGenerateImage)

	return s
}

// ownedProject loads a project and enforces ownership
func (s *service) ownedProject(ctx context.Context, userID, projectID uuid.UUID) (*entities.Project, error) {
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

// ownedModule loads a module plus its project and enforces ownership
func (s *service) ownedModule(ctx context.Context, userID, moduleID uuid.UUID) (*entities.Module, *entities.Project, error) {
	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get module: %w", err)
	}
	if module == nil {
		return nil, nil, uerr.ErrModuleNotFound
	}

	project, err := s.ownedProject(ctx, userID, module.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return module, project, nil
}

// CreateModule creates a module in draft state and dispatches question
// generation. The returned job is what the client polls on.
func (s *service) CreateModule(ctx context.Context, userID, projectID uuid.UUID, title, theme string) (*entities.Module, *entities.Job, error) {
	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project.Interviewee == nil {
		return nil, nil, uerr.ErrIntervieweeNotFound
	}

	number, err := s.moduleRepo.NextModuleNumber(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to number module: %w", err)
	}

	module := entities.NewModule(projectID, number, title, theme)
	if err := s.moduleRepo.Create(ctx, module); err != nil {
		return nil, nil, fmt.Errorf("failed to create module: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📖 Module created",
			zap.String("module_id", module.ID.String()),
			zap.String("project_id", projectID.String()),
			zap.Int("module_number", number),
		)
	}

	job, err := s.tracker.Begin(ctx, projectID, userID, entities.JobTypeGenerateModuleQuestions, questionsPayload{ModuleID: module.ID})
	if err != nil {
		return nil, nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, dispatch.EventGenerateQuestions, job.ID, questionsPayload{ModuleID: module.ID}); err != nil {
		// Inline fallback already recorded the failure on the job; the
		// module stays visible so the client sees the error state.
		if s.logger != nil {
			s.logger.Error("❌ Question generation dispatch failed",
				zap.String("module_id", module.ID.String()),
				zap.Error(err),
			)
		}
	}

	// Best-effort project bookkeeping
	project.CurrentModuleNumber = number
	project.Status = entities.ProjectStatusModuleInProgress
	if err := s.projectRepo.Update(ctx, project); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to update project after module create", zap.Error(err))
	}

	return module, job, nil
}

// GetModule returns a module with questions and chapter versions
func (s *service) GetModule(ctx context.Context, userID, moduleID uuid.UUID) (*entities.Module, error) {
	if _, _, err := s.ownedModule(ctx, userID, moduleID); err != nil {
		return nil, err
	}

	module, err := s.moduleRepo.FindByIDWithChildren(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}
	if module == nil {
		return nil, uerr.ErrModuleNotFound
	}
	return module, nil
}

// ListModules returns a project's modules in module-number order
func (s *service) ListModules(ctx context.Context, userID, projectID uuid.UUID) ([]*entities.Module, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.moduleRepo.ListByProject(ctx, projectID)
}

// DeleteModule removes a module and renumbers its siblings densely.
// Deleting the only module of a project is rejected.
func (s *service) DeleteModule(ctx context.Context, userID, moduleID uuid.UUID) error {
	module, _, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return err
	}

	count, err := s.moduleRepo.CountByProject(ctx, module.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to count modules: %w", err)
	}
	if count <= 1 {
		return uerr.ErrLastModule
	}

	if err := s.moduleRepo.DeleteAndRenumber(ctx, module); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🗑️ Module deleted",
			zap.String("module_id", moduleID.String()),
			zap.Int("module_number", module.ModuleNumber),
		)
	}
	return nil
}
