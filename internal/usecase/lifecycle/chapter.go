package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/infrastructure/storage"
	"github.com/mabel-app/mabel-backend/internal/usecase/dispatch"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
	"github.com/mabel-app/mabel-backend/internal/usecase/jobs"
	"github.com/mabel-app/mabel-backend/pkg/ai"
)

// illustrationURLExpiry balances shareable links against presign limits
const illustrationURLExpiry = 7 * 24 * time.Hour

type chapterPayload struct {
	ModuleID   uuid.UUID             `json:"module_id"`
	ChapterID  uuid.UUID             `json:"chapter_id"`
	PrevStatus entities.ModuleStatus `json:"prev_status"`
	Feedback   string                `json:"feedback,omitempty"`
}

type imagePayload struct {
	ModuleID  uuid.UUID `json:"module_id"`
	ChapterID uuid.UUID `json:"chapter_id"`
	Prompt    string    `json:"prompt,omitempty"`
}

// chapterEligible are the statuses a generation request may start from
func chapterEligible(status entities.ModuleStatus) bool {
	switch status {
	case entities.ModuleStatusQuestionsGenerated,
		entities.ModuleStatusInProgress,
		entities.ModuleStatusChapterGenerated:
		return true
	}
	return false
}

// RequestChapterGeneration claims the module for generation, creates the
// next chapter version row, and dispatches the generation event. The
// claim is an atomic conditional status update, so two concurrent
// requests produce exactly one chapter row and one 409.
func (s *service) RequestChapterGeneration(ctx context.Context, userID, moduleID uuid.UUID, settings entities.NarrativeSettings) (*entities.ModuleChapter, *entities.Job, error) {
	return s.startGeneration(ctx, userID, moduleID, settings, "")
}

// RegenerateChapter creates a new chapter version from the same answers,
// optionally steered by feedback. Narrative settings carry forward from
// the previous version unless overridden.
func (s *service) RegenerateChapter(ctx context.Context, userID, moduleID uuid.UUID, feedback string, override *entities.NarrativeSettings) (*entities.ModuleChapter, *entities.Job, error) {
	latest, err := s.chapterRepo.LatestByModule(ctx, moduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load chapter: %w", err)
	}
	if latest == nil {
		return nil, nil, uerr.ErrNoChapter
	}

	settings := latest.Settings()
	if override != nil {
		if override.Person != "" {
			settings.Person = override.Person
		}
		if override.Tone != "" {
			settings.Tone = override.Tone
		}
		if override.Style != "" {
			settings.Style = override.Style
		}
	}

	return s.startGeneration(ctx, userID, moduleID, settings, feedback)
}

func (s *service) startGeneration(ctx context.Context, userID, moduleID uuid.UUID, settings entities.NarrativeSettings, feedback string) (*entities.ModuleChapter, *entities.Job, error) {
	module, project, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, nil, err
	}

	if module.IsGenerating() {
		return nil, nil, uerr.ErrGenerationInFlight
	}
	if !chapterEligible(module.Status) {
		return nil, nil, uerr.ErrInvalidTransition
	}

	total, answered, err := s.questionRepo.CountByModule(ctx, moduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if total == 0 {
		return nil, nil, uerr.ErrNoQuestions
	}
	if int(answered) < entities.AnsweredThreshold(int(total)) {
		return nil, nil, uerr.ErrThresholdNotMet
	}

	prevStatus := module.Status
	claimed, err := s.moduleRepo.TransitionStatus(ctx, moduleID, prevStatus, entities.ModuleStatusGeneratingChapter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim module: %w", err)
	}
	if !claimed {
		// Someone else moved the module between our read and the claim
		return nil, nil, uerr.ErrGenerationInFlight
	}

	maxVersion, err := s.chapterRepo.MaxVersion(ctx, moduleID)
	if err != nil {
		s.revertGeneration(ctx, moduleID, prevStatus)
		return nil, nil, fmt.Errorf("failed to read chapter versions: %w", err)
	}

	chapter := entities.NewModuleChapter(moduleID, maxVersion+1, settings)
	if err := s.chapterRepo.Create(ctx, chapter); err != nil {
		s.revertGeneration(ctx, moduleID, prevStatus)
		return nil, nil, fmt.Errorf("failed to create chapter row: %w", err)
	}

	payload := chapterPayload{
		ModuleID:   moduleID,
		ChapterID:  chapter.ID,
		PrevStatus: prevStatus,
		Feedback:   feedback,
	}

	job, err := s.tracker.Begin(ctx, project.ID, userID, entities.JobTypeGenerateModuleChapter, payload)
	if err != nil {
		s.chapterRepo.Delete(ctx, chapter.ID)
		s.revertGeneration(ctx, moduleID, prevStatus)
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.Info("✍️ Chapter generation claimed",
			zap.String("module_id", moduleID.String()),
			zap.Int("version", chapter.Version),
			zap.String("job_id", job.ID.String()),
		)
	}

	if err := s.dispatcher.Dispatch(ctx, dispatch.EventGenerateChapter, job.ID, payload); err != nil {
		// The inline fallback already ran the handler; it reverted the
		// module and marked the job failed.
		if s.logger != nil {
			s.logger.Error("❌ Chapter generation failed",
				zap.String("module_id", moduleID.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.projectRepo.UpdateStatus(ctx, project.ID, entities.ProjectStatusGenerating); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to update project status", zap.Error(err))
	}

	return chapter, job, nil
}

// revertGeneration gives the module back to its pre-claim status
func (s *service) revertGeneration(ctx context.Context, moduleID uuid.UUID, prevStatus entities.ModuleStatus) {
	if _, err := s.moduleRepo.TransitionStatus(ctx, moduleID, entities.ModuleStatusGeneratingChapter, prevStatus); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to revert module status",
				zap.String("module_id", moduleID.String()),
				zap.Error(err),
			)
		}
	}
}

// handleGenerateChapter runs the chapter generation itself: gather the
// answered questions, call the provider, persist the prose, and move the
// module to CHAPTER_GENERATED. On failure the placeholder row is removed
// and the module reverts to the status it had before the claim.
func (s *service) handleGenerateChapter(ctx context.Context, event dispatch.Event) error {
	var payload chapterPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return fmt.Errorf("bad payload: %w", err)
	}

	if err := s.tracker.Start(ctx, event.JobID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to mark job running", zap.Error(err))
	}
	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressStarted)

	fail := func(cause error) error {
		s.chapterRepo.Delete(ctx, payload.ChapterID)
		s.revertGeneration(ctx, payload.ModuleID, payload.PrevStatus)
		s.tracker.Fail(ctx, event.JobID, cause)
		return cause
	}

	module, err := s.moduleRepo.FindByID(ctx, payload.ModuleID)
	if err == nil && module == nil {
		err = uerr.ErrModuleNotFound
	}
	if err != nil {
		return fail(err)
	}

	project, err := s.projectRepo.FindByIDWithInterviewee(ctx, module.ProjectID)
	if err == nil && (project == nil || project.Interviewee == nil) {
		err = uerr.ErrIntervieweeNotFound
	}
	if err != nil {
		return fail(err)
	}

	chapter, err := s.chapterRepo.FindByID(ctx, payload.ChapterID)
	if err == nil && chapter == nil {
		err = uerr.ErrChapterNotFound
	}
	if err != nil {
		return fail(err)
	}

	questions, err := s.questionRepo.ListByModule(ctx, module.ID)
	if err != nil {
		return fail(err)
	}

	answers := make([]ai.QuestionAnswer, 0, len(questions))
	for _, q := range questions {
		if q.IsAnswered() {
			answers = append(answers, ai.QuestionAnswer{Question: q.Question, Answer: *q.Response})
		}
	}

	content, err := s.gateway.GenerateChapter(ctx, ai.ChapterRequest{
		Topic:           module.Title,
		IntervieweeName: project.Interviewee.Name,
		BirthYear:       project.Interviewee.BirthYear,
		Person:          chapter.NarrativePerson,
		Tone:            chapter.NarrativeTone,
		Style:           chapter.NarrativeStyle,
		Answers:         answers,
		Feedback:        payload.Feedback,
	})
	if err != nil {
		return fail(err)
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressProviderOK)

	chapter.SetContent(content)
	if err := s.chapterRepo.Update(ctx, chapter); err != nil {
		return fail(err)
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressPersisting)

	if _, err := s.moduleRepo.TransitionStatus(ctx, module.ID, entities.ModuleStatusGeneratingChapter, entities.ModuleStatusChapterGenerated); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	if err := s.projectRepo.UpdateStatus(ctx, project.ID, entities.ProjectStatusReview); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to update project status", zap.Error(err))
	}

	if s.logger != nil {
		s.logger.Info("✅ Chapter generated",
			zap.String("module_id", module.ID.String()),
			zap.Int("version", chapter.Version),
			zap.Int("word_count", chapter.WordCount),
		)
	}

	return s.tracker.Succeed(ctx, event.JobID, map[string]interface{}{
		"chapter_id": chapter.ID,
		"version":    chapter.Version,
		"word_count": chapter.WordCount,
	})
}

// ApproveModule locks the module and counts it toward project completion.
// The atomic claim makes approval idempotence strict: a second approval
// attempt conflicts instead of double-incrementing the project counter.
func (s *service) ApproveModule(ctx context.Context, userID, moduleID uuid.UUID) (*entities.Module, error) {
	module, project, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	claimed, err := s.moduleRepo.SetApproved(ctx, moduleID, entities.ModuleStatusChapterGenerated)
	if err != nil {
		return nil, fmt.Errorf("failed to approve module: %w", err)
	}
	if !claimed {
		if module.IsApproved() {
			return nil, uerr.ErrAlreadyApproved
		}
		return nil, uerr.ErrInvalidTransition
	}

	if err := s.projectRepo.AdjustModulesCompleted(ctx, project.ID, 1); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to increment completed modules",
				zap.String("project_id", project.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.settleProjectStatus(ctx, project.ID)

	module, err = s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload module: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🏁 Module approved",
			zap.String("module_id", moduleID.String()),
			zap.Int("module_number", module.ModuleNumber),
		)
	}
	return module, nil
}

// settleProjectStatus moves a project to completed once every module is
// approved, otherwise back to active
func (s *service) settleProjectStatus(ctx context.Context, projectID uuid.UUID) {
	modules, err := s.moduleRepo.ListByProject(ctx, projectID)
	if err != nil || len(modules) == 0 {
		return
	}

	status := entities.ProjectStatusCompleted
	for _, m := range modules {
		if !m.IsApproved() {
			status = entities.ProjectStatusActive
			break
		}
	}

	if err := s.projectRepo.UpdateStatus(ctx, projectID, status); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to settle project status", zap.Error(err))
	}
}

// GenerateIllustration dispatches illustration generation for the current
// chapter version
func (s *service) GenerateIllustration(ctx context.Context, userID, moduleID uuid.UUID, prompt string) (*entities.Job, error) {
	_, project, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	chapter, err := s.chapterRepo.LatestByModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chapter: %w", err)
	}
	if chapter == nil || chapter.Content == "" {
		return nil, uerr.ErrNoChapter
	}

	payload := imagePayload{ModuleID: moduleID, ChapterID: chapter.ID, Prompt: prompt}
	job, err := s.tracker.Begin(ctx, project.ID, userID, entities.JobTypeGenerateIllustration, payload)
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, dispatch.EventGenerateImage, job.ID, payload); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Illustration dispatch failed",
				zap.String("module_id", moduleID.String()),
				zap.Error(err),
			)
		}
	}

	return job, nil
}

// handleGenerateImage generates and stores the chapter illustration
func (s *service) handleGenerateImage(ctx context.Context, event dispatch.Event) error {
	var payload imagePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return fmt.Errorf("bad payload: %w", err)
	}

	if err := s.tracker.Start(ctx, event.JobID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to mark job running", zap.Error(err))
	}
	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressStarted)

	chapter, err := s.chapterRepo.FindByID(ctx, payload.ChapterID)
	if err == nil && chapter == nil {
		err = uerr.ErrChapterNotFound
	}
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	module, err := s.moduleRepo.FindByID(ctx, payload.ModuleID)
	if err == nil && module == nil {
		err = uerr.ErrModuleNotFound
	}
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	prompt := payload.Prompt
	if prompt == "" {
		prompt = illustrationPrompt(module.Title, chapter.Content)
	}

	image, err := s.gateway.GenerateImage(ctx, prompt)
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressProviderOK)

	key := storage.IllustrationObjectName(module.ProjectID.String(), module.ID.String(), chapter.Version)
	if err := s.store.UploadBytes(ctx, key, image.Data, image.ContentType); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	url, err := s.store.GetFileURL(ctx, key, illustrationURLExpiry)
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressPersisting)

	chapter.SetIllustration(url, prompt)
	if err := s.chapterRepo.Update(ctx, chapter); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	if s.logger != nil {
		s.logger.Info("🖼️ Illustration generated",
			zap.String("chapter_id", chapter.ID.String()),
			zap.Int("bytes", len(image.Data)),
		)
	}

	return s.tracker.Succeed(ctx, event.JobID, map[string]interface{}{
		"chapter_id":       chapter.ID,
		"illustration_url": url,
	})
}

// UploadIllustration stores a user-provided image on the current chapter
func (s *service) UploadIllustration(ctx context.Context, userID, moduleID uuid.UUID, image io.Reader, filename string, size int64, contentType string) (*entities.ModuleChapter, error) {
	module, project, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	chapter, err := s.chapterRepo.LatestByModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chapter: %w", err)
	}
	if chapter == nil {
		return nil, uerr.ErrNoChapter
	}

	key := storage.IllustrationObjectName(project.ID.String(), module.ID.String(), chapter.Version)
	if err := s.store.UploadFile(ctx, key, image, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store illustration: %w", err)
	}

	url, err := s.store.GetFileURL(ctx, key, illustrationURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign illustration: %w", err)
	}

	chapter.SetIllustration(url, "")
	if err := s.chapterRepo.Update(ctx, chapter); err != nil {
		return nil, fmt.Errorf("failed to save illustration: %w", err)
	}

	return chapter, nil
}

// illustrationPrompt builds a default image prompt from the chapter
func illustrationPrompt(title, content string) string {
	excerpt := content
	if len(excerpt) > 400 {
		excerpt = excerpt[:400]
	}
	return fmt.Sprintf(
		"A warm, nostalgic illustration for a memoir chapter titled %q. "+
			"Soft watercolor style, no text in the image. The chapter begins: %s",
		title, excerpt,
	)
}
