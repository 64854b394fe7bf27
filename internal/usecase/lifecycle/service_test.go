package lifecycle_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mabel-app/mabel-backend/internal/adapter/repository"
	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	"github.com/mabel-app/mabel-backend/internal/domain/repositories"
	"github.com/mabel-app/mabel-backend/internal/usecase/dispatch"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
	"github.com/mabel-app/mabel-backend/internal/usecase/jobs"
	"github.com/mabel-app/mabel-backend/internal/usecase/lifecycle"
	"github.com/mabel-app/mabel-backend/pkg/ai"
	"github.com/mabel-app/mabel-backend/pkg/pdf"
)

var testSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'setup',
		current_module_number INTEGER NOT NULL DEFAULT 0,
		total_modules_completed INTEGER NOT NULL DEFAULT 0,
		owner_id TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE interviewees (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		relationship TEXT,
		birth_year INTEGER NOT NULL,
		generation TEXT,
		topics TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE modules (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		module_number INTEGER NOT NULL,
		title TEXT NOT NULL,
		theme TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		approved_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE module_questions (
		id TEXT PRIMARY KEY,
		module_id TEXT NOT NULL,
		question TEXT NOT NULL,
		category TEXT,
		question_order INTEGER NOT NULL,
		response TEXT,
		responded_at DATETIME,
		audio_file_key TEXT,
		raw_transcript TEXT,
		narrative_text TEXT,
		processing_status TEXT NOT NULL DEFAULT 'recording',
		error_message TEXT,
		duration INTEGER,
		context_source TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE module_chapters (
		id TEXT PRIMARY KEY,
		module_id TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		word_count INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		narrative_person TEXT NOT NULL DEFAULT 'first',
		narrative_tone TEXT NOT NULL DEFAULT 'warm',
		narrative_style TEXT NOT NULL DEFAULT 'conversational',
		illustration_url TEXT,
		illustration_prompt TEXT,
		illustration_generated_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (module_id, version)
	)`,
	`CREATE TABLE jobs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		progress INTEGER NOT NULL DEFAULT 0,
		input TEXT,
		output TEXT,
		error TEXT,
		started_at DATETIME,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// memStore is an in-memory ObjectStore for tests
type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (s *memStore) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.files[objectName] = data
	return nil
}

func (s *memStore) UploadBytes(_ context.Context, objectName string, data []byte, _ string) error {
	s.files[objectName] = data
	return nil
}

func (s *memStore) GetFileURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "http://store.local/" + objectName, nil
}

type fixture struct {
	svc         lifecycle.Service
	tracker     jobs.Tracker
	projectRepo repositories.ProjectRepository
	moduleRepo  repositories.ModuleRepository
	chapterRepo repositories.ChapterRepository
	store       *memStore
	userID      uuid.UUID
	project     *entities.Project
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}

	logger := zap.NewNop()
	projectRepo := repository.NewProjectRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	jobRepo := repository.NewJobRepository(db)

	tracker := jobs.NewTracker(jobRepo, logger)

	// A dispatcher without a broker runs every event inline, which keeps
	// the tests synchronous and deterministic.
	dispatcher := dispatch.NewDispatcher(nil, "", logger)

	gateway := &ai.MockGateway{}
	store := newMemStore()

	svc := lifecycle.NewService(
		projectRepo, moduleRepo, questionRepo, chapterRepo,
		tracker, dispatcher, gateway, gateway, store, pdf.NewRenderer(), logger,
	)

	ctx := context.Background()
	userID := uuid.New()
	project := entities.NewProject(userID, "Grandma Ruth's Story")
	if err := projectRepo.Create(ctx, project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	interviewee := entities.NewInterviewee(project.ID, "Ruth", "grandmother", 1958, []string{"childhood", "family"})
	if err := projectRepo.CreateInterviewee(ctx, interviewee); err != nil {
		t.Fatalf("failed to create interviewee: %v", err)
	}

	return &fixture{
		svc:         svc,
		tracker:     tracker,
		projectRepo: projectRepo,
		moduleRepo:  moduleRepo,
		chapterRepo: chapterRepo,
		store:       store,
		userID:      userID,
		project:     project,
	}
}

// createReadyModule creates a module and answers enough questions to
// clear the generation threshold
func (f *fixture) createReadyModule(t *testing.T) *entities.Module {
	t.Helper()
	ctx := context.Background()

	module, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("failed to create module: %v", err)
	}

	loaded, err := f.svc.GetModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}
	threshold := entities.AnsweredThreshold(len(loaded.Questions))
	for i := 0; i < threshold; i++ {
		q := loaded.Questions[i]
		if _, err := f.svc.AnswerQuestion(ctx, f.userID, module.ID, q.ID, "We lived on a farm back then and everyone pitched in."); err != nil {
			t.Fatalf("failed to answer question %d: %v", i, err)
		}
	}
	return module
}

func TestCreateModuleGeneratesQuestions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module, job, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	if module.ModuleNumber != 1 {
		t.Errorf("expected module number 1, got %d", module.ModuleNumber)
	}

	// The inline dispatch path completes the job before CreateModule returns
	done, err := f.tracker.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to fetch job: %v", err)
	}
	if done.Status != entities.JobStatusCompleted {
		t.Fatalf("expected completed job, got %s (error: %v)", done.Status, done.Error)
	}
	if done.Progress != 100 {
		t.Errorf("expected progress 100, got %d", done.Progress)
	}

	loaded, err := f.svc.GetModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}
	if loaded.Status != entities.ModuleStatusQuestionsGenerated {
		t.Errorf("expected status %s, got %s", entities.ModuleStatusQuestionsGenerated, loaded.Status)
	}
	if len(loaded.Questions) != lifecycle.DefaultQuestionCount {
		t.Errorf("expected %d questions, got %d", lifecycle.DefaultQuestionCount, len(loaded.Questions))
	}
	for i, q := range loaded.Questions {
		if q.Order != i+1 {
			t.Errorf("question %d has order %d, want %d", i, q.Order, i+1)
		}
	}
}

func TestCreateModuleRequiresInterviewee(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bare := entities.NewProject(f.userID, "No Subject Yet")
	if err := f.projectRepo.Create(ctx, bare); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if _, _, err := f.svc.CreateModule(ctx, f.userID, bare.ID, "Early Years", "childhood"); err == nil {
		t.Fatal("expected an error for a project without an interviewee")
	}
}

func TestAnswerQuestionRejectsEmptyResponse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	loaded, err := f.svc.GetModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}

	_, err = f.svc.AnswerQuestion(ctx, f.userID, module.ID, loaded.Questions[0].ID, "   ")
	if !errors.Is(err, uerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChapterGenerationThreshold(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	loaded, err := f.svc.GetModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}

	threshold := entities.AnsweredThreshold(len(loaded.Questions))

	// One short of the threshold is rejected
	for i := 0; i < threshold-1; i++ {
		if _, err := f.svc.AnswerQuestion(ctx, f.userID, module.ID, loaded.Questions[i].ID, "It was a different time."); err != nil {
			t.Fatalf("failed to answer question %d: %v", i, err)
		}
	}
	_, _, err = f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{})
	if !errors.Is(err, uerr.ErrThresholdNotMet) {
		t.Fatalf("expected ErrThresholdNotMet at %d answers, got %v", threshold-1, err)
	}

	// Exactly the threshold is accepted
	if _, err := f.svc.AnswerQuestion(ctx, f.userID, module.ID, loaded.Questions[threshold-1].ID, "It was a different time."); err != nil {
		t.Fatalf("failed to answer question: %v", err)
	}
	chapter, job, err := f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{Person: "first", Tone: "warm"})
	if err != nil {
		t.Fatalf("RequestChapterGeneration failed at threshold: %v", err)
	}
	if chapter.Version != 1 {
		t.Errorf("expected version 1, got %d", chapter.Version)
	}

	done, err := f.tracker.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to fetch job: %v", err)
	}
	if done.Status != entities.JobStatusCompleted {
		t.Fatalf("expected completed job, got %s (error: %v)", done.Status, done.Error)
	}

	latest, err := f.chapterRepo.LatestByModule(ctx, module.ID)
	if err != nil {
		t.Fatalf("failed to load chapter: %v", err)
	}
	if latest.Content == "" {
		t.Error("expected generated chapter content")
	}
	if latest.WordCount == 0 {
		t.Error("expected non-zero word count")
	}

	reloaded, err := f.moduleRepo.FindByID(ctx, module.ID)
	if err != nil {
		t.Fatalf("failed to reload module: %v", err)
	}
	if reloaded.Status != entities.ModuleStatusChapterGenerated {
		t.Errorf("expected status %s, got %s", entities.ModuleStatusChapterGenerated, reloaded.Status)
	}
}

func TestChapterGenerationConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)

	// Occupy the generating slot as a racing request would
	claimed, err := f.moduleRepo.TransitionStatus(ctx, module.ID, entities.ModuleStatusInProgress, entities.ModuleStatusGeneratingChapter)
	if err != nil || !claimed {
		t.Fatalf("failed to claim generating status: claimed=%v err=%v", claimed, err)
	}

	_, _, err = f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{})
	if !errors.Is(err, uerr.ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}

	// The losing side of the claim sees zero rows affected
	claimed, err = f.moduleRepo.TransitionStatus(ctx, module.ID, entities.ModuleStatusInProgress, entities.ModuleStatusGeneratingChapter)
	if err != nil {
		t.Fatalf("TransitionStatus failed: %v", err)
	}
	if claimed {
		t.Fatal("second claim should lose")
	}

	// No chapter row leaked from the rejected request
	count, err := f.chapterRepo.CountByModule(ctx, module.ID)
	if err != nil {
		t.Fatalf("failed to count chapters: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no chapter rows, got %d", count)
	}
}

func TestRegenerateAppendsVersions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)

	first, _, err := f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{Tone: "warm"})
	if err != nil {
		t.Fatalf("RequestChapterGeneration failed: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("expected version 1, got %d", first.Version)
	}

	second, _, err := f.svc.RegenerateChapter(ctx, f.userID, module.ID, "More detail about the farm, please.", nil)
	if err != nil {
		t.Fatalf("RegenerateChapter failed: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("expected version 2, got %d", second.Version)
	}

	// Settings carry forward when no override is given
	if second.NarrativeTone != "warm" {
		t.Errorf("expected carried-forward tone warm, got %s", second.NarrativeTone)
	}

	latest, err := f.chapterRepo.LatestByModule(ctx, module.ID)
	if err != nil {
		t.Fatalf("failed to load latest chapter: %v", err)
	}
	if latest.Version != 2 {
		t.Errorf("latest version should be 2, got %d", latest.Version)
	}
	if latest.Content == "" {
		t.Error("expected regenerated content")
	}

	count, err := f.chapterRepo.CountByModule(ctx, module.ID)
	if err != nil {
		t.Fatalf("failed to count chapters: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 chapter rows, got %d", count)
	}
}

func TestRegenerateRequiresExistingChapter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)

	_, _, err := f.svc.RegenerateChapter(ctx, f.userID, module.ID, "feedback", nil)
	if !errors.Is(err, uerr.ErrNoChapter) {
		t.Fatalf("expected ErrNoChapter, got %v", err)
	}
}

func TestApproveModule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)
	if _, _, err := f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{}); err != nil {
		t.Fatalf("RequestChapterGeneration failed: %v", err)
	}

	approved, err := f.svc.ApproveModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("ApproveModule failed: %v", err)
	}
	if approved.Status != entities.ModuleStatusApproved {
		t.Errorf("expected status %s, got %s", entities.ModuleStatusApproved, approved.Status)
	}
	if approved.ApprovedAt == nil {
		t.Error("expected approval timestamp")
	}

	project, err := f.projectRepo.FindByID(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if project.TotalModulesCompleted != 1 {
		t.Errorf("expected 1 completed module, got %d", project.TotalModulesCompleted)
	}
	if project.Status != entities.ProjectStatusCompleted {
		t.Errorf("expected project status %s, got %s", entities.ProjectStatusCompleted, project.Status)
	}

	// Approving twice is a conflict, not a second increment
	_, err = f.svc.ApproveModule(ctx, f.userID, module.ID)
	if !errors.Is(err, uerr.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
	project, _ = f.projectRepo.FindByID(ctx, f.project.ID)
	if project.TotalModulesCompleted != 1 {
		t.Errorf("double approve must not increment, got %d", project.TotalModulesCompleted)
	}
}

func TestApproveRequiresGeneratedChapter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)

	_, err := f.svc.ApproveModule(ctx, f.userID, module.ID)
	if !errors.Is(err, uerr.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDeleteModule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}

	// The only module of a project cannot be deleted
	err = f.svc.DeleteModule(ctx, f.userID, first.ID)
	if !errors.Is(err, uerr.ErrLastModule) {
		t.Fatalf("expected ErrLastModule, got %v", err)
	}

	second, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "School Days", "education")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	third, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "First Job", "career")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}

	if err := f.svc.DeleteModule(ctx, f.userID, second.ID); err != nil {
		t.Fatalf("DeleteModule failed: %v", err)
	}

	modules, err := f.svc.ListModules(ctx, f.userID, f.project.ID)
	if err != nil {
		t.Fatalf("ListModules failed: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	// Renumbering keeps the sequence dense
	if modules[0].ID != first.ID || modules[0].ModuleNumber != 1 {
		t.Errorf("expected first module at number 1, got %d", modules[0].ModuleNumber)
	}
	if modules[1].ID != third.ID || modules[1].ModuleNumber != 2 {
		t.Errorf("expected third module renumbered to 2, got %d", modules[1].ModuleNumber)
	}
}

func TestAudioAnswerTranscribesAndCounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}
	loaded, err := f.svc.GetModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("failed to load module: %v", err)
	}
	question := loaded.Questions[0]

	audio := strings.NewReader("fake webm bytes")
	job, err := f.svc.AnswerQuestionWithAudio(ctx, f.userID, module.ID, question.ID, audio, "answer.webm", int64(audio.Len()), "audio/webm")
	if err != nil {
		t.Fatalf("AnswerQuestionWithAudio failed: %v", err)
	}

	done, err := f.tracker.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("failed to fetch job: %v", err)
	}
	if done.Status != entities.JobStatusCompleted {
		t.Fatalf("expected completed transcription job, got %s (error: %v)", done.Status, done.Error)
	}

	reloaded, err := f.svc.GetModule(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("failed to reload module: %v", err)
	}
	var answered *entities.ModuleQuestion
	for i := range reloaded.Questions {
		if reloaded.Questions[i].ID == question.ID {
			answered = &reloaded.Questions[i]
		}
	}
	if answered == nil {
		t.Fatal("question disappeared")
	}
	if !answered.IsAnswered() {
		t.Fatal("transcribed question should count as answered")
	}
	if answered.RawTranscript == nil || *answered.RawTranscript == "" {
		t.Error("expected a raw transcript")
	}
	if answered.ProcessingStatus != entities.QuestionProcessingComplete {
		t.Errorf("expected processing status complete, got %s", answered.ProcessingStatus)
	}

	// The audio landed in object storage
	if len(f.store.files) != 1 {
		t.Errorf("expected 1 stored object, got %d", len(f.store.files))
	}
}

func TestExportChapterPDF(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)
	if _, _, err := f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{}); err != nil {
		t.Fatalf("RequestChapterGeneration failed: %v", err)
	}

	data, filename, err := f.svc.ExportChapter(ctx, f.userID, module.ID)
	if err != nil {
		t.Fatalf("ExportChapter failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("export should be a PDF document")
	}
	if !strings.HasSuffix(filename, ".pdf") {
		t.Errorf("unexpected filename %q", filename)
	}
}

func TestExportProjectRequiresApprovedModules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module := f.createReadyModule(t)
	if _, _, err := f.svc.RequestChapterGeneration(ctx, f.userID, module.ID, entities.NarrativeSettings{}); err != nil {
		t.Fatalf("RequestChapterGeneration failed: %v", err)
	}

	// Nothing approved yet
	_, _, err := f.svc.ExportProject(ctx, f.userID, f.project.ID)
	if !errors.Is(err, uerr.ErrNoApprovedModules) {
		t.Fatalf("expected ErrNoApprovedModules, got %v", err)
	}

	if _, err := f.svc.ApproveModule(ctx, f.userID, module.ID); err != nil {
		t.Fatalf("ApproveModule failed: %v", err)
	}

	data, _, err := f.svc.ExportProject(ctx, f.userID, f.project.ID)
	if err != nil {
		t.Fatalf("ExportProject failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("export should be a PDF document")
	}

	project, err := f.projectRepo.FindByID(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if project.Status != entities.ProjectStatusExported {
		t.Errorf("expected project status %s, got %s", entities.ProjectStatusExported, project.Status)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	module, _, err := f.svc.CreateModule(ctx, f.userID, f.project.ID, "Early Years", "childhood")
	if err != nil {
		t.Fatalf("CreateModule failed: %v", err)
	}

	stranger := uuid.New()
	if _, err := f.svc.GetModule(ctx, stranger, module.ID); !errors.Is(err, uerr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := f.svc.RequestChapterGeneration(ctx, stranger, module.ID, entities.NarrativeSettings{}); !errors.Is(err, uerr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
