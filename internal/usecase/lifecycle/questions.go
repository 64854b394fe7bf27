package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
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

type questionsPayload struct {
	ModuleID uuid.UUID `json:"module_id"`
}

type transcribePayload struct {
	ModuleID   uuid.UUID `json:"module_id"`
	QuestionID uuid.UUID `json:"question_id"`
	AudioKey   string    `json:"audio_key"`
}

// AnswerQuestion records a typed answer and promotes the module from
// QUESTIONS_GENERATED to IN_PROGRESS on the first answer
func (s *service) AnswerQuestion(ctx context.Context, userID, moduleID, questionID uuid.UUID, response string) (*entities.ModuleQuestion, error) {
	if strings.TrimSpace(response) == "" {
		return nil, uerr.ErrInvalidInput
	}

	module, _, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.FindByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil || question.ModuleID != moduleID {
		return nil, uerr.ErrQuestionNotFound
	}

	question.SetResponse(response)
	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	s.promoteToInProgress(ctx, module)

	return question, nil
}

// AnswerQuestionWithAudio stores the uploaded recording and dispatches a
// transcription job. The transcript becomes the question's response.
func (s *service) AnswerQuestionWithAudio(ctx context.Context, userID, moduleID, questionID uuid.UUID, audio io.Reader, filename string, size int64, contentType string) (*entities.Job, error) {
	module, project, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.FindByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil || question.ModuleID != moduleID {
		return nil, uerr.ErrQuestionNotFound
	}

	key := storage.AudioObjectName(project.ID.String(), moduleID.String(), questionID.String(), filename)

	question.ProcessingStatus = entities.QuestionProcessingUploading
	question.UpdatedAt = time.Now()
	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	if err := s.store.UploadFile(ctx, key, audio, size, contentType); err != nil {
		question.MarkProcessingFailed(err.Error())
		s.questionRepo.Update(ctx, question)
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	question.AudioFileKey = &key
	question.ProcessingStatus = entities.QuestionProcessingProcessing
	question.UpdatedAt = time.Now()
	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	payload := transcribePayload{ModuleID: module.ID, QuestionID: questionID, AudioKey: key}
	job, err := s.tracker.Begin(ctx, project.ID, userID, entities.JobTypeTranscribeAudio, payload)
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, dispatch.EventTranscribeAudio, job.ID, payload); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Transcription dispatch failed",
				zap.String("question_id", questionID.String()),
				zap.Error(err),
			)
		}
	}

	return job, nil
}

// promoteToInProgress moves a freshly answered module forward. Losing the
// claim just means the module already moved.
func (s *service) promoteToInProgress(ctx context.Context, module *entities.Module) {
	if module.Status != entities.ModuleStatusQuestionsGenerated {
		return
	}
	if _, err := s.moduleRepo.TransitionStatus(ctx, module.ID, entities.ModuleStatusQuestionsGenerated, entities.ModuleStatusInProgress); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to promote module to in_progress",
				zap.String("module_id", module.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// handleGenerateQuestions produces the module's interview question set.
// Module 1 gets foundational questions; later modules get follow-ups
// grounded on the project's answered questions so far.
func (s *service) handleGenerateQuestions(ctx context.Context, event dispatch.Event) error {
	var payload questionsPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return fmt.Errorf("bad payload: %w", err)
	}

	if err := s.tracker.Start(ctx, event.JobID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to mark job running", zap.Error(err))
	}
	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressStarted)

	module, err := s.moduleRepo.FindByID(ctx, payload.ModuleID)
	if err == nil && module == nil {
		err = uerr.ErrModuleNotFound
	}
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	project, err := s.projectRepo.FindByIDWithInterviewee(ctx, module.ProjectID)
	if err == nil && (project == nil || project.Interviewee == nil) {
		err = uerr.ErrIntervieweeNotFound
	}
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	req := ai.QuestionRequest{
		Topic:           module.Title,
		IntervieweeName: project.Interviewee.Name,
		BirthYear:       project.Interviewee.BirthYear,
		Generation:      project.Interviewee.Generation,
		Count:           DefaultQuestionCount,
	}

	var generated []ai.GeneratedQuestion
	if module.ModuleNumber == 1 {
		generated, err = s.gateway.GenerateQuestions(ctx, req)
	} else {
		req.Answered, _ = s.answeredBefore(ctx, project.ID, module.ModuleNumber)
		if len(req.Answered) == 0 {
			generated, err = s.gateway.GenerateQuestions(ctx, req)
		} else {
			generated, err = s.gateway.GenerateFollowUpQuestions(ctx, req)
		}
	}
	if err != nil {
		s.failModule(ctx, module, entities.ModuleStatusDraft)
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressProviderOK)

	questions := make([]entities.ModuleQuestion, 0, len(generated))
	now := time.Now()
	for _, q := range generated {
		questions = append(questions, entities.ModuleQuestion{
			ID:               uuid.New(),
			ModuleID:         module.ID,
			Question:         q.Text,
			Order:            q.Order,
			Category:         module.Theme,
			ProcessingStatus: entities.QuestionProcessingRecording,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	if err := s.questionRepo.CreateBatch(ctx, questions); err != nil {
		s.failModule(ctx, module, entities.ModuleStatusDraft)
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressPersisting)

	if _, err := s.moduleRepo.TransitionStatus(ctx, module.ID, entities.ModuleStatusDraft, entities.ModuleStatusQuestionsGenerated); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	if s.logger != nil {
		s.logger.Info("✅ Questions generated",
			zap.String("module_id", module.ID.String()),
			zap.Int("count", len(questions)),
		)
	}

	return s.tracker.Succeed(ctx, event.JobID, map[string]interface{}{
		"module_id":      module.ID,
		"question_count": len(questions),
	})
}

// answeredBefore collects answered question/response pairs from the
// project's earlier modules
func (s *service) answeredBefore(ctx context.Context, projectID uuid.UUID, beforeNumber int) ([]ai.QuestionAnswer, error) {
	modules, err := s.moduleRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var pairs []ai.QuestionAnswer
	for _, m := range modules {
		if m.ModuleNumber >= beforeNumber {
			continue
		}
		questions, err := s.questionRepo.ListByModule(ctx, m.ID)
		if err != nil {
			continue
		}
		for _, q := range questions {
			if q.IsAnswered() {
				pairs = append(pairs, ai.QuestionAnswer{Question: q.Question, Answer: *q.Response})
			}
		}
	}
	return pairs, nil
}

// handleTranscribeAudio transcribes a stored recording and records the
// transcript as the question's answer
func (s *service) handleTranscribeAudio(ctx context.Context, event dispatch.Event) error {
	var payload transcribePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return fmt.Errorf("bad payload: %w", err)
	}

	if err := s.tracker.Start(ctx, event.JobID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to mark job running", zap.Error(err))
	}
	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressStarted)

	question, err := s.questionRepo.FindByID(ctx, payload.QuestionID)
	if err == nil && question == nil {
		err = uerr.ErrQuestionNotFound
	}
	if err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	audioURL, err := s.store.GetFileURL(ctx, payload.AudioKey, time.Hour)
	if err != nil {
		question.MarkProcessingFailed(err.Error())
		s.questionRepo.Update(ctx, question)
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	result, err := s.transcriber.TranscribeAudio(ctx, audioURL)
	if err != nil {
		question.MarkProcessingFailed(err.Error())
		s.questionRepo.Update(ctx, question)
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressProviderOK)

	question.RawTranscript = &result.Text
	question.SetResponse(result.Text)
	if result.DurationMS > 0 {
		seconds := result.DurationMS / 1000
		question.Duration = &seconds
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		s.tracker.Fail(ctx, event.JobID, err)
		return err
	}

	s.tracker.Checkpoint(ctx, event.JobID, jobs.ProgressPersisting)

	if module, merr := s.moduleRepo.FindByID(ctx, payload.ModuleID); merr == nil && module != nil {
		s.promoteToInProgress(ctx, module)
	}

	if s.logger != nil {
		s.logger.Info("✅ Audio answer transcribed",
			zap.String("question_id", question.ID.String()),
			zap.Int("text_length", len(result.Text)),
			zap.Float64("confidence", result.Confidence),
		)
	}

	return s.tracker.Succeed(ctx, event.JobID, map[string]interface{}{
		"question_id": question.ID,
		"text":        result.Text,
		"confidence":  result.Confidence,
		"duration_ms": result.DurationMS,
	})
}

// failModule parks a module in error state; the recovery transition out
// of error goes back through the question flow
func (s *service) failModule(ctx context.Context, module *entities.Module, from entities.ModuleStatus) {
	if _, err := s.moduleRepo.TransitionStatus(ctx, module.ID, from, entities.ModuleStatusError); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to park module in error state",
				zap.String("module_id", module.ID.String()),
				zap.Error(err),
			)
		}
	}
}
