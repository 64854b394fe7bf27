package lifecycle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
	uerr "github.com/mabel-app/mabel-backend/internal/usecase/errors"
	"github.com/mabel-app/mabel-backend/pkg/pdf"
)

// ExportChapter renders the module's current chapter as a PDF attachment
func (s *service) ExportChapter(ctx context.Context, userID, moduleID uuid.UUID) ([]byte, string, error) {
	module, project, err := s.ownedModule(ctx, userID, moduleID)
	if err != nil {
		return nil, "", err
	}

	chapter, err := s.chapterRepo.LatestByModule(ctx, moduleID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load chapter: %w", err)
	}
	if chapter == nil || chapter.Content == "" {
		return nil, "", uerr.ErrNoChapter
	}

	intervieweeName := ""
	if project.Interviewee != nil {
		intervieweeName = project.Interviewee.Name
	}

	doc := pdf.ChapterDocument{
		ProjectTitle:    project.Title,
		ModuleTitle:     module.Title,
		ModuleNumber:    module.ModuleNumber,
		IntervieweeName: intervieweeName,
		Content:         chapter.Content,
		Version:         chapter.Version,
	}
	s.attachIllustration(ctx, &doc, chapter)

	data, err := s.renderer.RenderChapter(doc)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Chapter PDF render failed",
				zap.String("module_id", moduleID.String()),
				zap.Error(err),
			)
		}
		return nil, "", fmt.Errorf("failed to render chapter pdf: %w", err)
	}

	filename := fmt.Sprintf("chapter-%d-%s.pdf", module.ModuleNumber, slugify(module.Title))
	return data, filename, nil
}

// ExportProject compiles every approved module's current chapter into one
// memoir PDF, in module-number order
func (s *service) ExportProject(ctx context.Context, userID, projectID uuid.UUID) ([]byte, string, error) {
	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, "", err
	}

	modules, err := s.moduleRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list modules: %w", err)
	}

	intervieweeName := ""
	if project.Interviewee != nil {
		intervieweeName = project.Interviewee.Name
	}

	memoir := pdf.MemoirDocument{
		ProjectTitle:    project.Title,
		IntervieweeName: intervieweeName,
	}

	for _, module := range modules {
		if !module.IsApproved() {
			continue
		}
		chapter, err := s.chapterRepo.LatestByModule(ctx, module.ID)
		if err != nil || chapter == nil || chapter.Content == "" {
			continue
		}

		doc := pdf.ChapterDocument{
			ProjectTitle:    project.Title,
			ModuleTitle:     module.Title,
			ModuleNumber:    module.ModuleNumber,
			IntervieweeName: intervieweeName,
			Content:         chapter.Content,
			Version:         chapter.Version,
		}
		s.attachIllustration(ctx, &doc, chapter)
		memoir.Chapters = append(memoir.Chapters, doc)
	}

	if len(memoir.Chapters) == 0 {
		return nil, "", uerr.ErrNoApprovedModules
	}

	data, err := s.renderer.RenderMemoir(memoir)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Memoir PDF render failed",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
		return nil, "", fmt.Errorf("failed to render memoir pdf: %w", err)
	}

	if err := s.projectRepo.UpdateStatus(ctx, projectID, entities.ProjectStatusExported); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to mark project exported", zap.Error(err))
	}

	if s.logger != nil {
		s.logger.Info("📕 Memoir exported",
			zap.String("project_id", projectID.String()),
			zap.Int("chapters", len(memoir.Chapters)),
			zap.Int("bytes", len(data)),
		)
	}

	filename := fmt.Sprintf("%s-memoir.pdf", slugify(project.Title))
	return data, filename, nil
}

// attachIllustration fetches the chapter's illustration bytes when one
// exists. A fetch failure drops the image, never the export.
func (s *service) attachIllustration(ctx context.Context, doc *pdf.ChapterDocument, chapter *entities.ModuleChapter) {
	if chapter.IllustrationURL == nil || *chapter.IllustrationURL == "" {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", *chapter.IllustrationURL, nil)
	if err != nil {
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to fetch illustration for export",
				zap.String("chapter_id", chapter.ID.String()),
				zap.Error(err),
			)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil || len(data) == 0 {
		return
	}

	doc.Illustration = data
	doc.IllustrationType = "png"
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "jpeg") || strings.Contains(ct, "jpg") {
		doc.IllustrationType = "jpg"
	}
}

// slugify turns a title into a safe filename fragment
func slugify(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('-')
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return slug
}
