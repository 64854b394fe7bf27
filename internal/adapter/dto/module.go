package dto

import (
	"time"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
)

// CreateModuleRequest is the payload for starting a memoir module
type CreateModuleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Theme string `json:"theme" validate:"max=255"`
}

// AnswerQuestionRequest is the payload for a typed answer
type AnswerQuestionRequest struct {
	Response string `json:"response" validate:"required,min=1"`
}

// NarrativeSettingsRequest carries optional voice settings
type NarrativeSettingsRequest struct {
	Person string `json:"person" validate:"omitempty,oneof=first third"`
	Tone   string `json:"tone" validate:"omitempty,max=50"`
	Style  string `json:"style" validate:"omitempty,max=50"`
}

// GenerateChapterRequest is the payload for chapter generation
type GenerateChapterRequest struct {
	Settings *NarrativeSettingsRequest `json:"settings"`
}

// RegenerateChapterRequest is the payload for chapter regeneration
type RegenerateChapterRequest struct {
	Feedback string                    `json:"feedback" validate:"max=2000"`
	Settings *NarrativeSettingsRequest `json:"settings"`
}

// GenerateImageRequest is the payload for illustration generation
type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"max=1000"`
}

// ToSettings converts the request settings to entity settings
func (r *NarrativeSettingsRequest) ToSettings() entities.NarrativeSettings {
	if r == nil {
		return entities.NarrativeSettings{}
	}
	return entities.NarrativeSettings{
		Person: r.Person,
		Tone:   r.Tone,
		Style:  r.Style,
	}
}

// QuestionResponse is the public view of an interview question
type QuestionResponse struct {
	ID               string     `json:"id"`
	Question         string     `json:"question"`
	Category         string     `json:"category,omitempty"`
	Order            int        `json:"order"`
	Response         *string    `json:"response,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	ProcessingStatus string     `json:"processing_status"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	Duration         *int       `json:"duration,omitempty"`
}

// ChapterResponse is the public view of a chapter version
type ChapterResponse struct {
	ID              string     `json:"id"`
	Content         string     `json:"content,omitempty"`
	WordCount       int        `json:"word_count"`
	Version         int        `json:"version"`
	NarrativePerson string     `json:"narrative_person"`
	NarrativeTone   string     `json:"narrative_tone"`
	NarrativeStyle  string     `json:"narrative_style"`
	IllustrationURL *string    `json:"illustration_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ModuleResponse is the public view of a module
type ModuleResponse struct {
	ID              string             `json:"id"`
	ProjectID       string             `json:"project_id"`
	ModuleNumber    int                `json:"module_number"`
	Title           string             `json:"title"`
	Theme           string             `json:"theme,omitempty"`
	Status          string             `json:"status"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CurrentChapter  *ChapterResponse   `json:"current_chapter,omitempty"`
	ChapterVersions int                `json:"chapter_versions"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ModuleJobResponse pairs a module with the job a client should poll
type ModuleJobResponse struct {
	Module ModuleResponse `json:"module"`
	Job    JobResponse    `json:"job"`
}

// ChapterJobResponse pairs a pending chapter version with its job
type ChapterJobResponse struct {
	Chapter ChapterResponse `json:"chapter"`
	Job     JobResponse     `json:"job"`
}

// NewQuestionResponse maps a question entity to its public view
func NewQuestionResponse(q *entities.ModuleQuestion) QuestionResponse {
	return QuestionResponse{
		ID:               q.ID.String(),
		Question:         q.Question,
		Category:         q.Category,
		Order:            q.Order,
		Response:         q.Response,
		RespondedAt:      q.RespondedAt,
		ProcessingStatus: string(q.ProcessingStatus),
		ErrorMessage:     q.ErrorMessage,
		Duration:         q.Duration,
	}
}

// NewChapterResponse maps a chapter entity to its public view
func NewChapterResponse(c *entities.ModuleChapter) *ChapterResponse {
	if c == nil {
		return nil
	}
	return &ChapterResponse{
		ID:              c.ID.String(),
		Content:         c.Content,
		WordCount:       c.WordCount,
		Version:         c.Version,
		NarrativePerson: c.NarrativePerson,
		NarrativeTone:   c.NarrativeTone,
		NarrativeStyle:  c.NarrativeStyle,
		IllustrationURL: c.IllustrationURL,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// NewModuleResponse maps a module entity to its public view. Preloaded
// questions and chapters are included; the highest chapter version is
// surfaced as the current chapter.
func NewModuleResponse(m *entities.Module) ModuleResponse {
	resp := ModuleResponse{
		ID:              m.ID.String(),
		ProjectID:       m.ProjectID.String(),
		ModuleNumber:    m.ModuleNumber,
		Title:           m.Title,
		Theme:           m.Theme,
		Status:          string(m.Status),
		ApprovedAt:      m.ApprovedAt,
		ChapterVersions: len(m.Chapters),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	for i := range m.Questions {
		resp.Questions = append(resp.Questions, NewQuestionResponse(&m.Questions[i]))
	}

	if len(m.Chapters) > 0 {
		current := &m.Chapters[0]
		for i := range m.Chapters {
			if m.Chapters[i].Version > current.Version {
				current = &m.Chapters[i]
			}
		}
		resp.CurrentChapter = NewChapterResponse(current)
	}

	return resp
}

// NewModuleListResponse maps a slice of modules without children
func NewModuleListResponse(modules []*entities.Module) []ModuleResponse {
	out := make([]ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, NewModuleResponse(m))
	}
	return out
}
