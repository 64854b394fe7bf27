package entities

import (
	"time"

	"github.com/google/uuid"
)

// ModuleStatus represents the current status of a memoir module
type ModuleStatus string

const (
	ModuleStatusDraft              ModuleStatus = "draft"
	ModuleStatusQuestionsGenerated ModuleStatus = "questions_generated"
	ModuleStatusInProgress         ModuleStatus = "in_progress"
	ModuleStatusGeneratingChapter  ModuleStatus = "generating_chapter"
	ModuleStatusChapterGenerated   ModuleStatus = "chapter_generated"
	ModuleStatusApproved           ModuleStatus = "approved"
	ModuleStatusError              ModuleStatus = "error"
)

// moduleTransitions is the allowed-transition table for module statuses.
// Transitions are forward-only; the error status is reachable from every
// in-flight state, and recovery from error re-enters the question flow.
var moduleTransitions = map[ModuleStatus][]ModuleStatus{
	ModuleStatusDraft:              {ModuleStatusQuestionsGenerated, ModuleStatusError},
	ModuleStatusQuestionsGenerated: {ModuleStatusInProgress, ModuleStatusGeneratingChapter, ModuleStatusError},
	ModuleStatusInProgress:         {ModuleStatusGeneratingChapter, ModuleStatusError},
	ModuleStatusGeneratingChapter:  {ModuleStatusChapterGenerated, ModuleStatusQuestionsGenerated, ModuleStatusInProgress, ModuleStatusError},
	ModuleStatusChapterGenerated:   {ModuleStatusGeneratingChapter, ModuleStatusApproved, ModuleStatusError},
	ModuleStatusApproved:           {},
	ModuleStatusError:              {ModuleStatusQuestionsGenerated, ModuleStatusInProgress, ModuleStatusDraft},
}

// CanTransition reports whether a module status change is allowed
func CanTransition(from, to ModuleStatus) bool {
	for _, next := range moduleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Module is one chapter-sized unit of the memoir, with its own question
// set and its own chapter versions.
type Module struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"project_id"`
	ModuleNumber int          `gorm:"not null" json:"module_number"`
	Title        string       `gorm:"type:varchar(255);not null" json:"title"`
	Theme        string       `gorm:"type:varchar(255)" json:"theme"`
	Status       ModuleStatus `gorm:"type:varchar(30);not null;default:'draft';index" json:"status"`
	ApprovedAt   *time.Time   `json:"approved_at,omitempty"`
	Questions    []ModuleQuestion `gorm:"foreignKey:ModuleID" json:"questions,omitempty"`
	Chapters     []ModuleChapter  `gorm:"foreignKey:ModuleID" json:"chapters,omitempty"`
	CreatedAt    time.Time    `gorm:"default:now()" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Module
func (Module) TableName() string {
	return "modules"
}

// NewModule creates a new module in draft state
func NewModule(projectID uuid.UUID, moduleNumber int, title, theme string) *Module {
	return &Module{
		ID:           uuid.New(),
		ProjectID:    projectID,
		ModuleNumber: moduleNumber,
		Title:        title,
		Theme:        theme,
		Status:       ModuleStatusDraft,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// IsApproved checks whether the module has been approved
func (m *Module) IsApproved() bool {
	return m.Status == ModuleStatusApproved
}

// IsGenerating checks whether chapter generation is in flight
func (m *Module) IsGenerating() bool {
	return m.Status == ModuleStatusGeneratingChapter
}

// AnsweredThreshold returns the number of answered questions required
// before a chapter may be generated: ceil(0.5 × total).
func AnsweredThreshold(total int) int {
	return (total + 1) / 2
}
