package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Narrative settings defaults
const (
	DefaultNarrativePerson = "first"
	DefaultNarrativeTone   = "warm"
	DefaultNarrativeStyle  = "conversational"
)

// ModuleChapter is one version of the narrative prose generated from a
// module's answered questions. Rows are append-only: every regeneration
// creates a new row with version = max(existing)+1, and only the highest
// version is treated as current.
type ModuleChapter struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ModuleID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"module_id"`
	Content               string     `gorm:"type:text" json:"content"`
	WordCount             int        `gorm:"default:0" json:"word_count"`
	Version               int        `gorm:"not null;default:1" json:"version"`
	NarrativePerson       string     `gorm:"type:varchar(20);default:'first'" json:"narrative_person"`
	NarrativeTone         string     `gorm:"type:varchar(50);default:'warm'" json:"narrative_tone"`
	NarrativeStyle        string     `gorm:"type:varchar(50);default:'conversational'" json:"narrative_style"`
	IllustrationURL       *string    `gorm:"type:text" json:"illustration_url,omitempty"`
	IllustrationPrompt    *string    `gorm:"type:text" json:"illustration_prompt,omitempty"`
	IllustrationGeneratedAt *time.Time `json:"illustration_generated_at,omitempty"`
	CreatedAt             time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for ModuleChapter
func (ModuleChapter) TableName() string {
	return "module_chapters"
}

// NarrativeSettings carries the voice options for chapter generation
type NarrativeSettings struct {
	Person string `json:"person"`
	Tone   string `json:"tone"`
	Style  string `json:"style"`
}

// WithDefaults fills empty narrative settings with the defaults
func (s NarrativeSettings) WithDefaults() NarrativeSettings {
	if s.Person == "" {
		s.Person = DefaultNarrativePerson
	}
	if s.Tone == "" {
		s.Tone = DefaultNarrativeTone
	}
	if s.Style == "" {
		s.Style = DefaultNarrativeStyle
	}
	return s
}

// NewModuleChapter creates an empty chapter row at the given version
func NewModuleChapter(moduleID uuid.UUID, version int, settings NarrativeSettings) *ModuleChapter {
	settings = settings.WithDefaults()
	return &ModuleChapter{
		ID:              uuid.New(),
		ModuleID:        moduleID,
		Version:         version,
		NarrativePerson: settings.Person,
		NarrativeTone:   settings.Tone,
		NarrativeStyle:  settings.Style,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// Settings returns the chapter's narrative settings
func (c *ModuleChapter) Settings() NarrativeSettings {
	return NarrativeSettings{
		Person: c.NarrativePerson,
		Tone:   c.NarrativeTone,
		Style:  c.NarrativeStyle,
	}
}

// SetContent stores generated prose and recomputes the word count
func (c *ModuleChapter) SetContent(content string) {
	c.Content = content
	c.WordCount = len(strings.Fields(content))
	c.UpdatedAt = time.Now()
}

// SetIllustration records a generated or uploaded illustration
func (c *ModuleChapter) SetIllustration(url, prompt string) {
	now := time.Now()
	c.IllustrationURL = &url
	if prompt != "" {
		c.IllustrationPrompt = &prompt
	}
	c.IllustrationGeneratedAt = &now
	c.UpdatedAt = now
}
