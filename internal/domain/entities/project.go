package entities

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents where a memoir project is in its lifecycle
type ProjectStatus string

const (
	ProjectStatusSetup            ProjectStatus = "setup"
	ProjectStatusIntervieweeAdded ProjectStatus = "interviewee_added"
	ProjectStatusActive           ProjectStatus = "active"
	ProjectStatusModuleInProgress ProjectStatus = "module_in_progress"
	ProjectStatusGenerating       ProjectStatus = "generating"
	ProjectStatusReview           ProjectStatus = "review"
	ProjectStatusCompleted        ProjectStatus = "completed"
	ProjectStatusExported         ProjectStatus = "exported"
	ProjectStatusPaused           ProjectStatus = "paused"
	ProjectStatusArchived         ProjectStatus = "archived"
	ProjectStatusError            ProjectStatus = "error"
	ProjectStatusDeleted          ProjectStatus = "deleted"
)

// Project represents one memoir under construction
type Project struct {
	ID                    uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                 string        `gorm:"type:varchar(255);not null" json:"title"`
	Status                ProjectStatus `gorm:"type:varchar(30);not null;default:'setup';index" json:"status"`
	CurrentModuleNumber   int           `gorm:"default:0" json:"current_module_number"`
	TotalModulesCompleted int           `gorm:"default:0" json:"total_modules_completed"`
	OwnerID               uuid.UUID     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner                 *User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Interviewee           *Interviewee  `gorm:"foreignKey:ProjectID" json:"interviewee,omitempty"`
	Modules               []Module      `gorm:"foreignKey:ProjectID" json:"modules,omitempty"`
	CreatedAt             time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt             time.Time     `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new project in setup state
func NewProject(ownerID uuid.UUID, title string) *Project {
	return &Project{
		ID:        uuid.New(),
		Title:     title,
		Status:    ProjectStatusSetup,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsOwnedBy checks project ownership against a session user
func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

// Interviewee is the subject of the memoir; its profile personalizes
// AI-generated questions. One per project, effectively immutable after
// the initial save.
type Interviewee struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;unique;not null" json:"project_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Relationship string    `gorm:"type:varchar(100)" json:"relationship"`
	BirthYear    int       `gorm:"not null" json:"birth_year"`
	Generation   string    `gorm:"type:varchar(50)" json:"generation"`
	Topics       Topics    `gorm:"type:jsonb;serializer:json" json:"topics"`
	CreatedAt    time.Time `gorm:"default:now()" json:"created_at"`
}

// Topics is the list of themes the interviewee wants covered
type Topics []string

// TableName specifies the table name for Interviewee
func (Interviewee) TableName() string {
	return "interviewees"
}

// GenerationForBirthYear derives a generation label from a birth year
func GenerationForBirthYear(year int) string {
	switch {
	case year < 1928:
		return "Greatest Generation"
	case year < 1946:
		return "Silent Generation"
	case year < 1965:
		return "Baby Boomer"
	case year < 1981:
		return "Generation X"
	case year < 1997:
		return "Millennial"
	default:
		return "Generation Z"
	}
}

// NewInterviewee creates an interviewee profile for a project
func NewInterviewee(projectID uuid.UUID, name, relationship string, birthYear int, topics []string) *Interviewee {
	return &Interviewee{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Name:         name,
		Relationship: relationship,
		BirthYear:    birthYear,
		Generation:   GenerationForBirthYear(birthYear),
		Topics:       topics,
		CreatedAt:    time.Now(),
	}
}
