package dto

import (
	"time"

	"github.com/mabel-app/mabel-backend/internal/domain/entities"
)

// CreateProjectRequest is the payload for starting a memoir project
type CreateProjectRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// CreateIntervieweeRequest is the payload for the subject profile
type CreateIntervieweeRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Relationship string   `json:"relationship" validate:"max=100"`
	BirthYear    int      `json:"birth_year" validate:"required,min=1900,max=2020"`
	Topics       []string `json:"topics" validate:"max=20,dive,min=1,max=100"`
}

// IntervieweeResponse is the public view of an interviewee
type IntervieweeResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Relationship string   `json:"relationship,omitempty"`
	BirthYear    int      `json:"birth_year"`
	Generation   string   `json:"generation"`
	Topics       []string `json:"topics,omitempty"`
}

// ProjectResponse is the public view of a project
type ProjectResponse struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	Status                string               `json:"status"`
	CurrentModuleNumber   int                  `json:"current_module_number"`
	TotalModulesCompleted int                  `json:"total_modules_completed"`
	Interviewee           *IntervieweeResponse `json:"interviewee,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// NewIntervieweeResponse maps an interviewee entity to its public view
func NewIntervieweeResponse(i *entities.Interviewee) *IntervieweeResponse {
	if i == nil {
		return nil
	}
	return &IntervieweeResponse{
		ID:           i.ID.String(),
		Name:         i.Name,
		Relationship: i.Relationship,
		BirthYear:    i.BirthYear,
		Generation:   i.Generation,
		Topics:       i.Topics,
	}
}

// NewProjectResponse maps a project entity to its public view
func NewProjectResponse(p *entities.Project) ProjectResponse {
	return ProjectResponse{
		ID:                    p.ID.String(),
		Title:                 p.Title,
		Status:                string(p.Status),
		CurrentModuleNumber:   p.CurrentModuleNumber,
		TotalModulesCompleted: p.TotalModulesCompleted,
		Interviewee:           NewIntervieweeResponse(p.Interviewee),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// NewProjectListResponse maps a slice of projects
func NewProjectListResponse(projects []*entities.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewProjectResponse(p))
	}
	return out
}
