package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	Title     string   `json:"title" validate:"required,min=3,max=255"`
	Category  string   `json:"category" validate:"required,oneof=homework quiz lab project midterm final participation other"`
	Weight    *float64 `json:"weight" validate:"required,gte=0"`
	MaxPoints float64  `json:"max_points" validate:"required,gt=0"`
	DueAt     string   `json:"due_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentUpdateRequest describes a partial assignment update.
type AssignmentUpdateRequest struct {
	Title     *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Category  *string  `json:"category" validate:"omitempty,oneof=homework quiz lab project midterm final participation other"`
	Weight    *float64 `json:"weight" validate:"omitempty,gte=0"`
	MaxPoints *float64 `json:"max_points" validate:"omitempty,gt=0"`
	DueAt     *string  `json:"due_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Weight    float64   `json:"weight"`
	MaxPoints float64   `json:"max_points"`
	DueAt     time.Time `json:"due_at"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        model.ID,
		CourseID:  model.CourseID,
		Title:     model.Title,
		Category:  string(model.Category),
		Weight:    model.Weight,
		MaxPoints: model.MaxPoints,
		DueAt:     model.DueAt,
		OwnerID:   model.OwnerID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
