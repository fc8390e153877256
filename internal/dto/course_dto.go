package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// AssignInstructorRequest places a teacher on a course.
type AssignInstructorRequest struct {
	TeacherID string `json:"teacher_id" validate:"required,max=128"`
}

// TeacherAssignmentResponse serializes a teacher assignment.
type TeacherAssignmentResponse struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	TeacherID  string    `json:"teacher_id"`
	AssignedBy string    `json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewTeacherAssignmentResponse converts a model into a DTO.
func NewTeacherAssignmentResponse(model models.TeacherAssignment) TeacherAssignmentResponse {
	return TeacherAssignmentResponse{
		ID:         model.ID,
		CourseID:   model.CourseID,
		TeacherID:  model.TeacherID,
		AssignedBy: model.AssignedBy,
		CreatedAt:  model.CreatedAt,
	}
}
