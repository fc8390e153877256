package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// AttendanceRecordRequest marks one student for one session.
type AttendanceRecordRequest struct {
	StudentKey string `json:"student_key" validate:"required,max=128"`
	SessionID  string `json:"session_id" validate:"omitempty,max=64"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string `json:"status" validate:"required"`
}

// AttendanceRecordResponse serializes a stored attendance mark.
type AttendanceRecordResponse struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Date       time.Time `json:"date"`
	StudentKey string    `json:"student_key"`
	Status     string    `json:"status"`
	MarkedBy   string    `json:"marked_by"`
}

// AttendanceResponse is a student's attendance ratio for a course.
type AttendanceResponse struct {
	CourseID   string `json:"course_id"`
	StudentKey string `json:"student_key"`
	Percentage int    `json:"percentage"`
	Attended   int    `json:"attended"`
	Total      int    `json:"total"`
}

// NewAttendanceRecordResponse converts a model into a DTO.
func NewAttendanceRecordResponse(model models.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:         model.ID,
		CourseID:   model.CourseID,
		SessionID:  model.SessionID,
		Date:       model.Date,
		StudentKey: model.StudentKey,
		Status:     string(model.Status),
		MarkedBy:   model.MarkedBy,
	}
}
