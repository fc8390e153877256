package dto

import (
	"time"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// SubmissionUpsertRequest saves a student's hand-in for an assignment.
type SubmissionUpsertRequest struct {
	ArtifactRef string `json:"artifact_ref" validate:"required,max=512"`
}

// GradeSubmissionRequest is used by instructors to grade a submission.
type GradeSubmissionRequest struct {
	Points   *float64 `json:"points" validate:"required,gte=0"`
	Feedback string   `json:"feedback" validate:"omitempty,max=4000"`
}

// SubmissionGradeResponse serializes the grade sub-record.
type SubmissionGradeResponse struct {
	Points   *float64   `json:"points"`
	Percent  *float64   `json:"percent"`
	GradedAt *time.Time `json:"graded_at"`
	GraderID *string    `json:"grader_id"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           string                  `json:"id"`
	AssignmentID string                  `json:"assignment_id"`
	CourseID     string                  `json:"course_id"`
	StudentKey   string                  `json:"student_key"`
	ArtifactRef  string                  `json:"artifact_ref"`
	SubmittedAt  time.Time               `json:"submitted_at"`
	Grade        SubmissionGradeResponse `json:"grade"`
	Feedback     string                  `json:"feedback"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		CourseID:     model.CourseID,
		StudentKey:   model.StudentKey,
		ArtifactRef:  model.ArtifactRef,
		SubmittedAt:  model.SubmittedAt,
		Grade: SubmissionGradeResponse{
			Points:   model.Grade.Points,
			Percent:  model.Grade.Percent,
			GradedAt: model.Grade.GradedAt,
			GraderID: model.Grade.GraderID,
		},
		Feedback: model.Feedback,
	}
}
