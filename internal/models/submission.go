package models

import (
	"fmt"
	"time"
)

// SubmissionGrade is the instructor-owned part of a submission.
type SubmissionGrade struct {
	Points   *float64   `json:"points"`
	Percent  *float64   `json:"percent"`
	GradedAt *time.Time `json:"graded_at"`
	GraderID *string    `gorm:"size:64" json:"grader_id"`
}

// Submission is the single live hand-in of a student for an assignment.
type Submission struct {
	ID           string          `gorm:"primaryKey;size:160" json:"id"`
	AssignmentID string          `gorm:"size:64;not null;index" json:"assignment_id"`
	CourseID     string          `gorm:"size:64;not null;index" json:"course_id"`
	StudentKey   string          `gorm:"size:128;not null;index" json:"student_key"`
	ArtifactRef  string          `gorm:"size:512" json:"artifact_ref"`
	SubmittedAt  time.Time       `gorm:"not null" json:"submitted_at"`
	Grade        SubmissionGrade `gorm:"embedded;embeddedPrefix:grade_" json:"grade"`
	Feedback     string          `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SubmissionKey builds the deterministic identifier of a submission.
func SubmissionKey(assignmentID, studentKey string) string {
	return fmt.Sprintf("%s_%s", assignmentID, studentKey)
}

// IsGraded reports whether an instructor has graded the submission.
func (s Submission) IsGraded() bool {
	return s.Grade.GradedAt != nil
}

// PercentOf returns the graded percentage given the assignment's max points.
// The second value is false when no usable score is recorded.
func (s Submission) PercentOf(maxPoints float64) (float64, bool) {
	if !s.IsGraded() {
		return 0, false
	}
	if s.Grade.Points != nil && maxPoints > 0 {
		return *s.Grade.Points / maxPoints * 100, true
	}
	if s.Grade.Percent != nil {
		return *s.Grade.Percent, true
	}
	return 0, false
}
