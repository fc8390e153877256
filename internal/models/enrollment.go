package models

import "time"

// EnrollmentStatus tracks a student's standing in a course.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentDropped, EnrollmentCompleted:
		return true
	default:
		return false
	}
}

// Enrollment links a student profile to a course.
type Enrollment struct {
	ID         string           `gorm:"primaryKey;size:64" json:"id"`
	StudentKey string           `gorm:"size:128;not null;uniqueIndex:idx_enrollment_student_course" json:"student_key"`
	CourseID   string           `gorm:"size:64;not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	Status     EnrollmentStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
