package models

import "time"

// TeacherAssignment records that a teacher was placed on a course.
type TeacherAssignment struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	CourseID   string    `gorm:"size:64;not null;index" json:"course_id"`
	TeacherID  string    `gorm:"size:128;not null" json:"teacher_id"`
	AssignedBy string    `gorm:"size:128;not null" json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
}
