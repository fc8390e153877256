package models

import "time"

// AssignmentCategory groups assignments for category-mode grading.
type AssignmentCategory string

const (
	CategoryHomework      AssignmentCategory = "homework"
	CategoryQuiz          AssignmentCategory = "quiz"
	CategoryLab           AssignmentCategory = "lab"
	CategoryProject       AssignmentCategory = "project"
	CategoryMidterm       AssignmentCategory = "midterm"
	CategoryFinal         AssignmentCategory = "final"
	CategoryParticipation AssignmentCategory = "participation"
	CategoryOther         AssignmentCategory = "other"
)

// Valid returns true when the category is one of the fixed set.
func (c AssignmentCategory) Valid() bool {
	switch c {
	case CategoryHomework, CategoryQuiz, CategoryLab, CategoryProject,
		CategoryMidterm, CategoryFinal, CategoryParticipation, CategoryOther:
		return true
	default:
		return false
	}
}

// Assignment is a gradable item contributing to its course weight budget.
type Assignment struct {
	ID        string             `gorm:"primaryKey;size:64" json:"id"`
	CourseID  string             `gorm:"size:64;not null;index" json:"course_id"`
	Title     string             `gorm:"size:255;not null" json:"title"`
	Category  AssignmentCategory `gorm:"size:32;not null" json:"category"`
	Weight    float64            `gorm:"not null;default:0" json:"weight"`
	MaxPoints float64            `gorm:"not null" json:"max_points"`
	DueAt     time.Time          `gorm:"not null" json:"due_at"`
	OwnerID   string             `gorm:"size:64;not null" json:"owner_id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueAt)
}
