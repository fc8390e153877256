package models

import "time"

// UserIdentity is a profile record; id, subject id and email all identify the same person.
type UserIdentity struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	SubjectID   string    `gorm:"size:128;index" json:"subject_id"`
	Email       string    `gorm:"size:255;index" json:"email"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Role        string    `gorm:"size:32;not null;default:student" json:"role"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps profiles in the users table.
func (UserIdentity) TableName() string {
	return "users"
}
