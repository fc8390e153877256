package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// AttendanceRepository provides access to session attendance records.
type AttendanceRepository interface {
	ListByStudent(ctx context.Context, courseID, studentKey string) ([]models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListByStudent(ctx context.Context, courseID, studentKey string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("student_key = ?", studentKey).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// Upsert stores one mark per (course, session, date, student); re-marking replaces the status.
func (r *attendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "course_id"},
			{Name: "session_id"},
			{Name: "date"},
			{Name: "student_key"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
	}).Create(record).Error
}
