package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// EnrollmentRepository provides access to enrollments.
type EnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentKey string, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error)
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentKey string, statuses ...models.EnrollmentStatus) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Where("student_key = ?", studentKey)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var enrollments []models.Enrollment
	if err := query.Order("course_id ASC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_key"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(enrollment).Error
}
