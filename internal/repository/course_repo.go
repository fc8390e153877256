package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	SaveGrading(ctx context.Context, course *models.Course) error
	AssignInstructor(ctx context.Context, assignment *models.TeacherAssignment) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// SaveGrading persists the grading scheme columns, refusing to touch a finalized course.
func (r *courseRepository) SaveGrading(ctx context.Context, course *models.Course) error {
	return saveGrading(r.db.WithContext(ctx), course)
}

func saveGrading(db *gorm.DB, course *models.Course) error {
	result := db.Model(&models.Course{}).
		Where("id = ?", course.ID).
		Where("grading_finalized = ?", false).
		Updates(map[string]interface{}{
			"weight_mode":       course.WeightMode,
			"weight_unit":       course.WeightUnit,
			"category_weights":  course.CategoryWeights,
			"grading_finalized": course.GradingFinalized,
			"weight_revision":   gorm.Expr("weight_revision + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// AssignInstructor stores the teacher assignment and the course instructor in one transaction.
func (r *courseRepository) AssignInstructor(ctx context.Context, assignment *models.TeacherAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Course{}).
			Where("id = ?", assignment.CourseID).
			Update("instructor_id", assignment.TeacherID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
