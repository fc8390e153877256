package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// WeightScope is the view of a course's assignment set inside a weight transaction.
// Reads observe every write committed before the scope was opened.
type WeightScope interface {
	Course() models.Course
	Assignments() ([]models.Assignment, error)
	Save(assignment *models.Assignment) error
	Delete(id string) error
	// SaveGrading stores the course's grading scheme under the same lock.
	SaveGrading(course *models.Course) error
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	GetByID(ctx context.Context, id string) (models.Assignment, error)
	// WithWeightScope runs fn in a serializable transaction holding the course's weight lock.
	WithWeightScope(ctx context.Context, courseID string, fn func(scope WeightScope) error) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_at ASC").
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) WithWeightScope(ctx context.Context, courseID string, fn func(scope WeightScope) error) error {
	return runSerializable(ctx, r.db, func(tx *gorm.DB) error {
		// Bumping the revision takes the course row lock before the budget is read.
		result := tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			UpdateColumn("weight_revision", gorm.Expr("weight_revision + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var course models.Course
		if err := tx.Where("id = ?", courseID).First(&course).Error; err != nil {
			return err
		}

		return fn(&weightScope{tx: tx, course: course})
	})
}

type weightScope struct {
	tx     *gorm.DB
	course models.Course
}

func (s *weightScope) Course() models.Course {
	return s.course
}

func (s *weightScope) Assignments() ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := s.tx.Where("course_id = ?", s.course.ID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *weightScope) Save(assignment *models.Assignment) error {
	assignment.CourseID = s.course.ID
	return s.tx.Save(assignment).Error
}

func (s *weightScope) Delete(id string) error {
	result := s.tx.Where("course_id = ?", s.course.ID).Delete(&models.Assignment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *weightScope) SaveGrading(course *models.Course) error {
	if course.ID != s.course.ID {
		return gorm.ErrRecordNotFound
	}
	if err := saveGrading(s.tx, course); err != nil {
		return err
	}
	s.course = *course
	return nil
}
