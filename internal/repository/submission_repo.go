package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
)

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	GetByKey(ctx context.Context, assignmentID, studentKey string) (models.Submission, error)
	ListByStudent(ctx context.Context, courseID, studentKey string) ([]models.Submission, error)
	Upsert(ctx context.Context, submission *models.Submission) error
	SaveGrade(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByKey(ctx context.Context, assignmentID, studentKey string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("id = ?", models.SubmissionKey(assignmentID, studentKey)).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, courseID, studentKey string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("student_key = ?", studentKey).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// Upsert writes the student-owned fields; a resubmission overwrites the previous artifact.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	submission.ID = models.SubmissionKey(submission.AssignmentID, submission.StudentKey)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"artifact_ref", "submitted_at", "updated_at"}),
	}).Create(submission).Error
}

func (r *submissionRepository) SaveGrade(ctx context.Context, submission *models.Submission) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"grade_points":    submission.Grade.Points,
			"grade_percent":   submission.Grade.Percent,
			"grade_graded_at": submission.Grade.GradedAt,
			"grade_grader_id": submission.Grade.GraderID,
			"feedback":        submission.Feedback,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
