package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/grading"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// WeightLedger tracks and validates the assignment weight budget of a course.
type WeightLedger interface {
	Usage(ctx context.Context, courseID string) (dto.WeightUsageResponse, error)
	// Validate returns a *ValidationError when proposed would overflow the budget.
	Validate(ctx context.Context, courseID string, proposed float64, excludingAssignmentID string) error
	// Check applies the same rule to an already loaded course and assignment set.
	Check(course models.Course, assignments []models.Assignment, proposed float64, excludingAssignmentID string) error
}

type weightLedger struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	logger      zerolog.Logger
}

// NewWeightLedger constructs the ledger.
func NewWeightLedger(courses repository.CourseRepository, assignments repository.AssignmentRepository, logger zerolog.Logger) WeightLedger {
	return &weightLedger{
		courses:     courses,
		assignments: assignments,
		logger:      logger.With().Str("component", "weight_ledger").Logger(),
	}
}

func (l *weightLedger) Usage(ctx context.Context, courseID string) (dto.WeightUsageResponse, error) {
	course, assignments, err := l.load(ctx, courseID)
	if err != nil {
		return dto.WeightUsageResponse{}, err
	}

	total := grading.Clamp(allocatedWeight(course, assignments, ""))
	return dto.WeightUsageResponse{
		CourseID:  course.ID,
		Mode:      string(course.Mode()),
		Total:     total,
		Remaining: grading.Clamp(grading.Budget - total),
	}, nil
}

func (l *weightLedger) Validate(ctx context.Context, courseID string, proposed float64, excludingAssignmentID string) error {
	course, assignments, err := l.load(ctx, courseID)
	if err != nil {
		return err
	}

	return l.Check(course, assignments, proposed, excludingAssignmentID)
}

func (l *weightLedger) Check(course models.Course, assignments []models.Assignment, proposed float64, excludingAssignmentID string) error {
	if proposed < 0 {
		return invalid("weight", proposed, "must not be negative")
	}

	// Category mode scores through the category map; item weights are informational.
	if course.Mode() == models.WeightModeCategory {
		return nil
	}

	total := allocatedWeight(course, assignments, excludingAssignmentID) + proposed*explicitScale(course)
	if err := budgetViolation("weight", proposed, total); err != nil {
		observability.WeightRejections().Inc()
		l.logger.Debug().Str("course_id", course.ID).Float64("total", total).Msg("weight budget exceeded")
		return err
	}

	return nil
}

// budgetViolation reports a per-item total above the budget, or nil.
func budgetViolation(field string, value interface{}, total float64) error {
	if !grading.ExceedsBudget(total) {
		return nil
	}
	return &ValidationError{
		Field:      field,
		Value:      value,
		Message:    fmt.Sprintf("total course weight would be %.1f%%, which exceeds 100%%", total),
		ExceededBy: total - grading.Budget,
	}
}

func (l *weightLedger) load(ctx context.Context, courseID string) (models.Course, []models.Assignment, error) {
	course, err := l.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, nil, notFound("course", courseID)
		}
		return models.Course{}, nil, err
	}

	assignments, err := l.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return models.Course{}, nil, err
	}

	return course, assignments, nil
}

// allocatedWeight sums assignment weights in percentage points, skipping one assignment id.
func allocatedWeight(course models.Course, assignments []models.Assignment, excludingID string) float64 {
	var total float64
	for _, assignment := range assignments {
		if excludingID != "" && assignment.ID == excludingID {
			continue
		}
		total += assignment.Weight
	}
	return total * explicitScale(course)
}

// explicitScale only converts when the course declares fractional weights; the
// sum heuristic is reserved for grade aggregation.
func explicitScale(course models.Course) float64 {
	if course.WeightUnit == models.WeightUnitFraction {
		return 100
	}
	return 1
}
