package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/config"
	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/grading"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// GradeAggregator computes a student's overall percentage for a course.
type GradeAggregator interface {
	// OverallGrade only fails when the course does not exist; every other
	// fetch failure is logged and the affected item skipped.
	OverallGrade(ctx context.Context, studentKey, courseID string) (dto.OverallGradeResponse, error)
}

type gradeAggregator struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	identities  IdentityResolver
	cache       *GradeCache
	emptyPolicy string
	logger      zerolog.Logger
}

// NewGradeAggregator constructs the aggregator. cache may be nil.
func NewGradeAggregator(
	courses repository.CourseRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	identities IdentityResolver,
	cache *GradeCache,
	emptyCategoryPolicy string,
	logger zerolog.Logger,
) GradeAggregator {
	if emptyCategoryPolicy == "" {
		emptyCategoryPolicy = config.EmptyCategoryExclude
	}
	return &gradeAggregator{
		courses:     courses,
		assignments: assignments,
		submissions: submissions,
		identities:  identities,
		cache:       cache,
		emptyPolicy: emptyCategoryPolicy,
		logger:      logger.With().Str("component", "grade_aggregator").Logger(),
	}
}

// gradedItem is one graded submission together with its assignment.
type gradedItem struct {
	assignment models.Assignment
	percent    float64
}

func (a *gradeAggregator) OverallGrade(ctx context.Context, studentKey, courseID string) (dto.OverallGradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-gradebook-api/internal/service/grade_aggregator")
	ctx, span := tracer.Start(ctx, "grades.overall")
	span.SetAttributes(attribute.String("grades.course_id", courseID))
	defer span.End()

	studentKey = strings.TrimSpace(studentKey)
	result := dto.OverallGradeResponse{CourseID: courseID, StudentKey: studentKey, Mode: string(models.WeightModePerItem)}

	cached, version, ok := a.cache.Get(ctx, courseID, studentKey)
	if ok {
		span.SetAttributes(attribute.Bool("grades.cache_hit", true))
		return cached, nil
	}

	course, err := a.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "course not found")
			return dto.OverallGradeResponse{}, notFound("course", courseID)
		}
		a.skip("course", err, courseID)
		return result, nil
	}
	result.Mode = string(course.Mode())

	assignments, err := a.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		a.skip("assignments", err, courseID)
		return result, nil
	}

	submissionKey := a.identities.Resolve(ctx, studentKey).SubmissionKey(studentKey)

	graded := make([]gradedItem, 0, len(assignments))
	for _, assignment := range assignments {
		submission, err := a.submissions.GetByKey(ctx, assignment.ID, submissionKey)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				a.skip("submission", err, courseID)
			}
			continue
		}

		result.SubmittedCount++
		if !submission.IsGraded() {
			continue
		}
		result.GradedCount++

		percent, ok := submission.PercentOf(assignment.MaxPoints)
		if !ok {
			continue
		}
		graded = append(graded, gradedItem{assignment: assignment, percent: percent})
	}
	result.PendingCount = result.SubmittedCount - result.GradedCount

	switch course.Mode() {
	case models.WeightModeCategory:
		result.Percentage = a.categoryPercentage(course, graded)
	default:
		result.Percentage = perItemPercentage(course, assignments, graded)
	}

	observability.GradeComputations().WithLabelValues(result.Mode).Inc()
	span.SetAttributes(
		attribute.String("grades.mode", result.Mode),
		attribute.Int("grades.graded", result.GradedCount),
	)

	a.cache.Set(ctx, courseID, studentKey, version, result)
	return result, nil
}

// perItemPercentage weights each graded item by its assignment weight. The unit
// heuristic looks at every assignment of the course, graded or not.
func perItemPercentage(course models.Course, assignments []models.Assignment, graded []gradedItem) float64 {
	weights := make([]float64, 0, len(assignments))
	for _, assignment := range assignments {
		weights = append(weights, assignment.Weight)
	}
	scale := grading.UnitScale(course.WeightUnit, grading.Sum(weights))

	scores := make([]grading.WeightedScore, 0, len(graded))
	for _, item := range graded {
		scores = append(scores, grading.WeightedScore{Percent: item.percent, Weight: item.assignment.Weight * scale})
	}
	return grading.WeightedAverage(scores)
}

func (a *gradeAggregator) categoryPercentage(course models.Course, graded []gradedItem) float64 {
	byCategory := make(map[models.AssignmentCategory][]float64)
	for _, item := range graded {
		byCategory[item.assignment.Category] = append(byCategory[item.assignment.Category], item.percent)
	}

	categories := course.Categories()
	weights := make([]float64, 0, len(categories))
	for _, weight := range categories {
		weights = append(weights, weight)
	}
	scale := grading.UnitScale(course.WeightUnit, grading.Sum(weights))

	scores := make([]grading.WeightedScore, 0, len(categories))
	for category, weight := range categories {
		if weight <= 0 {
			continue
		}
		mean, ok := grading.Mean(byCategory[category])
		if !ok && a.emptyPolicy == config.EmptyCategoryExclude {
			continue
		}
		scores = append(scores, grading.WeightedScore{Percent: mean, Weight: weight * scale})
	}
	return grading.WeightedAverage(scores)
}

func (a *gradeAggregator) skip(what string, err error, courseID string) {
	observability.AggregationSkipped().WithLabelValues("grade_aggregator").Inc()
	a.logger.Warn().Err(err).Str("course_id", courseID).Str("item", what).Msg("skipping item during grade aggregation")
}
