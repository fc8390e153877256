package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/grading"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// StudentSummaryService aggregates a student's standing over their enrollments.
type StudentSummaryService interface {
	Summary(ctx context.Context, studentKey string) (dto.StudentSummaryResponse, error)
}

type studentSummaryService struct {
	enrollments repository.EnrollmentRepository
	identities  IdentityResolver
	grades      GradeAggregator
	attendance  AttendanceAggregator
	logger      zerolog.Logger
}

// NewStudentSummaryService constructs the summary service.
func NewStudentSummaryService(
	enrollments repository.EnrollmentRepository,
	identities IdentityResolver,
	grades GradeAggregator,
	attendance AttendanceAggregator,
	logger zerolog.Logger,
) StudentSummaryService {
	return &studentSummaryService{
		enrollments: enrollments,
		identities:  identities,
		grades:      grades,
		attendance:  attendance,
		logger:      logger.With().Str("component", "student_summary_service").Logger(),
	}
}

// Summary covers enrolled and completed courses. A course that cannot be
// computed is listed in SkippedCourses and left out of the average.
func (s *studentSummaryService) Summary(ctx context.Context, studentKey string) (dto.StudentSummaryResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-gradebook-api/internal/service/student_summary")
	ctx, span := tracer.Start(ctx, "grades.student_summary", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	studentKey = strings.TrimSpace(studentKey)
	profileKey := s.identities.Resolve(ctx, studentKey).ProfileKey(studentKey)

	response := dto.StudentSummaryResponse{
		StudentKey:     studentKey,
		ProfileID:      profileKey,
		Courses:        []dto.CourseStanding{},
		SkippedCourses: []string{},
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, profileKey, models.EnrollmentEnrolled, models.EnrollmentCompleted)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load enrollments")
		return dto.StudentSummaryResponse{}, err
	}

	percentages := make([]float64, 0, len(enrollments))
	for _, enrollment := range enrollments {
		grade, err := s.grades.OverallGrade(ctx, studentKey, enrollment.CourseID)
		if err != nil {
			observability.AggregationSkipped().WithLabelValues("student_summary").Inc()
			s.logger.Warn().Err(err).Str("course_id", enrollment.CourseID).Msg("skipping course in student summary")
			response.SkippedCourses = append(response.SkippedCourses, enrollment.CourseID)
			continue
		}

		response.Courses = append(response.Courses, dto.CourseStanding{
			CourseID:             enrollment.CourseID,
			EnrollmentStatus:     string(enrollment.Status),
			Grade:                grade,
			AttendancePercentage: s.attendance.Percentage(ctx, studentKey, enrollment.CourseID),
		})
		percentages = append(percentages, grade.Percentage)
	}

	if mean, ok := grading.Mean(percentages); ok {
		response.AveragePercentage = mean
	}

	span.SetAttributes(attribute.Int("grades.courses", len(response.Courses)))
	return response, nil
}
