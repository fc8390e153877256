package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/grading"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// AttendanceAggregator computes attendance percentages.
type AttendanceAggregator interface {
	Percentage(ctx context.Context, studentKey, courseID string) int
	Summary(ctx context.Context, studentKey, courseID string) dto.AttendanceResponse
}

type attendanceAggregator struct {
	records    repository.AttendanceRepository
	identities IdentityResolver
	logger     zerolog.Logger
}

// NewAttendanceAggregator constructs the aggregator.
func NewAttendanceAggregator(records repository.AttendanceRepository, identities IdentityResolver, logger zerolog.Logger) AttendanceAggregator {
	return &attendanceAggregator{
		records:    records,
		identities: identities,
		logger:     logger.With().Str("component", "attendance_aggregator").Logger(),
	}
}

func (a *attendanceAggregator) Percentage(ctx context.Context, studentKey, courseID string) int {
	return a.Summary(ctx, studentKey, courseID).Percentage
}

// Summary counts present and late sessions as attended. A student with no
// records, or whose records cannot be read, is reported at 100%.
func (a *attendanceAggregator) Summary(ctx context.Context, studentKey, courseID string) dto.AttendanceResponse {
	tracer := otel.Tracer("github.com/noah-isme/gema-gradebook-api/internal/service/attendance_aggregator")
	ctx, span := tracer.Start(ctx, "attendance.percentage")
	span.SetAttributes(attribute.String("attendance.course_id", courseID))
	defer span.End()

	studentKey = strings.TrimSpace(studentKey)
	response := dto.AttendanceResponse{CourseID: courseID, StudentKey: studentKey, Percentage: 100}

	profileKey := a.identities.Resolve(ctx, studentKey).ProfileKey(studentKey)

	records, err := a.records.ListByStudent(ctx, courseID, profileKey)
	if err != nil {
		observability.AggregationSkipped().WithLabelValues("attendance_aggregator").Inc()
		a.logger.Warn().Err(err).Str("course_id", courseID).Msg("attendance records unavailable")
		return response
	}

	for _, record := range records {
		response.Total++
		if record.Status.CountsAsAttended() {
			response.Attended++
		}
	}
	response.Percentage = grading.AttendancePercent(response.Attended, response.Total)
	return response
}
