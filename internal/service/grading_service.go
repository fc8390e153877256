package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// GradingService records instructor grades on submissions.
type GradingService interface {
	Grade(ctx context.Context, assignmentID, studentKey string, req dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	identities  IdentityResolver
	validator   *validator.Validate
	activity    ActivityRecorder
	grades      GradeInvalidator
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	identities IdentityResolver,
	validator *validator.Validate,
	activity ActivityRecorder,
	grades GradeInvalidator,
	logger zerolog.Logger,
) GradingService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &gradingService{
		submissions: submissions,
		assignments: assignments,
		identities:  identities,
		validator:   validator,
		activity:    activity,
		grades:      grades,
		sanitizer:   policy,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, assignmentID, studentKey string, req dto.GradeSubmissionRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-gradebook-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.grade")
	span.SetAttributes(
		attribute.String("grading.assignment_id", assignmentID),
		attribute.String("grading.actor_id", actor.ID),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, notFound("assignment", assignmentID)
		}
		return dto.SubmissionResponse{}, err
	}

	points := *req.Points
	if points > assignment.MaxPoints {
		return dto.SubmissionResponse{}, invalid("points", points, "must not exceed max points %.2f", assignment.MaxPoints)
	}

	key := s.identities.Resolve(ctx, studentKey).SubmissionKey(strings.TrimSpace(studentKey))
	submission, err := s.submissions.GetByKey(ctx, assignmentID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, notFound("submission", models.SubmissionKey(assignmentID, key))
		}
		return dto.SubmissionResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(req.Feedback))
	if submission.IsGraded() && submission.Grade.Points != nil &&
		*submission.Grade.Points == points && submission.Feedback == feedback {
		return dto.NewSubmissionResponse(submission), nil
	}

	percent := points / assignment.MaxPoints * 100
	gradedAt := s.now().UTC()
	grader := actor.ID
	submission.Grade = models.SubmissionGrade{
		Points:   &points,
		Percent:  &percent,
		GradedAt: &gradedAt,
		GraderID: &grader,
	}
	submission.Feedback = feedback

	if err := s.submissions.SaveGrade(ctx, &submission); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Str("submission_id", submission.ID).Msg("failed to save grade")
		return dto.SubmissionResponse{}, err
	}

	if s.grades != nil {
		s.grades.Invalidate(ctx, submission.CourseID)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "submission.graded",
		EntityType: "submission",
		EntityID:   submission.ID,
		Metadata: map[string]interface{}{
			"course_id": submission.CourseID,
			"points":    points,
			"percent":   percent,
		},
	})

	return dto.NewSubmissionResponse(submission), nil
}
