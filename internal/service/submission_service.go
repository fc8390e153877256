package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// SubmissionService stores student hand-ins.
type SubmissionService interface {
	// Upsert saves the hand-in for (assignment, student); a resubmission overwrites it.
	Upsert(ctx context.Context, assignmentID, studentKey string, req dto.SubmissionUpsertRequest, actor ActivityActor) (dto.SubmissionResponse, error)
	Get(ctx context.Context, assignmentID, studentKey string) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	identities  IdentityResolver
	validator   *validator.Validate
	grades      GradeInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	identities IdentityResolver,
	validator *validator.Validate,
	grades GradeInvalidator,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		identities:  identities,
		validator:   validator,
		grades:      grades,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Upsert(ctx context.Context, assignmentID, studentKey string, req dto.SubmissionUpsertRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, notFound("assignment", assignmentID)
		}
		return dto.SubmissionResponse{}, err
	}

	key := s.identities.Resolve(ctx, studentKey).SubmissionKey(strings.TrimSpace(studentKey))
	if actor.Role == "student" && key != actor.ID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	now := s.now().UTC()
	submission := models.Submission{
		AssignmentID: assignment.ID,
		CourseID:     assignment.CourseID,
		StudentKey:   key,
		ArtifactRef:  strings.TrimSpace(req.ArtifactRef),
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submission.ID).Msg("failed to save submission")
		return dto.SubmissionResponse{}, err
	}

	if s.grades != nil {
		s.grades.Invalidate(ctx, assignment.CourseID)
	}

	stored, err := s.submissions.GetByKey(ctx, assignment.ID, key)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(stored), nil
}

func (s *submissionService) Get(ctx context.Context, assignmentID, studentKey string) (dto.SubmissionResponse, error) {
	key := s.identities.Resolve(ctx, studentKey).SubmissionKey(strings.TrimSpace(studentKey))

	submission, err := s.submissions.GetByKey(ctx, assignmentID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, notFound("submission", models.SubmissionKey(assignmentID, key))
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}
