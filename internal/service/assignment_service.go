package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// AssignmentService manages course assignments under the course weight budget.
type AssignmentService interface {
	ListByCourse(ctx context.Context, courseID string) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, courseID string, req dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string, actor ActivityActor) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	ledger    WeightLedger
	validator *validator.Validate
	activity  ActivityRecorder
	grades    GradeInvalidator
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	repo repository.AssignmentRepository,
	ledger WeightLedger,
	validator *validator.Validate,
	activity ActivityRecorder,
	grades GradeInvalidator,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		repo:      repo,
		ledger:    ledger,
		validator: validator,
		activity:  activity,
		grades:    grades,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Create(ctx context.Context, courseID string, req dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		return dto.AssignmentResponse{}, invalid("due_at", req.DueAt, "must be an RFC3339 timestamp")
	}

	now := s.now().UTC()
	assignment := models.Assignment{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Category:  models.AssignmentCategory(req.Category),
		Weight:    *req.Weight,
		MaxPoints: req.MaxPoints,
		DueAt:     dueAt.UTC(),
		OwnerID:   actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.WithWeightScope(ctx, courseID, func(scope repository.WeightScope) error {
		course := scope.Course()
		if course.GradingFinalized {
			return ErrGradingFinalized
		}

		existing, err := scope.Assignments()
		if err != nil {
			return err
		}
		if err := s.ledger.Check(course, existing, assignment.Weight, ""); err != nil {
			return err
		}
		return scope.Save(&assignment)
	})
	if err != nil {
		return dto.AssignmentResponse{}, s.mapScopeError(err, "course", courseID)
	}

	s.changed(ctx, "assignment.created", assignment, actor)
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id string, req dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssignmentResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, s.mapScopeError(err, "assignment", id)
	}

	var dueAt *time.Time
	if req.DueAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DueAt)
		if err != nil {
			return dto.AssignmentResponse{}, invalid("due_at", *req.DueAt, "must be an RFC3339 timestamp")
		}
		parsed = parsed.UTC()
		dueAt = &parsed
	}

	var updated models.Assignment
	err = s.repo.WithWeightScope(ctx, current.CourseID, func(scope repository.WeightScope) error {
		course := scope.Course()
		existing, err := scope.Assignments()
		if err != nil {
			return err
		}

		var found bool
		for _, assignment := range existing {
			if assignment.ID == id {
				updated, found = assignment, true
				break
			}
		}
		if !found {
			return gorm.ErrRecordNotFound
		}

		gradingChange := (req.Weight != nil && *req.Weight != updated.Weight) ||
			(req.Category != nil && models.AssignmentCategory(*req.Category) != updated.Category) ||
			(req.MaxPoints != nil && *req.MaxPoints != updated.MaxPoints)
		if course.GradingFinalized && gradingChange {
			return ErrGradingFinalized
		}

		if req.Title != nil {
			updated.Title = strings.TrimSpace(*req.Title)
		}
		if req.Category != nil {
			updated.Category = models.AssignmentCategory(*req.Category)
		}
		if req.MaxPoints != nil {
			updated.MaxPoints = *req.MaxPoints
		}
		if dueAt != nil {
			updated.DueAt = *dueAt
		}
		if req.Weight != nil {
			if err := s.ledger.Check(course, existing, *req.Weight, id); err != nil {
				return err
			}
			updated.Weight = *req.Weight
		}

		updated.UpdatedAt = s.now().UTC()
		return scope.Save(&updated)
	})
	if err != nil {
		return dto.AssignmentResponse{}, s.mapScopeError(err, "assignment", id)
	}

	s.changed(ctx, "assignment.updated", updated, actor)
	return dto.NewAssignmentResponse(updated), nil
}

func (s *assignmentService) Delete(ctx context.Context, id string, actor ActivityActor) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapScopeError(err, "assignment", id)
	}

	err = s.repo.WithWeightScope(ctx, current.CourseID, func(scope repository.WeightScope) error {
		if scope.Course().GradingFinalized {
			return ErrGradingFinalized
		}
		return scope.Delete(id)
	})
	if err != nil {
		return s.mapScopeError(err, "assignment", id)
	}

	s.changed(ctx, "assignment.deleted", current, actor)
	return nil
}

func (s *assignmentService) mapScopeError(err error, entity, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, key)
	}

	var verr *ValidationError
	if errors.As(err, &verr) || errors.Is(err, ErrInconsistentState) {
		return err
	}

	s.logger.Error().Err(err).Str(entity+"_id", key).Msg("assignment write failed")
	return err
}

func (s *assignmentService) changed(ctx context.Context, action string, assignment models.Assignment, actor ActivityActor) {
	if s.grades != nil {
		s.grades.Invalidate(ctx, assignment.CourseID)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   assignment.ID,
		Metadata: map[string]interface{}{
			"course_id": assignment.CourseID,
			"weight":    assignment.Weight,
			"category":  string(assignment.Category),
		},
	})
}
