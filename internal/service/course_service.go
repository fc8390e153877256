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

// CourseService manages course staffing.
type CourseService interface {
	AssignInstructor(ctx context.Context, courseID string, req dto.AssignInstructorRequest, actor ActivityActor) (dto.TeacherAssignmentResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validator,
		activity:  activity,
		logger:    logger.With().Str("component", "course_service").Logger(),
		now:       time.Now,
	}
}

// AssignInstructor writes the teacher assignment and the course instructor together.
func (s *courseService) AssignInstructor(ctx context.Context, courseID string, req dto.AssignInstructorRequest, actor ActivityActor) (dto.TeacherAssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherAssignmentResponse{}, err
	}

	assignment := models.TeacherAssignment{
		ID:         uuid.NewString(),
		CourseID:   courseID,
		TeacherID:  strings.TrimSpace(req.TeacherID),
		AssignedBy: actor.ID,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.courses.AssignInstructor(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherAssignmentResponse{}, notFound("course", courseID)
		}
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("failed to assign instructor")
		return dto.TeacherAssignmentResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "course.instructor_assigned",
		EntityType: "course",
		EntityID:   courseID,
		Metadata:   map[string]interface{}{"teacher_id": assignment.TeacherID},
	})

	return dto.NewTeacherAssignmentResponse(assignment), nil
}
