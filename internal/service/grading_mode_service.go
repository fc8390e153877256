package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/events"
	"github.com/noah-isme/gema-gradebook-api/internal/grading"
	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// EventPublisher delivers grading lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// GradingModeController governs a course's scoring mode and its finalization.
type GradingModeController interface {
	State(ctx context.Context, courseID string) (dto.GradingStateResponse, error)
	SetMode(ctx context.Context, courseID string, req dto.GradingModeRequest, actor ActivityActor) (dto.GradingStateResponse, error)
	Finalize(ctx context.Context, courseID string, actor ActivityActor) (dto.GradingStateResponse, error)
}

type gradingModeController struct {
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	publisher   EventPublisher
	grades      GradeInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingModeController constructs the controller. activity, publisher and grades may be nil.
func NewGradingModeController(
	courses repository.CourseRepository,
	assignments repository.AssignmentRepository,
	validator *validator.Validate,
	activity ActivityRecorder,
	publisher EventPublisher,
	grades GradeInvalidator,
	logger zerolog.Logger,
) GradingModeController {
	return &gradingModeController{
		courses:     courses,
		assignments: assignments,
		validator:   validator,
		activity:    activity,
		publisher:   publisher,
		grades:      grades,
		logger:      logger.With().Str("component", "grading_mode_controller").Logger(),
		now:         time.Now,
	}
}

func (c *gradingModeController) State(ctx context.Context, courseID string) (dto.GradingStateResponse, error) {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return dto.GradingStateResponse{}, err
	}
	return newGradingState(course), nil
}

func (c *gradingModeController) SetMode(ctx context.Context, courseID string, req dto.GradingModeRequest, actor ActivityActor) (dto.GradingStateResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-gradebook-api/internal/service/grading_mode")
	ctx, span := tracer.Start(ctx, "grading.set_mode")
	span.SetAttributes(attribute.String("grading.course_id", courseID), attribute.String("grading.mode", req.Mode))
	defer span.End()

	if err := c.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.GradingStateResponse{}, err
	}

	mode := models.WeightMode(req.Mode)
	weights, err := categoryWeightsFrom(req.CategoryWeights)
	if err != nil {
		return dto.GradingStateResponse{}, err
	}
	if mode == models.WeightModeCategory && len(weights) == 0 {
		return dto.GradingStateResponse{}, invalid("category_weights", nil, "category mode requires at least one category weight")
	}

	var course models.Course
	err = c.assignments.WithWeightScope(ctx, courseID, func(scope repository.WeightScope) error {
		course = scope.Course()
		if course.GradingFinalized {
			return ErrGradingFinalized
		}

		course.WeightMode = mode
		if len(weights) > 0 {
			course.CategoryWeights = datatypes.NewJSONType(weights)
		}
		if req.WeightUnit != nil {
			course.WeightUnit = weightUnitFrom(*req.WeightUnit)
		}

		// Per-item scoring must keep item weights within budget under the new unit.
		if course.Mode() == models.WeightModePerItem {
			assignments, err := scope.Assignments()
			if err != nil {
				return err
			}
			if err := budgetViolation("weight_mode", req.Mode, allocatedWeight(course, assignments, "")); err != nil {
				return err
			}
		}

		return scope.SaveGrading(&course)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.GradingStateResponse{}, notFound("course", courseID)
		case errors.Is(err, ErrGradingFinalized), errors.Is(err, repository.ErrConflict):
			observability.GradingTransitions().WithLabelValues("rejected").Inc()
			return dto.GradingStateResponse{}, ErrGradingFinalized
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			observability.GradingTransitions().WithLabelValues("rejected").Inc()
			span.SetStatus(codes.Error, "weights exceed budget")
			return dto.GradingStateResponse{}, err
		}
		span.RecordError(err)
		c.logger.Error().Err(err).Str("course_id", courseID).Msg("failed to persist grading scheme")
		return dto.GradingStateResponse{}, err
	}

	state := newGradingState(course)
	c.afterTransition(ctx, events.TypeModeChanged, "mode_changed", state, actor)
	return state, nil
}

func (c *gradingModeController) Finalize(ctx context.Context, courseID string, actor ActivityActor) (dto.GradingStateResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-gradebook-api/internal/service/grading_mode")
	ctx, span := tracer.Start(ctx, "grading.finalize")
	span.SetAttributes(attribute.String("grading.course_id", courseID))
	defer span.End()

	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return dto.GradingStateResponse{}, err
	}
	if course.GradingFinalized {
		return newGradingState(course), nil
	}

	total, err := c.finalizableTotal(ctx, course)
	if err != nil {
		span.SetStatus(codes.Error, "course cannot be finalized")
		return dto.GradingStateResponse{}, err
	}
	if !grading.MeetsBudget(total) {
		observability.GradingTransitions().WithLabelValues("rejected").Inc()
		verr := &ValidationError{
			Field:   "weights",
			Value:   total,
			Message: fmt.Sprintf("weights total %.1f%%; finalization requires exactly 100%%", total),
		}
		if total > grading.Budget {
			verr.ExceededBy = total - grading.Budget
		}
		if looksFractional(course, total) {
			verr.Message += "; item weights look fractional, set weight_unit=fraction to finalize them"
		}
		return dto.GradingStateResponse{}, verr
	}

	course.GradingFinalized = true
	if err := c.save(ctx, &course); err != nil {
		if errors.Is(err, ErrGradingFinalized) {
			// A concurrent request finalized first.
			return c.State(ctx, courseID)
		}
		span.RecordError(err)
		return dto.GradingStateResponse{}, err
	}

	state := newGradingState(course)
	c.afterTransition(ctx, events.TypeFinalized, "finalized", state, actor)
	return state, nil
}

// finalizableTotal returns the weight total that must equal 100 for the course's mode.
func (c *gradingModeController) finalizableTotal(ctx context.Context, course models.Course) (float64, error) {
	if course.Mode() == models.WeightModeCategory {
		categories := course.Categories()
		if len(categories) == 0 {
			return 0, &InconsistentStateError{Reason: "category mode has no category weights configured"}
		}
		weights := make([]float64, 0, len(categories))
		for _, weight := range categories {
			weights = append(weights, weight)
		}
		sum := grading.Sum(weights)
		return sum * grading.UnitScale(course.WeightUnit, sum), nil
	}

	assignments, err := c.assignments.ListByCourse(ctx, course.ID)
	if err != nil {
		return 0, err
	}
	return allocatedWeight(course, assignments, ""), nil
}

// looksFractional reports per-item weights that only reach the budget as fractions.
// Item weights are never rescaled without an explicit unit.
func looksFractional(course models.Course, total float64) bool {
	return course.Mode() == models.WeightModePerItem &&
		course.WeightUnit == models.WeightUnitAuto &&
		total > 0 && total <= grading.FractionThreshold
}

func (c *gradingModeController) loadCourse(ctx context.Context, courseID string) (models.Course, error) {
	course, err := c.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, notFound("course", courseID)
		}
		return models.Course{}, err
	}
	return course, nil
}

func (c *gradingModeController) save(ctx context.Context, course *models.Course) error {
	if err := c.courses.SaveGrading(ctx, course); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrGradingFinalized
		}
		c.logger.Error().Err(err).Str("course_id", course.ID).Msg("failed to persist grading scheme")
		return err
	}
	return nil
}

func (c *gradingModeController) afterTransition(ctx context.Context, eventType, transition string, state dto.GradingStateResponse, actor ActivityActor) {
	observability.GradingTransitions().WithLabelValues(transition).Inc()

	if c.grades != nil {
		c.grades.Invalidate(ctx, state.CourseID)
	}

	data := map[string]interface{}{
		"mode":             state.Mode,
		"weight_unit":      state.WeightUnit,
		"category_weights": state.CategoryWeights,
		"finalized":        state.Finalized,
	}

	recordActivity(ctx, c.activity, c.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "grading." + transition,
		EntityType: "course",
		EntityID:   state.CourseID,
		Metadata:   data,
	})

	if c.publisher == nil {
		return
	}
	event := events.Event{
		Type:       eventType,
		CourseID:   state.CourseID,
		ActorID:    actor.ID,
		OccurredAt: c.now().UTC(),
		Data:       data,
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish grading event")
	}
}

func categoryWeightsFrom(raw map[string]float64) (models.CategoryWeights, error) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	weights := make(models.CategoryWeights, len(raw))
	for _, key := range keys {
		category := models.AssignmentCategory(key)
		if !category.Valid() {
			return nil, invalid("category_weights", key, "unknown category %q", key)
		}
		if raw[key] < 0 {
			return nil, invalid("category_weights", raw[key], "weight for %s must not be negative", key)
		}
		weights[category] = raw[key]
	}
	return weights, nil
}

func weightUnitFrom(raw string) models.WeightUnit {
	if raw == "auto" {
		return models.WeightUnitAuto
	}
	return models.WeightUnit(raw)
}

func newGradingState(course models.Course) dto.GradingStateResponse {
	categories := course.Categories()
	weights := make(map[string]float64, len(categories))
	for category, weight := range categories {
		weights[string(category)] = weight
	}

	unit := string(course.WeightUnit)
	if unit == "" {
		unit = "auto"
	}

	return dto.GradingStateResponse{
		CourseID:        course.ID,
		Mode:            string(course.Mode()),
		WeightUnit:      unit,
		CategoryWeights: weights,
		Finalized:       course.GradingFinalized,
	}
}
