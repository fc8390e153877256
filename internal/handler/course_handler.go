package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// CourseHandler manages course staffing.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the v2 group.
func (h *CourseHandler) Register(router fiber.Router, guards Guards) {
	router.Post("/courses/:courseId/instructors", guards.admin(), guards.write(), h.assignInstructor)
}

func (h *CourseHandler) assignInstructor(c *fiber.Ctx) error {
	var req dto.AssignInstructorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	assignment, err := h.service.AssignInstructor(c.UserContext(), c.Params("courseId"), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "instructor assigned", assignment)
}
