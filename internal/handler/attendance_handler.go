package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// AttendanceHandler records attendance marks.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register attaches attendance write endpoints to the v2 group.
func (h *AttendanceHandler) Register(router fiber.Router, guards Guards) {
	router.Post("/courses/:courseId/attendance", guards.staff(), guards.write(), h.record)
}

func (h *AttendanceHandler) record(c *fiber.Ctx) error {
	var req dto.AttendanceRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	record, err := h.service.Record(c.UserContext(), c.Params("courseId"), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attendance recorded", record)
}
