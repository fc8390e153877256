package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the v2 group.
func (h *AssignmentHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/courses/:courseId/assignments", h.list)
	router.Post("/courses/:courseId/assignments", guards.staff(), guards.write(), h.create)
	router.Patch("/assignments/:id", guards.staff(), guards.write(), h.update)
	router.Delete("/assignments/:id", guards.staff(), guards.write(), h.delete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.ListByCourse(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var req dto.AssignmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	assignment, err := h.service.Create(c.UserContext(), c.Params("courseId"), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	var req dto.AssignmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	assignment, err := h.service.Update(c.UserContext(), c.Params("id"), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id"), activityActorFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
