package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// GradingHandler drives the grading mode state machine of a course.
type GradingHandler struct {
	controller service.GradingModeController
	activity   service.ActivityService
	logger     zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(controller service.GradingModeController, activity service.ActivityService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		controller: controller,
		activity:   activity,
		logger:     logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading scheme endpoints to the v2 group.
func (h *GradingHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/courses/:courseId/grading-mode", h.state)
	router.Put("/courses/:courseId/grading-mode", guards.staff(), guards.write(), h.setMode)
	router.Post("/courses/:courseId/grading/finalize", guards.staff(), guards.write(), h.finalize)
	router.Get("/courses/:courseId/grading/activity", guards.staff(), h.listActivity)
}

func (h *GradingHandler) state(c *fiber.Ctx) error {
	state, err := h.controller.State(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grading mode retrieved", state)
}

func (h *GradingHandler) setMode(c *fiber.Ctx) error {
	var req dto.GradingModeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	state, err := h.controller.SetMode(c.UserContext(), c.Params("courseId"), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grading mode updated", state)
}

func (h *GradingHandler) finalize(c *fiber.Ctx) error {
	state, err := h.controller.Finalize(c.UserContext(), c.Params("courseId"), activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grading finalized", state)
}

func (h *GradingHandler) listActivity(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "page must be a number")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "page_size must be a number")
	}

	activity, err := h.activity.List(c.UserContext(), dto.ActivityListRequest{
		Page:     page,
		PageSize: pageSize,
		Action:   c.Query("action"),
		EntityID: c.Params("courseId"),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grading activity retrieved", activity)
}
