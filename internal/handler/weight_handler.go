package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// WeightHandler exposes the course weight budget.
type WeightHandler struct {
	ledger    service.WeightLedger
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewWeightHandler constructs the handler.
func NewWeightHandler(ledger service.WeightLedger, validator *validator.Validate, logger zerolog.Logger) *WeightHandler {
	return &WeightHandler{
		ledger:    ledger,
		validator: validator,
		logger:    logger.With().Str("component", "weight_handler").Logger(),
	}
}

// Register attaches weight endpoints to the v2 group.
func (h *WeightHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/courses/:courseId/weights", h.usage)
	router.Post("/courses/:courseId/weights/validate", guards.staff(), h.validate)
}

func (h *WeightHandler) usage(c *fiber.Ctx) error {
	usage, err := h.ledger.Usage(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "weight usage computed", usage)
}

// validate answers with 200 either way; a rejected weight is a normal outcome of the check.
func (h *WeightHandler) validate(c *fiber.Ctx) error {
	var req dto.WeightValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	if err := h.validator.Struct(req); err != nil {
		return respondError(c, h.logger, err)
	}

	courseID := c.Params("courseId")
	response := dto.WeightValidationResponse{
		CourseID:       courseID,
		ProposedWeight: *req.ProposedWeight,
		Valid:          true,
	}

	err := h.ledger.Validate(c.UserContext(), courseID, *req.ProposedWeight, req.ExcludingAssignmentID)
	var rejected *service.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		response.Valid = false
		response.ExceededBy = rejected.ExceededBy
		response.Message = rejected.Message
	default:
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "weight validated", response)
}
