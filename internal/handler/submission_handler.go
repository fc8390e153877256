package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// SubmissionHandler exposes hand-in and grading endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	identities  service.IdentityResolver
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, identities service.IdentityResolver, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		identities:  identities,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the v2 group.
func (h *SubmissionHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/assignments/:id/submissions/:studentKey", h.get)
	router.Put("/assignments/:id/submissions/:studentKey", guards.write(), h.upsert)
	router.Patch("/assignments/:id/submissions/:studentKey/grade", guards.staff(), guards.write(), h.grade)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	key := studentKeyParam(c)
	if err := authorizeStudentKey(c, h.identities, key); err != nil {
		return respondError(c, h.logger, err)
	}

	submission, err := h.submissions.Get(c.UserContext(), c.Params("id"), key)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) upsert(c *fiber.Ctx) error {
	var req dto.SubmissionUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	submission, err := h.submissions.Upsert(c.UserContext(), c.Params("id"), studentKeyParam(c), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submission saved", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	var req dto.GradeSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}

	submission, err := h.grading.Grade(c.UserContext(), c.Params("id"), studentKeyParam(c), req, activityActorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "submission graded", submission)
}
