package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook-api/internal/middleware"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// Guards bundles the per-route middlewares handlers attach. Nil guards pass through.
type Guards struct {
	// Staff admits teachers and administrators.
	Staff fiber.Handler
	// Admin consults the server-side admin policy.
	Admin fiber.Handler
	// Write throttles mutating endpoints.
	Write fiber.Handler
}

func passthrough(c *fiber.Ctx) error {
	return c.Next()
}

func (g Guards) staff() fiber.Handler {
	if g.Staff == nil {
		return passthrough
	}
	return g.Staff
}

func (g Guards) admin() fiber.Handler {
	if g.Admin == nil {
		return passthrough
	}
	return g.Admin
}

func (g Guards) write() fiber.Handler {
	if g.Write == nil {
		return passthrough
	}
	return g.Write
}

// validationDetail describes one rejected field.
type validationDetail struct {
	Field      string  `json:"field"`
	Rule       string  `json:"rule,omitempty"`
	Message    string  `json:"message,omitempty"`
	ExceededBy float64 `json:"exceeded_by,omitempty"`
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   middleware.UserID(c),
		Role: middleware.UserRole(c),
	}
}

func isStaff(c *fiber.Ctx) bool {
	role := middleware.UserRole(c)
	return role == "teacher" || role == "admin"
}

// studentKeyParam reads the :studentKey param; "me" names the caller.
func studentKeyParam(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.Params("studentKey"))
	if key == "me" {
		return middleware.UserID(c)
	}
	return key
}

// authorizeStudentKey lets staff read any student while students may only read themselves.
func authorizeStudentKey(c *fiber.Ctx, identities service.IdentityResolver, key string) error {
	if isStaff(c) {
		return nil
	}
	subject := middleware.UserID(c)
	if subject == "" {
		return service.ErrForbidden
	}
	if key == subject {
		return nil
	}
	if identities.Resolve(c.UserContext(), key).SubmissionKey(key) != subject {
		return service.ErrForbidden
	}
	return nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func badRequestBody(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]validationDetail, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details = append(details, validationDetail{Field: fieldErr.Field(), Rule: fieldErr.Tag()})
		}
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
	}

	var ruleErr *service.ValidationError
	if errors.As(err, &ruleErr) {
		return utils.Fail(c, fiber.StatusBadRequest, ruleErr.Error(), []validationDetail{{
			Field:      ruleErr.Field,
			Message:    ruleErr.Message,
			ExceededBy: ruleErr.ExceededBy,
		}})
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInconsistentState):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, context.DeadlineExceeded):
		return utils.SendError(c, fiber.StatusGatewayTimeout, "request timed out")
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
