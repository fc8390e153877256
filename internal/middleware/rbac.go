package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[UserRole(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// AdminPolicy decides whether a subject holds administrative rights.
type AdminPolicy interface {
	IsAdmin(ctx context.Context, subjectID string) bool
}

// RequireAdmin defers the admin decision to the server-side policy instead of trusting the token role.
func RequireAdmin(policy AdminPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := UserID(c)
		if subject == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !policy.IsAdmin(c.UserContext(), subject) {
			return utils.SendError(c, fiber.StatusForbidden, "administrator access required")
		}
		return c.Next()
	}
}
