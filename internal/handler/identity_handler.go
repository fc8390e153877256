package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-gradebook-api/internal/dto"
	"github.com/noah-isme/gema-gradebook-api/internal/service"
	"github.com/noah-isme/gema-gradebook-api/internal/utils"
)

// IdentityHandler lets administrators inspect how a student key resolves.
type IdentityHandler struct {
	identities service.IdentityResolver
}

// NewIdentityHandler constructs the handler.
func NewIdentityHandler(identities service.IdentityResolver) *IdentityHandler {
	return &IdentityHandler{identities: identities}
}

// Register attaches identity endpoints to the v2 group.
func (h *IdentityHandler) Register(router fiber.Router, guards Guards) {
	router.Get("/identities/:key", guards.admin(), h.resolve)
}

func (h *IdentityHandler) resolve(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Params("key"))
	response := dto.IdentityResponse{Key: key}

	if identity := h.identities.Resolve(c.UserContext(), key); identity != nil {
		response.Resolved = true
		response.ProfileID = identity.ProfileID
		response.SubjectID = identity.SubjectID
		response.Email = identity.Email
		response.Role = identity.Role
	}

	return utils.SendSuccess(c, "identity resolved", response)
}
