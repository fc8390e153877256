package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/models"
	"github.com/noah-isme/gema-gradebook-api/internal/observability"
	"github.com/noah-isme/gema-gradebook-api/internal/repository"
)

// Identity is the canonical profile/subject/email triple of one person.
type Identity struct {
	ProfileID string
	SubjectID string
	Email     string
	Role      string
	IsAdmin   bool
}

// ProfileKey returns the key enrollments and attendance are stored under.
// A nil identity falls back to the raw key.
func (i *Identity) ProfileKey(raw string) string {
	if i != nil && i.ProfileID != "" {
		return i.ProfileID
	}
	return raw
}

// SubmissionKey returns the key submissions are stored under.
// A nil identity, or one without a subject id, falls back to the raw key.
func (i *Identity) SubmissionKey(raw string) string {
	if i != nil && i.SubjectID != "" {
		return i.SubjectID
	}
	return raw
}

// IdentityResolver maps any student key to its canonical identity.
type IdentityResolver interface {
	// Resolve returns nil when nothing matches or the identity store is unavailable.
	Resolve(ctx context.Context, key string) *Identity
}

type identityResolver struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewIdentityResolver constructs the resolver over the user identity store.
func NewIdentityResolver(users repository.UserRepository, logger zerolog.Logger) IdentityResolver {
	return &identityResolver{
		users:  users,
		logger: logger.With().Str("component", "identity_resolver").Logger(),
	}
}

func (r *identityResolver) Resolve(ctx context.Context, key string) *Identity {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	user, err := r.users.FindByAnyKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.IdentityResolutions().WithLabelValues("miss").Inc()
			return nil
		}
		observability.IdentityResolutions().WithLabelValues("error").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("identity store unavailable, using raw key")
		return nil
	}

	observability.IdentityResolutions().WithLabelValues("hit").Inc()
	return identityFromUser(user)
}

func identityFromUser(user models.UserIdentity) *Identity {
	return &Identity{
		ProfileID: user.ID,
		SubjectID: user.SubjectID,
		Email:     user.Email,
		Role:      strings.ToLower(strings.TrimSpace(user.Role)),
		IsAdmin:   user.IsAdmin,
	}
}
