package service

import (
	"context"
	"strings"
)

// AuthorizationPolicy answers administrative access questions server-side.
type AuthorizationPolicy interface {
	IsAdmin(ctx context.Context, subjectID string) bool
}

type authorizationPolicy struct {
	allowList  map[string]struct{}
	identities IdentityResolver
}

// NewAuthorizationPolicy builds the policy from the configured allow-list of
// subject ids or emails and the identity store.
func NewAuthorizationPolicy(allowList []string, identities IdentityResolver) AuthorizationPolicy {
	allowed := make(map[string]struct{}, len(allowList))
	for _, entry := range allowList {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			allowed[entry] = struct{}{}
		}
	}
	return &authorizationPolicy{allowList: allowed, identities: identities}
}

func (p *authorizationPolicy) IsAdmin(ctx context.Context, subjectID string) bool {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return false
	}
	if p.allowed(subjectID) {
		return true
	}

	identity := p.identities.Resolve(ctx, subjectID)
	if identity == nil {
		return false
	}
	if identity.IsAdmin || identity.Role == "admin" {
		return true
	}
	return p.allowed(identity.Email) || p.allowed(identity.SubjectID)
}

func (p *authorizationPolicy) allowed(key string) bool {
	if key == "" {
		return false
	}
	_, ok := p.allowList[strings.ToLower(key)]
	return ok
}
