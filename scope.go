package rowguard

import (
	"context"

	"github.com/xraph/forge"
)

type subjectScope struct {
	userID string
	orgID  string
}

// scopeFromContext extracts the acting subject from forge.Scope or
// standalone context. Forge scope carries the organization; the user always
// comes from the subject context since forge.Scope does not model one.
func scopeFromContext(ctx context.Context) subjectScope {
	scope := subjectScope{
		userID: userIDFromContext(ctx),
		orgID:  orgIDFromContext(ctx),
	}
	if s, ok := forge.ScopeFrom(ctx); ok && scope.orgID == "" {
		scope.orgID = s.OrgID()
	}
	return scope
}

// resolveToken fills empty Token fields from the ambient scope.
func resolveToken(ctx context.Context, token Token) Token {
	if token.UserID != "" && token.OrganizationID != "" {
		return token
	}
	scope := scopeFromContext(ctx)
	if token.UserID == "" {
		token.UserID = scope.userID
	}
	if token.OrganizationID == "" {
		token.OrganizationID = scope.orgID
	}
	return token
}
