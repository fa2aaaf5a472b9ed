package rowguard

import "context"

type contextKey int

const (
	ctxKeyUserID contextKey = iota
	ctxKeyOrgID
)

// WithSubject returns a context carrying the given user and organization
// IDs. Use this for standalone mode (without Forge); the engine fills empty
// Token fields from it.
func WithSubject(ctx context.Context, userID, orgID string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	ctx = context.WithValue(ctx, ctxKeyOrgID, orgID)
	return ctx
}

func userIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyUserID).(string)
	if !ok {
		return ""
	}
	return v
}

func orgIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyOrgID).(string)
	if !ok {
		return ""
	}
	return v
}
