package middleware

import "context"

// principal is the verified caller attached by Auth and OptionalAuth.
type principal struct {
	userID   string
	accessID string
}

type principalKey struct{}

func principalFrom(ctx context.Context) principal {
	if ctx == nil {
		return principal{}
	}
	p, _ := ctx.Value(principalKey{}).(principal)
	return p
}

func withPrincipal(ctx context.Context, p principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

func UserIDFromContext(ctx context.Context) string {
	return principalFrom(ctx).userID
}

// AccessIDFromContext returns the jti of the verified access token.
func AccessIDFromContext(ctx context.Context) string {
	return principalFrom(ctx).accessID
}

// WithUserID marks ctx as belonging to an account. Used by tests and
// internal callers that have already authenticated the user.
func WithUserID(ctx context.Context, userID string) context.Context {
	p := principalFrom(ctx)
	p.userID = userID
	return withPrincipal(ctx, p)
}
