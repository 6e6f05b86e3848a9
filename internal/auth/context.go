package auth

import "context"

type contextKey struct{}

// AuthContext identifies the caller of a request once the identity provider
// has vouched for them.
type AuthContext struct {
	OwnerID   string
	SessionID string
	Email     string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// OwnerID returns the authenticated owner, or "" outside an authenticated request.
func OwnerID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.OwnerID
}
