package auth

import (
	"context"

	"scholarship-test-service/internal/domain"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// CurrentUser returns the authenticated user stored on ctx.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(domain.User)
	return u, ok
}

// ContextWithUser injects an authenticated user into context.
// Useful for tests and internal handlers.
func ContextWithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
