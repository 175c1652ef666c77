package httpx

import (
	"context"

	"github.com/promptline/promptline-api/internal/domain/model"
)

// userContextKey is an unexported context key type for the authenticated user.
type userContextKey struct{}

// SetUserInContext stores the authenticated user in the request context.
func SetUserInContext(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns nil if no user is present.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey{}).(*model.User)
	return user
}
