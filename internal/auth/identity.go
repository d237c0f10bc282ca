package auth

import (
	"context"

	"github.com/labstack/echo/v4"

	apperrors "coinhub/internal/errors"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uint
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}

// CallerID returns the authenticated user id for an echo request.
func CallerID(c echo.Context) (uint, error) {
	id, ok := IdentityFromContext(c.Request().Context())
	if !ok {
		return 0, apperrors.ErrAuthenticationRequired
	}
	return id.UserID, nil
}
