package auth

import (
	"context"
	"net/http"
	"strings"

	"mealbook/internal/core"
)

type contextKey string

const claimsKey contextKey = "claims"

// WithClaims returns a copy of ctx carrying the authenticated claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFrom returns the claims stored by WithClaims, or nil.
func ClaimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// RequireRole reports whether the caller in ctx may act as role. Admins may
// do everything members can.
func RequireRole(ctx context.Context, role core.Role) error {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ErrMissingToken
	}
	if !c.Role.Valid() {
		return ErrInvalidToken
	}
	if role == core.RoleAdmin && c.Role != core.RoleAdmin {
		return core.ErrUnauthorized
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
