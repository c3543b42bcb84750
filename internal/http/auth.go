package http

import (
	"errors"
	"net/http"

	"mealbook/internal/auth"
	"mealbook/internal/core"
	"mealbook/internal/log"
)

// authenticate verifies a bearer token when one is sent and stores its
// claims on the request. Requests without a token pass through; member and
// admin decide whether they may continue.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r)
		if errors.Is(err, auth.ErrMissingToken) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}

		claims, err := s.jwt.Validate(token)
		if err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(),
				"Token rejected", log.FieldError, err.Error(), log.FieldPath, r.URL.Path)
			s.fail(w, r, auth.ErrInvalidToken)
			return
		}

		ctx := auth.WithClaims(r.Context(), claims)
		logger := log.FromContext(ctx).With(log.FieldSubject, claims.Subject, log.FieldRole, string(claims.Role))
		next.ServeHTTP(w, r.WithContext(log.NewContext(ctx, logger)))
	})
}

// member requires any valid token.
func (s *Server) member(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireRole(r.Context(), core.RoleMember); err != nil {
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// admin wraps a mutation so that only admin tokens reach it.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireRole(r.Context(), core.RoleAdmin); err != nil {
			s.fail(w, r, err)
			return
		}
		next(w, r)
	}
}
