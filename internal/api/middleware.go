package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tgienger/kanban/internal/identity"
)

type claimsKey struct{}

// ClaimsFromContext returns the claims of an authenticated request.
func ClaimsFromContext(ctx context.Context) (*identity.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*identity.Claims)
	return c, ok
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.log.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: %s %s", r.Method, r.URL.Path)
			writeError(w, http.StatusUnauthorized, "authorization header missing")
			return
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			s.log.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: %s %s", r.Method, r.URL.Path)
			writeError(w, http.StatusUnauthorized, "bearer token required")
			return
		}
		if s.tokens == nil {
			writeError(w, http.StatusUnauthorized, "token validation unavailable")
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			s.log.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: %s %s: %v", r.Method, r.URL.Path, err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// matchSession rejects board writes made with a token for a user other than
// the one signed in to the store. New tasks and tags take the session user.
func (s *Server) matchSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		claims, ok := ClaimsFromContext(r.Context())
		user := s.store.CurrentUser()
		if !ok || user == nil || user.ID != claims.Subject {
			s.log.Warnf("Event ID: JWT_AUTH_SESSION_MISMATCH, Description: %s %s", r.Method, r.URL.Path)
			writeError(w, http.StatusForbidden, "token does not belong to the signed-in user")
			return
		}
		next.ServeHTTP(w, r)
	})
}
