package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"kepngern/internal/log"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	tokenKey  contextKey = "token"
)

// requireAuth rejects requests without a live bearer token and stores the
// token and its claims in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, Unauthorized("missing bearer token"))
			return
		}

		claims, err := s.auth.Verify(token)
		if err != nil {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Token rejected", log.FieldError, err)
			writeError(w, r, http.StatusUnauthorized, Unauthorized(err.Error()))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, tokenKey, token)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUsername, claims.Subject))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func claimsFrom(ctx context.Context) *jwt.RegisteredClaims {
	claims, _ := ctx.Value(claimsKey).(*jwt.RegisteredClaims)
	return claims
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
