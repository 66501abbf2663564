package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
)

const bearerTokenKey contextKey = "bearer_token"

// TokenAuthMiddleware requires a bearer token on admin routes and stashes it
// in the request context. The token is not validated here; GitHub itself is
// the authority and rejects bad tokens on the first call made with it.
func TokenAuthMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeUnauthorizedResponse(w, "authorization token required", logger)
				return
			}

			ctx := context.WithValue(r.Context(), bearerTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithBearerToken returns a context carrying the given token, as
// TokenAuthMiddleware would produce.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// BearerTokenFromContext returns the caller's token, or "" when the request
// did not pass through TokenAuthMiddleware.
func BearerTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(bearerTokenKey).(string); ok {
		return token
	}
	return ""
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Remove "Bearer " prefix if present
		if strings.HasPrefix(authHeader, "Bearer ") {
			return authHeader[7:]
		}
		return authHeader
	}

	// Check query parameter as fallback
	return r.URL.Query().Get("token")
}

func writeUnauthorizedResponse(w http.ResponseWriter, message string, logger interfaces.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := map[string]string{
		"error": message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to write unauthorized response", err)
	}
}
