package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator checks a bearer token and returns the user it was issued to
type TokenValidator interface {
	TokensEnabled() bool
	ValidateJWT(token string) (string, error)
}

var _ TokenValidator = (*services.UserService)(nil)

// AuthMiddleware creates a middleware for JWT authentication. A token, when
// sent, must be valid; with required set a missing token is rejected too.
// Nothing is checked while tokens are disabled.
func AuthMiddleware(validator TokenValidator, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validator.TokensEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					respondError(w, "Authorization header required", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := validator.ValidateJWT(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// CheckActor fails when the request carries a token issued to someone other
// than userID. Unauthenticated requests pass.
func CheckActor(ctx context.Context, userID string) error {
	if tokenUser := GetUserID(ctx); tokenUser != "" && tokenUser != userID {
		return fmt.Errorf("%w: token does not belong to user", apperr.ErrUnauthorized)
	}
	return nil
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ValidateWebSocketToken validates JWT token from WebSocket query parameter
func ValidateWebSocketToken(token string, validator TokenValidator) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token required", apperr.ErrUnauthorized)
	}
	return validator.ValidateJWT(token)
}
