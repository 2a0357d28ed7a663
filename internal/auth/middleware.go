// internal/auth/middleware.go
// Bearer token authentication for the discovery API.
// Tokens are issued by the auth service; this side only validates them.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/imadgeboyega/fitmatch-backend/internal/common/utils"
	"github.com/rs/zerolog"
)

type contextKey string

const userIDKey contextKey = "userID"

// Middleware provides authentication middleware
type Middleware struct {
	secret string
	log    zerolog.Logger
}

// NewMiddleware creates a new auth middleware validating tokens signed with secret
func NewMiddleware(secret string, log zerolog.Logger) *Middleware {
	return &Middleware{
		secret: secret,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Authenticate is the main middleware function that protects routes
// It verifies the JWT token and adds the user id to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract token from Authorization header
		token := extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, "Missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		// 2. Validate token
		claims, err := utils.ValidateJWT(token, m.secret)
		if err != nil {
			m.log.Debug().Err(err).Msg("token rejected")
			utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// 3. Check if it's an access token (not refresh)
		if claims.Type != utils.TokenTypeAccess {
			utils.ErrorResponse(w, "Invalid token type", http.StatusUnauthorized)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// 4. Pass to the next handler with the user id in context
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// WithUserID returns a copy of ctx carrying userID
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
