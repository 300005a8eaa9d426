package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/greengalaxy/vr-gateway/auth"
	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// Authenticator defines the request gate used by the middleware
type Authenticator interface {
	// AuthenticateWithFields returns the caller identity or auth.ErrUnauthorized
	AuthenticateWithFields(ctx context.Context, token string, fields ...zap.Field) (*auth.Identity, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	gate   Authenticator
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(gate Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		gate:   gate,
		logger: logger,
	}
}

// unauthorizedMessage is the only failure text callers ever see
const unauthorizedMessage = "Invalid or missing authentication token"

// RequireAuth is a middleware that requires a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		// A missing or non-bearer header reaches the gate as an empty token
		token := extractBearerToken(r)

		id, err := m.gate.AuthenticateWithFields(ctx, token,
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path))
		if err != nil {
			WriteUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
	})
}

// WriteUnauthorized writes the standardized 401 with a bearer challenge
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="greengalaxy"`)
	_ = utils.WriteUnauthorized(w, unauthorizedMessage)
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Check if it starts with "Bearer "
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
