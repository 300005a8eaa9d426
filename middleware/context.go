package middleware

import (
	"context"

	"github.com/greengalaxy/vr-gateway/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// IdentityKey is the context key for the authenticated caller identity
	IdentityKey contextKey = "identity"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetIdentityFromContext retrieves the authenticated identity from context
func GetIdentityFromContext(ctx context.Context) *auth.Identity {
	if val := ctx.Value(IdentityKey); val != nil {
		if id, ok := val.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}
