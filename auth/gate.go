package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// TokenResolver is the trust policy consumed by the gate.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*Resolution, error)
}

// Gate is the single entry point protected operations call before proceeding.
// It collapses every failure kind into ErrUnauthorized; the specific kind is
// only written to the operator log.
type Gate struct {
	resolver TokenResolver
	logger   *zap.Logger
}

// NewGate creates a request gate over resolver
func NewGate(resolver TokenResolver, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate returns the caller identity or ErrUnauthorized.
func (g *Gate) Authenticate(ctx context.Context, token string) (*Identity, error) {
	return g.AuthenticateWithFields(ctx, token)
}

// AuthenticateWithFields is Authenticate with extra log fields (request ID, route).
func (g *Gate) AuthenticateWithFields(ctx context.Context, token string, fields ...zap.Field) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		g.logger.Warn("authentication failed",
			append(fields, zap.String("kind", FailureKind(ErrMalformedToken)), zap.String("reason", "empty token"))...)
		return nil, ErrUnauthorized
	}

	res, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		g.logger.Warn("authentication failed",
			append(fields, zap.String("kind", FailureKind(err)), zap.Error(err))...)
		return nil, ErrUnauthorized
	}

	g.logger.Debug("authentication successful",
		append(fields, zap.String("path", string(res.Path)), zap.String("sub", res.Identity.SubjectID))...)

	id := res.Identity
	return &id, nil
}
