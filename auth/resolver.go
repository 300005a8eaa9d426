package auth

import (
	"context"

	"go.uber.org/zap"
)

// DecisionRecorder receives one observation per resolution.
type DecisionRecorder interface {
	RecordAuthDecision(path, outcome string)
}

// ResolverConfig holds the immutable inputs of the trust policy.
type ResolverConfig struct {
	Capability Capability
	// Verifier is required when Capability.HasFullCredentials is true
	Verifier IDTokenVerifier
	// AllowUnverified enables the development fallback; it only takes effect
	// when no credentials are loaded
	AllowUnverified bool
	// MockTokensEnabled enables the test-token tier
	MockTokensEnabled bool
}

// Resolution is a successful trust decision.
type Resolution struct {
	Identity Identity
	Path     PathKind
}

// Resolver applies an ordered list of strategies; the first one that does not
// abstain decides. The order is mock, verified, unverified. Capability, not token
// shape, selects between verified and unverified.
//
// A Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	strategies []Strategy
	recorder   DecisionRecorder
	logger     *zap.Logger
}

// ResolverOption customizes a Resolver
type ResolverOption func(*Resolver)

// WithDecisionRecorder attaches a metrics sink
func WithDecisionRecorder(recorder DecisionRecorder) ResolverOption {
	return func(r *Resolver) {
		r.recorder = recorder
	}
}

// NewResolver builds the resolver with the standard precedence.
func NewResolver(cfg ResolverConfig, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		strategies: []Strategy{
			&mockStrategy{enabled: cfg.MockTokensEnabled, logger: logger},
			&verifiedStrategy{capability: cfg.Capability, verifier: cfg.Verifier, logger: logger},
			&unverifiedStrategy{capability: cfg.Capability, enabled: cfg.AllowUnverified, logger: logger},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategies returns the strategy names in precedence order.
func (r *Resolver) Strategies() []PathKind {
	names := make([]PathKind, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve decides whether token identifies a caller. Every outcome is either a
// Resolution or a *Failure.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Resolution, error) {
	for _, s := range r.strategies {
		d := s.Evaluate(ctx, token)
		switch d.Verdict {
		case Accept:
			r.record(s.Name(), "accept")
			return &Resolution{Identity: d.Identity, Path: s.Name()}, nil
		case Reject:
			r.record(s.Name(), FailureKind(d.Err))
			return nil, d.Err
		}
	}

	r.logger.Error("no verification path available: credentials missing and development fallback disabled")
	r.record("none", FailureKind(ErrVerificationImpossible))
	return nil, newFailure(ErrVerificationImpossible, "", nil)
}

func (r *Resolver) record(path PathKind, outcome string) {
	if r.recorder != nil {
		r.recorder.RecordAuthDecision(string(path), outcome)
	}
}
