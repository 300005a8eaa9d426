package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// MockHeaderMarker is the header segment that tags a token as a test token.
const MockHeaderMarker = "mockHeader"

// Verdict is a strategy's answer for a token.
type Verdict int

const (
	// Abstain means the strategy does not apply; the next one is consulted
	Abstain Verdict = iota
	// Accept means the strategy produced an identity
	Accept
	// Reject is terminal; no weaker strategy is consulted afterwards
	Reject
)

// String returns the verdict label used in logs and metrics
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "abstain"
	}
}

// Decision is the outcome of one strategy evaluation.
type Decision struct {
	Verdict  Verdict
	Identity Identity
	Err      error
}

func abstain() Decision { return Decision{Verdict: Abstain} }

func accept(id Identity) Decision { return Decision{Verdict: Accept, Identity: id} }

func reject(err error) Decision { return Decision{Verdict: Reject, Err: err} }

// Strategy is one named tier of the trust policy.
type Strategy interface {
	Name() PathKind
	Evaluate(ctx context.Context, token string) Decision
}

// mockStrategy accepts tokens tagged with MockHeaderMarker. Anything it cannot
// decode is left for the real verification tiers.
type mockStrategy struct {
	enabled bool
	logger  *zap.Logger
}

func (s *mockStrategy) Name() PathKind { return PathMock }

func (s *mockStrategy) Evaluate(_ context.Context, token string) Decision {
	if !s.enabled || !IsMockToken(token) {
		return abstain()
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		s.logger.Debug("mock token could not be decoded, deferring to verification", zap.Error(err))
		return abstain()
	}

	id, err := Normalize(claims, PathMock)
	if err != nil {
		s.logger.Debug("mock token has no usable subject, deferring to verification", zap.Error(err))
		return abstain()
	}
	return accept(id)
}

// verifiedStrategy performs full provider verification with revocation check.
// Once it applies it never defers: every error is terminal.
type verifiedStrategy struct {
	capability Capability
	verifier   IDTokenVerifier
	logger     *zap.Logger
}

func (s *verifiedStrategy) Name() PathKind { return PathVerified }

func (s *verifiedStrategy) Evaluate(ctx context.Context, token string) Decision {
	if !s.capability.HasFullCredentials {
		return abstain()
	}
	if s.verifier == nil {
		return reject(newFailure(ErrVerificationFailed, PathVerified, errors.New("verifier not initialized")))
	}

	verified, err := s.verifier.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		s.logger.Info("provider rejected token",
			zap.String("reason", providerErrorReason(err)),
			zap.Error(err))
		return reject(newFailure(ErrVerificationFailed, PathVerified, err))
	}
	if verified == nil {
		return reject(newFailure(ErrVerificationFailed, PathVerified, errors.New("provider returned no token")))
	}

	id, err := Normalize(verifiedClaims(verified), PathVerified)
	if err != nil {
		return reject(newFailure(ErrVerificationFailed, PathVerified, err))
	}
	return accept(id)
}

// unverifiedStrategy is the opt-in development fallback. It grants trust
// without cryptographic proof and warns on every use.
type unverifiedStrategy struct {
	capability Capability
	enabled    bool
	logger     *zap.Logger
}

func (s *unverifiedStrategy) Name() PathKind { return PathUnverified }

func (s *unverifiedStrategy) Evaluate(_ context.Context, token string) Decision {
	if s.capability.HasFullCredentials || !s.enabled {
		return abstain()
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		s.logger.Warn("development fallback could not decode token", zap.Error(err))
		return reject(newFailure(ErrVerificationImpossible, PathUnverified, err))
	}

	id, err := Normalize(claims, PathUnverified)
	if err != nil {
		s.logger.Warn("development fallback token has no usable subject", zap.Error(err))
		return reject(newFailure(ErrVerificationFailed, PathUnverified, err))
	}

	s.logger.Warn("DEV WARNING: authenticated user via unverified token decoding; provide a service account credential bundle to enable verification",
		zap.String("sub", id.SubjectID),
		zap.String("credentials_path", s.capability.CredentialsPath))
	return accept(id)
}

// IsMockToken reports whether the token's header segment is the test marker.
func IsMockToken(token string) bool {
	return strings.HasPrefix(token, MockHeaderMarker+".")
}
