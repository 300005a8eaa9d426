package auth

import (
	"context"
	"errors"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockVerifier is a mock implementation of IDTokenVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fbauth.Token), args.Error(1)
}

// MockRecorder is a mock implementation of DecisionRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAuthDecision(path, outcome string) {
	m.Called(path, outcome)
}

var full = Capability{HasFullCredentials: true, CredentialsPath: "serviceAccountKey.json"}

func newTestResolver(cfg ResolverConfig, opts ...ResolverOption) *Resolver {
	return NewResolver(cfg, zap.NewNop(), opts...)
}

func TestResolverStrategyOrder(t *testing.T) {
	r := newTestResolver(ResolverConfig{})
	assert.Equal(t, []PathKind{PathMock, PathVerified, PathUnverified}, r.Strategies())
}

func TestResolveMockPath(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(ResolverConfig{MockTokensEnabled: true})

	t.Run("mock token with sub and email", func(t *testing.T) {
		token := mockToken(t, jwt.MapClaims{"sub": "u1", "email": "a@b.com"})

		res, err := r.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, PathMock, res.Path)
		assert.Equal(t, Identity{SubjectID: "u1", Email: "a@b.com", DisplayName: "User", PictureURL: ""}, res.Identity)
	})

	t.Run("mock token without sub uses demo_user", func(t *testing.T) {
		token := mockToken(t, jwt.MapClaims{"email": "a@b.com"})

		res, err := r.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "demo_user", res.Identity.SubjectID)
	})

	t.Run("subject equals sub for many inputs", func(t *testing.T) {
		for _, sub := range []string{"a", "user-123", "üñí", "with spaces", "0"} {
			res, err := r.Resolve(ctx, mockToken(t, jwt.MapClaims{"sub": sub}))
			require.NoError(t, err)
			assert.Equal(t, sub, res.Identity.SubjectID)
		}
	})

	t.Run("mock tokens are ignored when disabled", func(t *testing.T) {
		disabled := newTestResolver(ResolverConfig{})
		_, err := disabled.Resolve(ctx, mockToken(t, jwt.MapClaims{"sub": "u1"}))
		assert.ErrorIs(t, err, ErrVerificationImpossible)
	})
}

func TestResolveMockFallsThrough(t *testing.T) {
	ctx := context.Background()
	malformed := MockHeaderMarker + ".%%%notbase64.sig"

	t.Run("malformed mock token is given to real verification", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, malformed).
			Return(&fbauth.Token{UID: "real-uid", Claims: map[string]interface{}{"email": "r@b.com"}}, nil)

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier, MockTokensEnabled: true})
		res, err := r.Resolve(ctx, malformed)
		require.NoError(t, err)
		assert.Equal(t, PathVerified, res.Path)
		assert.Equal(t, "real-uid", res.Identity.SubjectID)
		verifier.AssertExpectations(t)
	})

	t.Run("malformed mock token without any verification is impossible", func(t *testing.T) {
		r := newTestResolver(ResolverConfig{MockTokensEnabled: true})
		_, err := r.Resolve(ctx, malformed)
		assert.ErrorIs(t, err, ErrVerificationImpossible)
	})

	t.Run("mock token with empty sub is not accepted as mock", func(t *testing.T) {
		token := mockToken(t, jwt.MapClaims{"sub": ""})
		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, token).
			Return(nil, errors.New("invalid signature"))

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier, MockTokensEnabled: true})
		_, err := r.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrVerificationFailed)
		verifier.AssertExpectations(t)
	})
}

func TestResolveVerifiedPath(t *testing.T) {
	ctx := context.Background()

	t.Run("verified token maps uid email name picture", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, "real-token").
			Return(&fbauth.Token{
				UID: "uid-1",
				Claims: map[string]interface{}{
					"email":   "v@b.com",
					"name":    "Verified User",
					"picture": "https://img/v.png",
				},
			}, nil)

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier})
		res, err := r.Resolve(ctx, "real-token")
		require.NoError(t, err)
		assert.Equal(t, PathVerified, res.Path)
		assert.Equal(t, Identity{
			SubjectID:   "uid-1",
			Email:       "v@b.com",
			DisplayName: "Verified User",
			PictureURL:  "https://img/v.png",
		}, res.Identity)
	})

	t.Run("expired token never falls back even with fallback enabled", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "attacker"})
		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, token).
			Return(nil, errors.New("ID token has expired"))

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier, AllowUnverified: true})
		res, err := r.Resolve(ctx, token)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.NotErrorIs(t, err, ErrVerificationImpossible)

		var failure *Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, PathVerified, failure.Path)
		verifier.AssertNumberOfCalls(t, "VerifyIDTokenAndCheckRevoked", 1)
	})

	t.Run("unsigned-looking token cannot force the fallback", func(t *testing.T) {
		token := "eyJhbGciOiJub25lIn0." + rawSegment(`{"sub":"forged"}`) + "."
		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, token).
			Return(nil, errors.New("invalid signature"))

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier, AllowUnverified: true})
		_, err := r.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})

	t.Run("provider result without uid fails", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, "tok").
			Return(&fbauth.Token{Claims: map[string]interface{}{"email": "v@b.com"}}, nil)

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier})
		_, err := r.Resolve(ctx, "tok")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("missing verifier with full capability fails closed", func(t *testing.T) {
		r := newTestResolver(ResolverConfig{Capability: full, AllowUnverified: true})
		_, err := r.Resolve(ctx, "tok")
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})

	t.Run("cancelled context surfaces as verification failure", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		verifier := new(MockVerifier)
		verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, "tok").Return(nil, context.Canceled)

		r := newTestResolver(ResolverConfig{Capability: full, Verifier: verifier})
		_, err := r.Resolve(cancelled, "tok")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolveUnverifiedFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("uid is used when sub is absent", func(t *testing.T) {
		r := newTestResolver(ResolverConfig{AllowUnverified: true})
		res, err := r.Resolve(ctx, signedToken(t, jwt.MapClaims{"uid": "u2"}))
		require.NoError(t, err)
		assert.Equal(t, PathUnverified, res.Path)
		assert.Equal(t, "u2", res.Identity.SubjectID)
		assert.Equal(t, "User", res.Identity.DisplayName)
		assert.Equal(t, "", res.Identity.Email)
	})

	t.Run("every use logs a warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		r := NewResolver(ResolverConfig{AllowUnverified: true}, zap.New(core))
		token := signedToken(t, jwt.MapClaims{"sub": "dev"})

		for i := 0; i < 3; i++ {
			_, err := r.Resolve(ctx, token)
			require.NoError(t, err)
		}

		warnings := logs.FilterMessageSnippet("unverified token decoding").All()
		assert.Len(t, warnings, 3)
		assert.Equal(t, "dev", warnings[0].ContextMap()["sub"])
	})

	t.Run("undecodable token is impossible to verify", func(t *testing.T) {
		r := newTestResolver(ResolverConfig{AllowUnverified: true})
		_, err := r.Resolve(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrVerificationImpossible)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("token without any subject is rejected", func(t *testing.T) {
		r := newTestResolver(ResolverConfig{AllowUnverified: true})
		_, err := r.Resolve(ctx, signedToken(t, jwt.MapClaims{"email": "x@y.com"}))
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("mock tier still wins over fallback", func(t *testing.T) {
		r := newTestResolver(ResolverConfig{AllowUnverified: true, MockTokensEnabled: true})
		res, err := r.Resolve(ctx, mockToken(t, jwt.MapClaims{}))
		require.NoError(t, err)
		assert.Equal(t, PathMock, res.Path)
		assert.Equal(t, "demo_user", res.Identity.SubjectID)
	})
}

func TestResolveNoVerificationAvailable(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(ResolverConfig{})

	tokens := []string{
		"",
		"garbage",
		"a.b.c",
		signedToken(t, jwt.MapClaims{"sub": "u1"}),
		signedToken(t, jwt.MapClaims{"uid": "u2", "email": "x@y.com"}),
		"eyJhbGciOiJub25lIn0." + rawSegment(`{"sub":"forged"}`) + ".",
	}

	for _, token := range tokens {
		res, err := r.Resolve(ctx, token)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrVerificationImpossible, "token %q", token)
	}

	t.Run("mock tokens enabled only admits the test marker", func(t *testing.T) {
		withMock := newTestResolver(ResolverConfig{MockTokensEnabled: true})
		for _, token := range tokens {
			_, err := withMock.Resolve(ctx, token)
			assert.ErrorIs(t, err, ErrVerificationImpossible, "token %q", token)
		}

		res, err := withMock.Resolve(ctx, mockToken(t, jwt.MapClaims{"sub": "u1"}))
		require.NoError(t, err)
		assert.Equal(t, PathMock, res.Path)

		_, err = r.Resolve(ctx, mockToken(t, jwt.MapClaims{"sub": "u1"}))
		assert.ErrorIs(t, err, ErrVerificationImpossible)
	})
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	verifier := new(MockVerifier)
	verifier.On("VerifyIDTokenAndCheckRevoked", mock.Anything, "stable").
		Return(&fbauth.Token{UID: "uid-1"}, nil)

	resolvers := map[string]*Resolver{
		"mock":       newTestResolver(ResolverConfig{MockTokensEnabled: true}),
		"verified":   newTestResolver(ResolverConfig{Capability: full, Verifier: verifier}),
		"unverified": newTestResolver(ResolverConfig{AllowUnverified: true}),
		"impossible": newTestResolver(ResolverConfig{}),
	}
	tokens := map[string]string{
		"mock":       mockToken(t, jwt.MapClaims{"sub": "m"}),
		"verified":   "stable",
		"unverified": signedToken(t, jwt.MapClaims{"sub": "d"}),
		"impossible": "whatever",
	}

	for name, r := range resolvers {
		t.Run(name, func(t *testing.T) {
			first, err1 := r.Resolve(ctx, tokens[name])
			second, err2 := r.Resolve(ctx, tokens[name])
			assert.Equal(t, first, second)
			assert.Equal(t, FailureKind(err1), FailureKind(err2))
		})
	}
}

func TestResolverRecordsDecisions(t *testing.T) {
	ctx := context.Background()
	recorder := new(MockRecorder)
	recorder.On("RecordAuthDecision", "mock", "accept").Once()
	recorder.On("RecordAuthDecision", "unverified", "verification_impossible").Once()

	r := newTestResolver(ResolverConfig{MockTokensEnabled: true, AllowUnverified: true}, WithDecisionRecorder(recorder))

	_, err := r.Resolve(ctx, mockToken(t, jwt.MapClaims{"sub": "u1"}))
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "garbage")
	require.Error(t, err)

	recorder.AssertExpectations(t)

	none := new(MockRecorder)
	none.On("RecordAuthDecision", "none", "verification_impossible").Once()
	_, err = newTestResolver(ResolverConfig{}, WithDecisionRecorder(none)).Resolve(ctx, "x.y")
	require.Error(t, err)
	none.AssertExpectations(t)
}

func TestFailureError(t *testing.T) {
	f := newFailure(ErrVerificationFailed, PathVerified, errors.New("ID token has expired"))
	assert.Equal(t, "token verification failed (verified path): ID token has expired", f.Error())

	bare := newFailure(ErrVerificationImpossible, "", nil)
	assert.Equal(t, "token verification impossible", bare.Error())

	assert.Equal(t, "verification_failed", FailureKind(f))
	assert.Equal(t, "verification_impossible", FailureKind(bare))
	assert.Equal(t, "malformed_token", FailureKind(ErrMalformedToken))
	assert.Equal(t, "unknown", FailureKind(errors.New("other")))
	assert.Equal(t, "", FailureKind(nil))
}
