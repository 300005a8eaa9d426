package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedToken is returned when a token is structurally invalid
	ErrMalformedToken = errors.New("malformed token")

	// ErrVerificationFailed is returned when the identity provider rejects a token
	// (expired, revoked, bad signature, provider unreachable)
	ErrVerificationFailed = errors.New("token verification failed")

	// ErrVerificationImpossible is returned when the server has no way to verify a token
	ErrVerificationImpossible = errors.New("token verification impossible")

	// ErrMissingSubject is returned when claims carry no usable subject identifier
	ErrMissingSubject = errors.New("missing subject identifier")

	// ErrUnauthorized is the only failure the request gate surfaces to callers
	ErrUnauthorized = errors.New("unauthorized")
)

// Failure is a typed resolution failure. Kind is one of ErrMalformedToken,
// ErrVerificationFailed or ErrVerificationImpossible; Err is the underlying cause.
type Failure struct {
	Kind error
	Path PathKind
	Err  error
}

// Error implements the error interface
func (f *Failure) Error() string {
	prefix := f.Kind.Error()
	if f.Path != "" {
		prefix = fmt.Sprintf("%s (%s path)", prefix, f.Path)
	}
	if f.Err != nil && !errors.Is(f.Err, f.Kind) {
		return fmt.Sprintf("%s: %v", prefix, f.Err)
	}
	return prefix
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

func newFailure(kind error, path PathKind, err error) *Failure {
	return &Failure{Kind: kind, Path: path, Err: err}
}

// FailureKind returns a stable label for err, used in logs and metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrVerificationImpossible):
		return "verification_impossible"
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	default:
		return "unknown"
	}
}
