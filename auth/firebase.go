package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// IDTokenVerifier performs full verification of an identity-provider token,
// including the revocation check. *fbauth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// NewFirebaseVerifier builds a Firebase Admin auth client from a service-account bundle.
func NewFirebaseVerifier(ctx context.Context, projectID string, bundle []byte) (IDTokenVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON(bundle))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return client, nil
}

// verifiedClaims flattens a verified provider token into claims keyed the way
// the verified path of the normalizer expects (uid/email/name/picture).
func verifiedClaims(token *fbauth.Token) Claims {
	claims := make(Claims, len(token.Claims)+1)
	for k, v := range token.Claims {
		claims[k] = v
	}
	claims["uid"] = token.UID
	return claims
}

// providerErrorReason classifies a provider verification error for operator logs.
func providerErrorReason(err error) string {
	switch {
	case fbauth.IsIDTokenExpired(err):
		return "expired"
	case fbauth.IsIDTokenRevoked(err):
		return "revoked"
	case fbauth.IsUserDisabled(err):
		return "user_disabled"
	case fbauth.IsIDTokenInvalid(err):
		return "invalid"
	default:
		return "provider_error"
	}
}
