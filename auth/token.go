package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Claims holds the decoded payload segment of a compact token.
// No field is required at decode time; defaults are applied by Normalize.
type Claims map[string]any

// String returns the claim value for key when it is a non-empty string.
func (c Claims) String(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	s, ok := c[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// DecodeClaims decodes the claims segment of a compact token without checking
// its signature. The result is NOT proof of authenticity and may only be trusted
// for explicitly tagged mock tokens or under the opt-in unverified mode.
func DecodeClaims(token string) (Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrMalformedToken, len(segments))
	}

	payload, err := decodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: claims are not a JSON object: %v", ErrMalformedToken, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: claims are null", ErrMalformedToken)
	}

	return claims, nil
}

// decodeSegment restores missing base64 padding and decodes the segment.
// A segment whose length is 1 mod 4 can never be valid base64.
func decodeSegment(segment string) ([]byte, error) {
	if segment == "" {
		return nil, fmt.Errorf("empty claims segment")
	}

	padded := segment + strings.Repeat("=", (4-len(segment)%4)%4)

	// JWTs use the URL-safe alphabet; accept the standard one as well.
	if b, err := base64.URLEncoding.DecodeString(padded); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(padded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 claims segment: %w", err)
	}
	return b, nil
}
