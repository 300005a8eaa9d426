package auth

// PathKind names the trust strategy that produced an identity.
type PathKind string

const (
	PathMock       PathKind = "mock"
	PathVerified   PathKind = "verified"
	PathUnverified PathKind = "unverified"
)

// DefaultDisplayName is used whenever a token carries no usable name claim.
const DefaultDisplayName = "User"

// Identity is the canonical caller identity. It is built per request and never persisted.
type Identity struct {
	SubjectID   string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	PictureURL  string `json:"picture"`
}

// claimDefaults describes how one path maps claims onto an Identity.
// SubjectKeys are tried in order; the first non-empty string wins.
type claimDefaults struct {
	SubjectKeys []string
	Subject     string
	Email       string
	DisplayName string
	PictureURL  string
}

// identityDefaults is the documented default table per path.
//
//	path        subject keys  subject     email               name  picture
//	mock        sub           demo_user   demo@example.com    User  ""
//	verified    uid           -           ""                  User  ""
//	unverified  sub, uid      -           ""                  User  ""
var identityDefaults = map[PathKind]claimDefaults{
	PathMock: {
		SubjectKeys: []string{"sub"},
		Subject:     "demo_user",
		Email:       "demo@example.com",
		DisplayName: DefaultDisplayName,
	},
	PathVerified: {
		SubjectKeys: []string{"uid"},
		DisplayName: DefaultDisplayName,
	},
	PathUnverified: {
		SubjectKeys: []string{"sub", "uid"},
		DisplayName: DefaultDisplayName,
	},
}

// Normalize maps claims onto the canonical Identity using the default table for path.
// Only non-empty string claims are used; anything else takes the default. An identity
// without a subject is never returned.
func Normalize(claims Claims, path PathKind) (Identity, error) {
	defaults, ok := identityDefaults[path]
	if !ok {
		defaults = claimDefaults{SubjectKeys: []string{"sub"}, DisplayName: DefaultDisplayName}
	}

	id := Identity{
		SubjectID:   defaults.Subject,
		Email:       defaults.Email,
		DisplayName: defaults.DisplayName,
		PictureURL:  defaults.PictureURL,
	}

	// A subject claim that is present but empty (or not a string) never takes the default.
	for _, key := range defaults.SubjectKeys {
		if v, ok := claims.String(key); ok {
			id.SubjectID = v
			break
		}
		if _, present := claims[key]; present {
			id.SubjectID = ""
		}
	}
	if v, ok := claims.String("email"); ok {
		id.Email = v
	}
	if v, ok := claims.String("name"); ok {
		id.DisplayName = v
	}
	if v, ok := claims.String("picture"); ok {
		id.PictureURL = v
	}

	if id.SubjectID == "" {
		return Identity{}, ErrMissingSubject
	}
	return id, nil
}
