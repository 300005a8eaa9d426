package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		claims  Claims
		path    PathKind
		want    Identity
		wantErr error
	}{
		{
			name:   "mock path applies demo defaults",
			claims: Claims{},
			path:   PathMock,
			want:   Identity{SubjectID: "demo_user", Email: "demo@example.com", DisplayName: "User"},
		},
		{
			name:   "mock path keeps provided claims",
			claims: Claims{"sub": "u1", "email": "a@b.com", "name": "Ada", "picture": "https://img/a.png"},
			path:   PathMock,
			want:   Identity{SubjectID: "u1", Email: "a@b.com", DisplayName: "Ada", PictureURL: "https://img/a.png"},
		},
		{
			name:    "mock path rejects an explicitly empty subject",
			claims:  Claims{"sub": ""},
			path:    PathMock,
			wantErr: ErrMissingSubject,
		},
		{
			name:    "mock path rejects a non-string subject",
			claims:  Claims{"sub": 42.0},
			path:    PathMock,
			wantErr: ErrMissingSubject,
		},
		{
			name:   "verified path maps uid",
			claims: Claims{"uid": "firebase-uid", "email": "v@b.com"},
			path:   PathVerified,
			want:   Identity{SubjectID: "firebase-uid", Email: "v@b.com", DisplayName: "User"},
		},
		{
			name:    "verified path without uid fails",
			claims:  Claims{"email": "v@b.com"},
			path:    PathVerified,
			wantErr: ErrMissingSubject,
		},
		{
			name:   "unverified path prefers sub",
			claims: Claims{"sub": "s1", "uid": "u1"},
			path:   PathUnverified,
			want:   Identity{SubjectID: "s1", DisplayName: "User"},
		},
		{
			name:   "unverified path falls back to uid",
			claims: Claims{"uid": "u2"},
			path:   PathUnverified,
			want:   Identity{SubjectID: "u2", DisplayName: "User"},
		},
		{
			name:   "unverified path skips an empty sub",
			claims: Claims{"sub": "", "uid": "u3"},
			path:   PathUnverified,
			want:   Identity{SubjectID: "u3", DisplayName: "User"},
		},
		{
			name:    "unverified path without subject fails",
			claims:  Claims{"email": "x@y.com"},
			path:    PathUnverified,
			wantErr: ErrMissingSubject,
		},
		{
			name:   "null and non-string optional claims become defaults",
			claims: Claims{"sub": "s1", "email": nil, "name": 7.0, "picture": false},
			path:   PathUnverified,
			want:   Identity{SubjectID: "s1", Email: "", DisplayName: "User", PictureURL: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.claims, tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Identity{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
