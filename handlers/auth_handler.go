package handlers

import (
	"context"
	"net/http"

	"github.com/greengalaxy/vr-gateway/auth"
	"github.com/greengalaxy/vr-gateway/middleware"
	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// Fixed session attributes until organizations are provisioned per tenant
const (
	defaultRole  = "USER"
	defaultOrgID = "org_def"
)

// defaultOrganization is returned with every session
var defaultOrganization = Organization{
	ID:                 defaultOrgID,
	Name:               "GreenGalaxy HQ",
	PrimaryColor:       "#06B6D4",
	SecondaryColor:     "#1E293B",
	Status:             "VERIFIED",
	Plan:               "ENTERPRISE",
	SubscriptionStatus: "ACTIVE",
}

// LoginRequest is the body of POST /api/auth/google.
// A missing or empty idToken is left to the gate, which rejects it like any other bad token.
type LoginRequest struct {
	IDToken string `json:"idToken"`
}

// SessionUser is the user record of a login session
type SessionUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Role    string `json:"role"`
	OrgID   string `json:"orgId"`
}

// Organization describes the tenant a session belongs to
type Organization struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	PrimaryColor       string `json:"primaryColor"`
	SecondaryColor     string `json:"secondaryColor"`
	Status             string `json:"status"`
	Plan               string `json:"plan"`
	SubscriptionStatus string `json:"subscriptionStatus"`
}

// Session is returned to the client after a successful login
type Session struct {
	Token string       `json:"token"`
	User  SessionUser  `json:"user"`
	Org   Organization `json:"org"`
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	Status  string  `json:"status"`
	Session Session `json:"session"`
}

// TokenAuthenticator resolves an identity token into a caller identity
type TokenAuthenticator interface {
	AuthenticateWithFields(ctx context.Context, token string, fields ...zap.Field) (*auth.Identity, error)
}

// AuthHandler handles session login
type AuthHandler struct {
	gate   TokenAuthenticator
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(gate TokenAuthenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		gate:   gate,
		logger: logger,
	}
}

// HandleGoogleLogin handles POST /api/auth/google.
// The identity token is checked by the request gate and echoed back as the session token.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to parse login body",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	id, err := h.gate.AuthenticateWithFields(ctx, req.IDToken,
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path))
	if err != nil {
		middleware.WriteUnauthorized(w)
		return
	}

	h.logger.Info("session established",
		zap.String("request_id", requestID),
		zap.String("user_id", id.SubjectID))

	resp := LoginResponse{
		Status: "ok",
		Session: Session{
			Token: req.IDToken,
			User: SessionUser{
				ID:      id.SubjectID,
				Email:   id.Email,
				Name:    id.DisplayName,
				Picture: id.PictureURL,
				Role:    defaultRole,
				OrgID:   defaultOrgID,
			},
			Org: defaultOrganization,
		},
	}
	if err := utils.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to write login response", zap.Error(err))
	}
}
