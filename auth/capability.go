package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// Capability records whether full cryptographic verification is available.
// It is built once at startup and handed to the resolver by value; picking up
// newly provisioned credentials requires a restart.
type Capability struct {
	HasFullCredentials bool
	// CredentialsPath is the bundle location that was probed, for diagnostics only
	CredentialsPath string
	// ProjectID is the identity-provider project the verifier was built for
	ProjectID string
}

// Mode returns "full" when tokens can be verified and "limited" otherwise.
func (c Capability) Mode() string {
	if c.HasFullCredentials {
		return "full"
	}
	return "limited"
}

// DefaultProjectID is reported in diagnostics when no bundle is loaded and
// no project is configured.
const DefaultProjectID = "greengalaxyvr-3c624"

// CredentialConfig locates the credential bundle. An empty ProjectID means the
// bundle's project_id is used.
type CredentialConfig struct {
	Path      string
	ProjectID string
}

// VerifierFactory builds a provider verifier from a validated credential bundle.
type VerifierFactory func(ctx context.Context, projectID string, bundle []byte) (IDTokenVerifier, error)

// serviceAccountBundle is the subset of a service-account key file we require.
type serviceAccountBundle struct {
	Type        string `json:"type" validate:"required,eq=service_account"`
	ProjectID   string `json:"project_id" validate:"required"`
	PrivateKey  string `json:"private_key" validate:"required"`
	ClientEmail string `json:"client_email" validate:"required,email"`
}

// LoadCapability probes the credential bundle once. A missing bundle is the normal
// development state; an unreadable or invalid one is logged and treated as missing.
// The returned verifier is nil unless HasFullCredentials is true.
func LoadCapability(ctx context.Context, cfg CredentialConfig, factory VerifierFactory, logger *zap.Logger) (Capability, IDTokenVerifier) {
	capability := Capability{
		CredentialsPath: cfg.Path,
		ProjectID:       cfg.ProjectID,
	}
	if capability.ProjectID == "" {
		capability.ProjectID = DefaultProjectID
	}

	data, err := os.ReadFile(cfg.Path)
	if errors.Is(err, fs.ErrNotExist) || cfg.Path == "" {
		logger.Info("credential bundle not found, running in development mode (no cryptographic verification)",
			zap.String("path", cfg.Path),
			zap.String("project_id", capability.ProjectID))
		return capability, nil
	}
	if err != nil {
		logger.Error("failed to read credential bundle, continuing without verification",
			zap.String("path", cfg.Path),
			zap.Error(err))
		return capability, nil
	}

	bundle, err := parseBundle(data)
	if err != nil {
		logger.Error("invalid credential bundle, continuing without verification",
			zap.String("path", cfg.Path),
			zap.Error(err))
		return capability, nil
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = bundle.ProjectID
	}

	if factory == nil {
		factory = NewFirebaseVerifier
	}
	verifier, err := factory(ctx, projectID, data)
	if err != nil {
		logger.Error("failed to initialize token verifier, continuing without verification",
			zap.String("path", cfg.Path),
			zap.String("project_id", projectID),
			zap.Error(err))
		return capability, nil
	}

	capability.HasFullCredentials = true
	capability.ProjectID = projectID
	logger.Info("token verifier initialized with service account credentials",
		zap.String("project_id", projectID),
		zap.String("client_email", bundle.ClientEmail))

	return capability, verifier
}

func parseBundle(data []byte) (*serviceAccountBundle, error) {
	var bundle serviceAccountBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse credential bundle: %w", err)
	}
	if err := utils.ValidateStruct(&bundle); err != nil {
		if fields := utils.GetValidationFields(err); len(fields) > 0 {
			return nil, fmt.Errorf("credential bundle validation failed: %v", fields)
		}
		return nil, fmt.Errorf("credential bundle validation failed: %w", err)
	}
	return &bundle, nil
}
