package app

import (
	"context"
	"fmt"

	"github.com/greengalaxy/vr-gateway/auth"
	"github.com/greengalaxy/vr-gateway/config"
	"github.com/greengalaxy/vr-gateway/internal/observability"
	"github.com/greengalaxy/vr-gateway/middleware"
	"github.com/greengalaxy/vr-gateway/services/discovery"
	"github.com/greengalaxy/vr-gateway/services/providers"
	"github.com/greengalaxy/vr-gateway/services/providers/gemini"
	"github.com/greengalaxy/vr-gateway/services/workspace"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Auth
	Capability     auth.Capability
	Resolver       *auth.Resolver
	Gate           *auth.Gate
	AuthMiddleware *middleware.AuthMiddleware

	// Provider Registry
	ProviderRegistry *providers.Registry

	// Services
	Workspace *workspace.Service
	Discovery *discovery.Service
}

// Option customizes dependency construction
type Option func(*options)

type options struct {
	verifierFactory auth.VerifierFactory
	provider        providers.Provider
}

// WithVerifierFactory replaces the Firebase verifier constructor
func WithVerifierFactory(factory auth.VerifierFactory) Option {
	return func(o *options) {
		o.verifierFactory = factory
	}
}

// WithProvider registers the given provider instead of building one from config
func WithProvider(provider providers.Provider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// NewDependencies creates and wires up all application dependencies.
// Missing credentials or API keys degrade features; they are not errors.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Dependencies, error) {
	o := options{verifierFactory: auth.NewFirebaseVerifier}
	for _, opt := range opts {
		opt(&o)
	}

	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	deps.initAuth(ctx, cfg, o.verifierFactory)

	if err := deps.initProviders(ctx, cfg, o.provider); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.Workspace = workspace.NewService(deps.ProviderRegistry, logger, workspace.WithModelRecorder(deps.Metrics))
	deps.Discovery = discovery.NewService(logger)

	logger.Info("all dependencies initialized successfully",
		zap.String("auth_mode", deps.Capability.Mode()),
		zap.Bool("gemini_configured", deps.GeminiConfigured()))
	return deps, nil
}

// initAuth probes the credential bundle once and builds the trust pipeline around it
func (d *Dependencies) initAuth(ctx context.Context, cfg *config.Config, factory auth.VerifierFactory) {
	capability, verifier := auth.LoadCapability(ctx, auth.CredentialConfig{
		Path:      cfg.Firebase.CredentialsPath,
		ProjectID: cfg.Firebase.ProjectID,
	}, factory, d.Logger)

	d.Capability = capability
	d.Resolver = auth.NewResolver(auth.ResolverConfig{
		Capability:        capability,
		Verifier:          verifier,
		AllowUnverified:   cfg.Auth.AllowUnverified,
		MockTokensEnabled: cfg.Auth.MockTokensEnabled,
	}, d.Logger, auth.WithDecisionRecorder(d.Metrics))
	d.Gate = auth.NewGate(d.Resolver, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Gate, d.Logger)

	if !capability.HasFullCredentials {
		if cfg.Auth.AllowUnverified {
			d.Logger.Warn("token signatures are NOT verified; development fallback enabled")
		} else {
			d.Logger.Warn("no verification credentials and fallback disabled; only test tokens can authenticate",
				zap.Bool("mock_tokens_enabled", cfg.Auth.MockTokensEnabled))
		}
	}
}

// initProviders initializes the provider registry with configured providers
func (d *Dependencies) initProviders(ctx context.Context, cfg *config.Config, provider providers.Provider) error {
	registry := providers.NewRegistry()
	d.ProviderRegistry = registry

	if provider == nil && cfg.Gemini.APIKey != "" {
		adapter, err := gemini.NewAdapter(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Timeout: cfg.Gemini.Timeout,
		}, d.Logger)
		if err != nil {
			return err
		}
		provider = adapter
	}

	if provider == nil {
		d.Logger.Warn("GEMINI_API_KEY not set, AI routes will return 503")
		return nil
	}

	if err := registry.RegisterProvider(provider); err != nil {
		return err
	}
	for _, prefix := range []string{"gemini-", "imagen-"} {
		if err := registry.RegisterModelPrefix(prefix, provider.Name()); err != nil {
			return err
		}
	}
	d.Logger.Info("registered generative model provider", zap.String("provider", provider.Name()))
	return nil
}

// GeminiConfigured reports whether a generative model provider is registered
func (d *Dependencies) GeminiConfigured() bool {
	return d.ProviderRegistry != nil && d.ProviderRegistry.Count() > 0
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	// Sync logger; stderr sync errors are expected on some platforms
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return nil
}
