package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/greengalaxy/vr-gateway/services/providers"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// ProviderName is the registry name of this adapter
	ProviderName = "gemini"

	defaultTimeout = 60 * time.Second
)

// supportedPrefixes are the model families served through the Gemini API
var supportedPrefixes = []string{"gemini-", "imagen-"}

// knownModels is advertised through ListModels
var knownModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"imagen-3",
}

// contentGenerator is the slice of the genai client the adapter uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini adapter configuration
type Config struct {
	APIKey  string
	Timeout time.Duration
}

// Adapter implements the Provider interface for the Gemini API
type Adapter struct {
	models  contentGenerator
	timeout time.Duration
	logger  *zap.Logger
}

// NewAdapter creates a Gemini adapter backed by the Google Gen AI SDK
func NewAdapter(ctx context.Context, cfg Config, logger *zap.Logger) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newAdapter(client.Models, cfg.Timeout, logger), nil
}

func newAdapter(models contentGenerator, timeout time.Duration, logger *zap.Logger) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		models:  models,
		timeout: timeout,
		logger:  logger,
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return ProviderName
}

// GenerateContent sends a single-turn prompt to the model
func (a *Adapter) GenerateContent(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	startTime := time.Now()

	if err := a.ValidateModel(req.Model); err != nil {
		return nil, providers.NewProviderError(a.Name(), "INVALID_MODEL", err.Error(), false, err)
	}

	timeout := a.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var config *genai.GenerateContentConfig
	if req.ResponseMIMEType != "" {
		config = &genai.GenerateContentConfig{ResponseMIMEType: req.ResponseMIMEType}
	}

	resp, err := a.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		a.logger.Warn("gemini request failed",
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Error(err))
		return nil, classifyError(ctx, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "model returned no text", true, nil)
	}

	out := &providers.GenerateResponse{
		Text:     text,
		Model:    req.Model,
		Provider: a.Name(),
		Latency:  time.Since(startTime),
	}
	if usage := resp.UsageMetadata; usage != nil {
		out.Usage = providers.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}
	return out, nil
}

// IsAvailable reports whether a client was configured
func (a *Adapter) IsAvailable(context.Context) bool {
	return a.models != nil
}

// ValidateModel accepts the Gemini and Imagen model families
func (a *Adapter) ValidateModel(model string) error {
	for _, prefix := range supportedPrefixes {
		if strings.HasPrefix(model, prefix) && len(model) > len(prefix) {
			return nil
		}
	}
	return fmt.Errorf("model %q is not supported by the gemini provider", model)
}

// ListModels returns the advertised models
func (a *Adapter) ListModels() []string {
	out := make([]string, len(knownModels))
	copy(out, knownModels)
	return out
}

// classifyError maps SDK and transport failures onto provider error codes
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return providers.NewProviderError(ProviderName, "TIMEOUT", "gemini request timed out", true, err)
	}
	if errors.Is(err, context.Canceled) {
		return providers.NewProviderError(ProviderName, "CANCELED", "gemini request canceled", false, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return providers.NewProviderError(ProviderName, "RATE_LIMITED", "gemini rate limit exceeded", true, err)
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return providers.NewProviderError(ProviderName, "AUTH_ERROR", "gemini rejected the API key", false, err)
		case apiErr.Code == http.StatusNotFound:
			return providers.NewProviderError(ProviderName, "MODEL_NOT_FOUND", "gemini model not found", false, err)
		case apiErr.Code >= 500:
			return providers.NewProviderError(ProviderName, "UPSTREAM_ERROR", "gemini service error", true, err)
		default:
			return providers.NewProviderError(ProviderName, "API_ERROR", "gemini request rejected", false, err)
		}
	}

	return providers.NewProviderError(ProviderName, "HTTP_ERROR", "gemini request failed", true, err)
}
