package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greengalaxy/vr-gateway/services"
	"github.com/greengalaxy/vr-gateway/services/providers"
	"go.uber.org/zap"
)

const (
	// DefaultModel is used when a request names no model
	DefaultModel = "gemini-1.5-flash"

	jsonMIMEType = "application/json"
)

const layoutPromptTemplate = `Generate a 3D workshop layout for: "%s".
Return a JSON array of objects with types 'box', 'cylinder', 'sticky_note', 'screen'.
Each object needs: type, title, color, pos{x,y,z}, size{w,h,d,r}, rot{x,y,z}.
Ensure the JSON is raw and valid.`

const systemInstructionTemplate = `You are an AI assistant integrated into a VR workspace.
Provide responses suitable for a 3D environment based on the current app mode (%s).
If mode is MAIL, draft or summarize emails.
If DOCS, generate document content or spreadsheets.
If DASHBOARD, provide high-level insights.`

// ProviderLocator finds the provider serving a model. *providers.Registry satisfies it.
type ProviderLocator interface {
	GetProviderForModel(model string) (providers.Provider, error)
	Count() int
}

// ModelRecorder records generative model calls
type ModelRecorder interface {
	RecordModelRequest(provider, model, outcome string, duration time.Duration)
}

// Option configures a Service
type Option func(*Service)

// WithModelRecorder attaches a metrics recorder
func WithModelRecorder(recorder ModelRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// Service turns workspace requests into model prompts
type Service struct {
	locator  ProviderLocator
	recorder ModelRecorder
	logger   *zap.Logger
}

// NewService creates a new workspace service
func NewService(locator ProviderLocator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		locator: locator,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateLayout asks the model for a workshop layout and decodes it into scene objects.
// The model name is passed through unchanged.
func (s *Service) GenerateLayout(ctx context.Context, req *LayoutRequest) ([]SceneObject, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, services.ErrEmptyPrompt
	}

	model := req.ModelName
	if model == "" {
		model = DefaultModel
	}

	resp, err := s.generate(ctx, &providers.GenerateRequest{
		Model:            model,
		Prompt:           fmt.Sprintf(layoutPromptTemplate, topic),
		ResponseMIMEType: jsonMIMEType,
	})
	if err != nil {
		return nil, err
	}

	objects, err := decodeLayout(resp.Text)
	if err != nil {
		s.logger.Warn("layout response is not a scene object array",
			zap.String("model", model),
			zap.Error(err))
		return nil, services.WrapError(services.ErrorTypeExternal, services.ErrInvalidProviderData.Message, err)
	}

	kept := objects[:0]
	for _, obj := range objects {
		if obj.valid() {
			kept = append(kept, obj)
		}
	}
	if dropped := len(objects) - len(kept); dropped > 0 {
		s.logger.Debug("dropped incomplete scene objects", zap.Int("dropped", dropped))
	}

	return kept, nil
}

// ProcessAppRequest answers an in-world app request using a mode-specific instruction
func (s *Service) ProcessAppRequest(ctx context.Context, req *AppRequest) (*AppResponse, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, services.ErrEmptyPrompt
	}
	if strings.TrimSpace(req.Mode) == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "mode is required", services.ErrInvalidInput).
			WithDetail("field", "mode")
	}

	system := fmt.Sprintf(systemInstructionTemplate, req.Mode)
	resp, err := s.generate(ctx, &providers.GenerateRequest{
		Model:  MapAppModel(req.ModelName),
		Prompt: system + "\n\nUser Request: " + input,
	})
	if err != nil {
		return nil, err
	}

	return &AppResponse{Text: resp.Text}, nil
}

// MapAppModel maps client-facing model names onto Gemini model IDs
func MapAppModel(name string) string {
	switch name {
	case "gemini-pro":
		return "gemini-1.5-pro"
	case "imagen-3":
		return "imagen-3"
	default:
		return DefaultModel
	}
}

func (s *Service) generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	if s.locator == nil || s.locator.Count() == 0 {
		return nil, services.ErrProviderUnavailable
	}

	provider, err := s.locator.GetProviderForModel(req.Model)
	if err != nil {
		if errors.Is(err, providers.ErrModelNotSupported) {
			return nil, services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidModel.Message, err).
				WithDetail("model", req.Model)
		}
		return nil, services.WrapInternal("failed to select provider", err)
	}

	start := time.Now()
	resp, err := provider.GenerateContent(ctx, req)
	s.record(provider.Name(), req.Model, err, time.Since(start))
	if err != nil {
		s.logger.Error("model request failed",
			zap.String("provider", provider.Name()),
			zap.String("model", req.Model),
			zap.String("code", providers.ErrorCode(err)),
			zap.Error(err))
		return nil, mapProviderError(req.Model, err)
	}

	s.logger.Debug("model request completed",
		zap.String("provider", provider.Name()),
		zap.String("model", req.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", resp.Latency))

	return resp, nil
}

func (s *Service) record(provider, model string, err error, d time.Duration) {
	if s.recorder == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(providers.ErrorCode(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	s.recorder.RecordModelRequest(provider, model, outcome, d)
}

func mapProviderError(model string, err error) error {
	switch providers.ErrorCode(err) {
	case "INVALID_MODEL", "MODEL_NOT_FOUND":
		return services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidModel.Message, err).
			WithDetail("model", model)
	case "TIMEOUT":
		return services.NewDomainError(services.ErrorTypeExternal, services.ErrProviderTimeout.Message, err)
	case "AUTH_ERROR":
		return services.NewDomainError(services.ErrorTypeUnavailable, "generative model provider rejected its credentials", err)
	default:
		return services.NewDomainError(services.ErrorTypeExternal, services.ErrProviderError.Message, err)
	}
}

// decodeLayout accepts a bare array or an array wrapped in a markdown code fence
func decodeLayout(text string) ([]SceneObject, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var objects []SceneObject
	if err := json.Unmarshal([]byte(text), &objects); err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []SceneObject{}
	}
	return objects, nil
}
