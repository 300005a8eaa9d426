package providers

import (
	"context"
	"errors"
	"time"
)

// Provider represents a unified generative model provider interface
type Provider interface {
	// Name returns the provider name (e.g., "gemini")
	Name() string

	// GenerateContent runs a single prompt against a model
	GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// IsAvailable reports whether the provider is configured to serve requests
	IsAvailable(ctx context.Context) bool

	// ValidateModel checks if a model is supported by this provider
	ValidateModel(model string) error

	// ListModels returns the models this provider knows about
	ListModels() []string
}

// GenerateRequest represents a unified content generation request
type GenerateRequest struct {
	// Model identifier (e.g., "gemini-1.5-flash")
	Model string

	// Prompt is the full text sent to the model
	Prompt string

	// ResponseMIMEType asks the model for a specific output format ("application/json")
	ResponseMIMEType string

	// Timeout for the request; zero uses the provider default
	Timeout time.Duration
}

// GenerateResponse represents a unified content generation response
type GenerateResponse struct {
	// Text is the concatenated text of the first candidate
	Text string

	// Model used for the generation
	Model string

	// Provider that handled the request
	Provider string

	// Usage statistics, when the provider reports them
	Usage Usage

	// Latency of the request
	Latency time.Duration
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// ErrorCode returns the provider error code, or "" for other errors
func ErrorCode(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Code
	}
	return ""
}
