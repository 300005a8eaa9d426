package providers

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrModelNotSupported is returned when a model is not supported by any provider
	ErrModelNotSupported = errors.New("model not supported")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Registry manages provider instances and model routing
type Registry struct {
	mu            sync.RWMutex
	providers     map[string]Provider
	modelPrefixes map[string]string // model prefix -> provider name
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers:     make(map[string]Provider),
		modelPrefixes: make(map[string]string),
	}
}

// RegisterProvider registers a provider instance
func (r *Registry) RegisterProvider(provider Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}
	if _, exists := r.providers[name]; exists {
		return ErrProviderAlreadyRegistered
	}

	r.providers[name] = provider
	return nil
}

// RegisterModelPrefix routes models starting with prefix to a provider
// (e.g., "gemini-" -> "gemini")
func (r *Registry) RegisterModelPrefix(prefix, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[providerName]; !exists {
		return ErrProviderNotFound
	}

	r.modelPrefixes[prefix] = providerName
	return nil
}

// GetProvider retrieves a provider by name
func (r *Registry) GetProvider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, ErrProviderNotFound
	}
	return provider, nil
}

// GetProviderForModel finds the provider that serves a given model. The longest
// matching prefix wins; otherwise each provider is asked to validate the model.
func (r *Registry) GetProviderForModel(model string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := ""
	for prefix := range r.modelPrefixes {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		if provider, ok := r.providers[r.modelPrefixes[best]]; ok {
			return provider, nil
		}
	}

	for _, name := range r.sortedNames() {
		provider := r.providers[name]
		if err := provider.ValidateModel(model); err == nil {
			return provider, nil
		}
	}

	return nil, ErrModelNotSupported
}

// ListProviders returns all registered provider names in sorted order
func (r *Registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames()
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
