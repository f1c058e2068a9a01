package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ProviderConfig describes one configured provider, with API keys already
// resolved.
type ProviderConfig struct {
	Type       string
	Model      string
	APIKey     string
	BaseURL    string
	RateLimit  float64
	MaxRetries int
	Enabled    bool
}

// RegistryConfig is the resolved provider section of the application config.
type RegistryConfig struct {
	Providers map[string]ProviderConfig
}

// Registry holds references to LLM clients by name.
// It supports config-driven instantiation and provides thread-safe access.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]LLMClient),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers an LLM client by name.
func (r *Registry) Register(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// Unregister removes an LLM client by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, name)
	if r.logger != nil {
		r.logger.Info("unregistered LLM client", "name", name)
	}
}

// Get returns an LLM client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Names returns the registered client names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadConfig instantiates clients for every enabled provider in the config.
// Providers with a missing API key are skipped with a warning; callers decide
// whether the provider they need is actually present.
func (r *Registry) LoadConfig(cfg RegistryConfig) {
	for name, p := range cfg.Providers {
		if !p.Enabled {
			continue
		}

		client, err := newClient(p)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping provider", "name", name, "error", err)
			}
			continue
		}

		r.Register(name, WithRateLimit(client, p.RateLimit))
	}
}

// NewFromConfig builds a registry from resolved provider configuration.
func NewFromConfig(cfg RegistryConfig, logger *slog.Logger) *Registry {
	r := NewRegistry()
	if logger != nil {
		r.logger = logger
	}
	r.LoadConfig(cfg)
	return r
}

func newClient(p ProviderConfig) (LLMClient, error) {
	switch p.Type {
	case "openrouter":
		if p.APIKey == "" {
			return nil, fmt.Errorf("missing API key")
		}
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       p.APIKey,
			BaseURL:      p.BaseURL,
			DefaultModel: p.Model,
			MaxRetries:   p.MaxRetries,
			RetryDelay:   time.Second,
		}), nil
	case "openai":
		if p.APIKey == "" {
			return nil, fmt.Errorf("missing API key")
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       p.APIKey,
			BaseURL:      p.BaseURL,
			DefaultModel: p.Model,
			MaxRetries:   p.MaxRetries,
		}), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", p.Type)
	}
}
