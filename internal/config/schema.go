package config

// Config holds translate configuration.
// Stored at: ./config.yaml or ~/.translate/config.yaml
type Config struct {
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
	Generate  GenerateCfg            `mapstructure:"generate" yaml:"generate"`
}

// ProviderCfg configures an LLM annotation provider.
type ProviderCfg struct {
	Type       string  `mapstructure:"type" yaml:"type"`               // "openrouter", "openai", "mock"
	Model      string  `mapstructure:"model" yaml:"model"`             // Model name
	APIKey     string  `mapstructure:"api_key" yaml:"api_key"`         // API key (supports ${ENV_VAR} syntax)
	BaseURL    string  `mapstructure:"base_url" yaml:"base_url"`       // Override endpoint (optional)
	RateLimit  float64 `mapstructure:"rate_limit" yaml:"rate_limit"`   // Requests per second
	MaxRetries int     `mapstructure:"max_retries" yaml:"max_retries"` // Transport retry attempts
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selection.
type DefaultsCfg struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
}

// GenerateCfg holds generation pipeline settings.
type GenerateCfg struct {
	// Manifest is the work listing, relative paths resolve against the home directory.
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
	// OutputDir overrides the default <home>/site output directory.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"openrouter": {
				Type:       "openrouter",
				Model:      "anthropic/claude-sonnet-4",
				APIKey:     "${OPENROUTER_API_KEY}",
				RateLimit:  1.0,
				MaxRetries: 3,
				Enabled:    true,
			},
			"openai": {
				Type:       "openai",
				Model:      "gpt-4o",
				APIKey:     "${OPENAI_API_KEY}",
				RateLimit:  1.0,
				MaxRetries: 3,
				Enabled:    false,
			},
		},
		Defaults: DefaultsCfg{
			Provider: "openrouter",
		},
		Generate: GenerateCfg{
			Manifest: "manifest.yaml",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledProviders returns all enabled providers.
func (c *Config) EnabledProviders() map[string]ProviderCfg {
	result := make(map[string]ProviderCfg)
	for name, cfg := range c.Providers {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
