package llmprovider

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"weekly-scheduler/config"
	"weekly-scheduler/pkg/openai"
)

// InitializeProviders builds the enabled providers sorted by priority.
// Providers that fail to initialize are skipped.
func InitializeProviders(cfg *config.LLMConfig) ([]Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("LLM config is nil")
	}

	var enabled []config.ProviderConfig
	for _, p := range cfg.Providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	if len(enabled) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	var providers []Provider
	var initErrors []string
	for _, p := range enabled {
		provider, err := createProvider(p)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("%s (priority %d): %v", p.Name, p.Priority, err))
			continue
		}
		providers = append(providers, provider)
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers successfully initialized: %s", strings.Join(initErrors, "; "))
	}
	return providers, nil
}

func createProvider(cfg config.ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider %s: API key is required", cfg.Name)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", cfg.Name)
	}

	baseURL := cfg.BaseURL
	switch cfg.Name {
	case "openai":
	case "deepseek":
		if baseURL == "" {
			baseURL = openai.DeepSeekBaseURL
		}
	case "qwen", "alibaba":
		if baseURL == "" {
			baseURL = openai.QwenBaseURL
		}
	default:
		if baseURL == "" {
			return nil, fmt.Errorf("unknown provider %s without base_url", cfg.Name)
		}
	}

	var timeout time.Duration
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("provider %s: invalid timeout %q: %w", cfg.Name, cfg.Timeout, err)
		}
		timeout = d
	}

	client, err := openai.New(openai.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: baseURL, Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Name, err)
	}
	return NewOpenAIAdapter(cfg.Name, client), nil
}
