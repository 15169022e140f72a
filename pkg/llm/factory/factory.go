package factory

import (
	"fmt"
	"strings"

	"run-coach-be/pkg/llm"
	"run-coach-be/pkg/llm/ollama"
	"run-coach-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Provider  string
	BaseURL   string
	APIKey    string
	ModelName string
}

// NewProvider builds the configured LLM backend. Unknown providers are an
// error rather than a silent fallback.
func NewProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm factory: openai provider requires an api key")
		}
		p := openai.NewOpenAIProvider(cfg.APIKey, cfg.ModelName)
		if cfg.BaseURL != "" {
			p.BaseURL = cfg.BaseURL
		}
		return p, nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.ModelName), nil
	default:
		return nil, fmt.Errorf("llm factory: unknown provider %q", cfg.Provider)
	}
}
