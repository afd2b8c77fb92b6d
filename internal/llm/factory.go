package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/termlens/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables summaries and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the LLM and HTTP config sections to llm.Config
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:     llmCfg.Provider,
		Model:        llmCfg.Model,
		APIKey:       llmCfg.APIKey,
		BaseURL:      llmCfg.BaseURL,
		Timeout:      llmCfg.Timeout,
		StrictQuotes: llmCfg.StrictQuotes,
		MaxTokens:    llmCfg.MaxTokens,
		HTTPProxy:    httpCfg.HTTPProxy,
		HTTPSProxy:   httpCfg.HTTPSProxy,
		NoProxy:      httpCfg.NoProxy,
	}
}
