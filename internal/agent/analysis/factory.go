package analysis

import (
	"errors"
	"fmt"

	"github.com/feichai0017/document-analyzer/config"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// New 根据配置创建分析器
func New(cfg config.AnalyzerConfig, pc *config.ProviderConfig, log logger.Logger) (Analyzer, error) {
	switch cfg.Provider {
	case config.ProviderMock, "":
		return NewMockAnalyzer(cfg.MockDelay, log), nil

	case config.ProviderOpenAI:
		if pc == nil || pc.OpenAIAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
		provider := NewOpenAIProvider(OpenAIConfig{
			APIKey:      pc.OpenAIAPIKey,
			BaseURL:     pc.OpenAIBaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
		return NewClient(provider, OptionsFromConfig(cfg), log), nil

	case config.ProviderOllama:
		endpoint := "http://localhost:11434"
		if pc != nil && pc.OllamaEndpoint != "" {
			endpoint = pc.OllamaEndpoint
		}
		provider := NewOllamaProvider(OllamaConfig{
			Endpoint:    endpoint,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxPoolSize: cfg.OllamaPoolSize,
			PoolTimeout: cfg.Timeout,
		})
		return NewClient(provider, OptionsFromConfig(cfg), log), nil

	default:
		return nil, fmt.Errorf("unknown analyzer provider: %q", cfg.Provider)
	}
}
