package config

import (
	"sync"
)

var (
	providerOnce   sync.Once
	providerConfig *ProviderConfig
)

// ProviderConfig holds analysis provider endpoints and credentials. It is
// only ever read server-side.
type ProviderConfig struct {
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OllamaEndpoint string
}

func GetProviderConfig() *ProviderConfig {
	providerOnce.Do(func() {
		providerConfig = LoadProviderConfig()
	})
	return providerConfig
}

// LoadProviderConfig reads the provider settings without caching.
func LoadProviderConfig() *ProviderConfig {
	loadDotEnv()

	return &ProviderConfig{
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OllamaEndpoint: getEnv("OLLAMA_ENDPOINT", "http://localhost:11434"),
	}
}
