package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when Load is given an empty path and the file exists.
const DefaultConfigPath = "config.yaml"

// Config 服务整体配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Upload     UploadConfig     `yaml:"upload"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Sessions   SessionConfig    `yaml:"sessions"`
	Async      AsyncConfig      `yaml:"async"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowOrigins    []string      `yaml:"allowOrigins"`
}

type LoggingConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"maxFileSize"`
}

type ExtractionConfig struct {
	PDFWorkers  int  `yaml:"pdfWorkers"`
	OCRFallback bool `yaml:"ocrFallback"`
}

// AnalyzerConfig selects and tunes the analysis provider. The provider
// credential is never read from this file, only from the environment.
type AnalyzerConfig struct {
	Provider         string        `yaml:"provider"`
	Model            string        `yaml:"model"`
	Temperature      float64       `yaml:"temperature"`
	MaxInputChars    int           `yaml:"maxInputChars"`
	TruncationMarker string        `yaml:"truncationMarker"`
	Timeout          time.Duration `yaml:"timeout"`
	MockDelay        time.Duration `yaml:"mockDelay"`
	OllamaPoolSize   int           `yaml:"ollamaPoolSize"`
}

type SessionConfig struct {
	MaxSessions int `yaml:"maxSessions"`
}

type AsyncConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Storage     string        `yaml:"storage"`
	Retention   time.Duration `yaml:"retention"`
	Concurrency int           `yaml:"concurrency"`
}

const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			AllowOrigins:    []string{"*"},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stdout", "logs/app.log"},
		},
		Upload: UploadConfig{
			MaxFileSize: 50 * 1024 * 1024, // 50MB
		},
		Extraction: ExtractionConfig{
			PDFWorkers: 4,
		},
		Analyzer: AnalyzerConfig{
			Provider:         ProviderMock,
			Model:            "gpt-4o-mini",
			Temperature:      0.3,
			MaxInputChars:    15000,
			TruncationMarker: "\n\n[Content truncated due to length...]",
			Timeout:          60 * time.Second,
			MockDelay:        2 * time.Second,
			OllamaPoolSize:   4,
		},
		Sessions: SessionConfig{
			MaxSessions: 1000,
		},
		Async: AsyncConfig{
			Storage:     "s3",
			Retention:   24 * time.Hour,
			Concurrency: 5,
		},
	}
}

// Load 加载配置: 默认值 -> YAML 文件 -> 环境变量
func Load(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file, defaults + env only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ANALYZER_PROVIDER"); v != "" {
		c.Analyzer.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("ANALYZER_MODEL"); v != "" {
		c.Analyzer.Model = v
	}
	if v := os.Getenv("ANALYZER_TRUNCATION_MARKER"); v != "" {
		c.Analyzer.TruncationMarker = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Async.Storage = v
	}

	if v := os.Getenv("ANALYZER_MAX_INPUT_CHARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ANALYZER_MAX_INPUT_CHARS: %w", err)
		}
		c.Analyzer.MaxInputChars = n
	}
	if v := os.Getenv("ANALYZER_MOCK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ANALYZER_MOCK_DELAY: %w", err)
		}
		c.Analyzer.MockDelay = d
	}
	if v := os.Getenv("ASYNC_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ASYNC_ENABLED: %w", err)
		}
		c.Async.Enabled = b
	}
	if v := os.Getenv("OCR_FALLBACK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OCR_FALLBACK: %w", err)
		}
		c.Extraction.OCRFallback = b
	}

	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Analyzer.Provider {
	case ProviderMock, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unsupported analyzer provider: %q", c.Analyzer.Provider)
	}
	if c.Analyzer.MaxInputChars <= 0 {
		return fmt.Errorf("analyzer.maxInputChars must be positive, got %d", c.Analyzer.MaxInputChars)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.maxFileSize must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("sessions.maxSessions must be positive, got %d", c.Sessions.MaxSessions)
	}
	if c.Extraction.PDFWorkers <= 0 {
		c.Extraction.PDFWorkers = 1
	}
	if c.Async.Enabled && c.Async.Storage != "s3" && c.Async.Storage != "minio" {
		return fmt.Errorf("unsupported async storage: %q", c.Async.Storage)
	}
	return nil
}
