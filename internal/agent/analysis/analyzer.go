// Package analysis turns extracted document text into a structured AnalysisResult
// by way of a configurable provider.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/feichai0017/document-analyzer/config"
	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// Analyzer produces an AnalysisResult for a piece of text.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// Provider sends one completion request and returns the raw content.
// Implementations report transport and API failures as *models.ProviderError.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options 控制输入截断和单次调用超时
type Options struct {
	MaxInputChars    int
	TruncationMarker string
	Timeout          time.Duration
}

func OptionsFromConfig(cfg config.AnalyzerConfig) Options {
	return Options{
		MaxInputChars:    cfg.MaxInputChars,
		TruncationMarker: cfg.TruncationMarker,
		Timeout:          cfg.Timeout,
	}
}

// Client is the live Analyzer: truncate, one provider call, defensive parse.
type Client struct {
	provider Provider
	opts     Options
	logger   logger.Logger
}

func NewClient(provider Provider, opts Options, log logger.Logger) *Client {
	return &Client{
		provider: provider,
		opts:     opts,
		logger:   log.Named("analyzer"),
	}
}

func (c *Client) Name() string {
	return c.provider.Name()
}

func (c *Client) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	input, truncated := Truncate(text, c.opts.MaxInputChars, c.opts.TruncationMarker)

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := c.provider.Complete(ctx, SystemPrompt, input)

	fields := []logger.Field{
		logger.String("provider", c.provider.Name()),
		logger.Int("inputChars", utf8.RuneCountInString(text)),
		logger.Bool("truncated", truncated),
		logger.Duration("duration", time.Since(start)),
	}

	if err != nil {
		c.logger.Warn("Analysis request failed", append(fields, logger.Error(err))...)
		var providerErr *models.ProviderError
		if !errors.As(err, &providerErr) {
			err = models.NewProviderError(c.provider.Name(), err)
		}
		return nil, err
	}

	result, err := ParseResult(content)
	if err != nil {
		c.logger.Warn("Analysis response rejected", append(fields, logger.Error(err))...)
		return nil, fmt.Errorf("%s: %w", c.provider.Name(), err)
	}

	c.logger.Info("Analysis completed", fields...)
	return result, nil
}

// Close releases provider resources such as pooled connections.
func (c *Client) Close() error {
	if closer, ok := c.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
