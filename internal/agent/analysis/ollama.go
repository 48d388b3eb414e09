package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/feichai0017/document-analyzer/internal/models"
)

// OllamaConfig 本地 Ollama 服务配置
type OllamaConfig struct {
	Endpoint    string
	Model       string
	Temperature float64
	MaxPoolSize int
	PoolTimeout time.Duration
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ollamaMessage        `json:"messages"`
	Format   string                 `json:"format"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// OllamaResponse 定义 Ollama /api/chat 响应结构
type OllamaResponse struct {
	Model         string        `json:"model"`
	Message       ollamaMessage `json:"message"`
	Done          bool          `json:"done"`
	TotalDuration int64         `json:"total_duration,omitempty"`
	EvalCount     int           `json:"eval_count,omitempty"`
	Error         string        `json:"error,omitempty"`
}

type OllamaClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewOllamaClient(endpoint string) *OllamaClient {
	return &OllamaClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *OllamaClient) Chat(ctx context.Context, body ollamaChatRequest) (string, error) {
	reqData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(reqData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr OllamaResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("ollama error: %s", apiErr.Error)
		}
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result OllamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	return result.Message.Content, nil
}

func (c *OllamaClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// ErrPoolClosed is returned by Get once the pool has been closed.
var ErrPoolClosed = errors.New("ollama client pool closed")

// OllamaClientPool bounds the number of concurrent calls to the Ollama server.
type OllamaClientPool struct {
	clients chan *OllamaClient
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewOllamaClientPool(cfg OllamaConfig) *OllamaClientPool {
	size := cfg.MaxPoolSize
	if size <= 0 {
		size = 1
	}
	pool := &OllamaClientPool{
		clients: make(chan *OllamaClient, size),
		timeout: cfg.PoolTimeout,
		done:    make(chan struct{}),
	}

	// 预创建客户端
	for i := 0; i < size; i++ {
		pool.clients <- NewOllamaClient(cfg.Endpoint)
	}

	return pool
}

func (p *OllamaClientPool) Get(ctx context.Context) (*OllamaClient, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	var timeout <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case client := <-p.clients:
		return client, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-timeout:
		return nil, fmt.Errorf("timeout waiting for available client")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put 归还客户端; 池关闭后归还的客户端直接关闭
func (p *OllamaClientPool) Put(client *OllamaClient) {
	if client == nil {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		client.Close()
		return
	}

	select {
	case p.clients <- client:
	default:
		// 池已满，丢弃客户端
		client.Close()
	}
}

// Close 关闭空闲客户端; 正在使用的客户端在 Put 时关闭
func (p *OllamaClientPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	for {
		select {
		case client := <-p.clients:
			client.Close()
		default:
			return nil
		}
	}
}

type OllamaProvider struct {
	pool *OllamaClientPool
	cfg  OllamaConfig
}

func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	return &OllamaProvider{
		pool: NewOllamaClientPool(cfg),
		cfg:  cfg,
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) Complete(ctx context.Context, system, user string) (string, error) {
	client, err := p.pool.Get(ctx)
	if err != nil {
		return "", models.NewProviderError(p.Name(), err)
	}
	defer p.pool.Put(client)

	body := ollamaChatRequest{
		Model: p.cfg.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Format: "json",
		Stream: false,
	}
	if p.cfg.Temperature > 0 {
		body.Options = map[string]interface{}{"temperature": p.cfg.Temperature}
	}

	content, err := client.Chat(ctx, body)
	if err != nil {
		return "", models.NewProviderError(p.Name(), err)
	}
	return content, nil
}

func (p *OllamaProvider) Close() error {
	return p.pool.Close()
}
