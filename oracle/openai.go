package oracle

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config represents oracle client configuration.
type Config struct {
	Provider string // deepseek, openai, siliconflow, openrouter, ollama
	Model    string // deepseek-chat, gpt-4o, llama3.1, etc.
	APIKey   string
	BaseURL  string
	Timeout  int // Request timeout in seconds (default: 120)
}

type service struct {
	client   *openai.Client
	model    string
	provider string
	timeout  int
	metrics  Recorder
}

// Recorder receives per-call metrics. A nil Recorder disables recording.
type Recorder interface {
	RecordOracleCall(model, provider string, latency time.Duration, err error)
	RecordOracleTokens(model string, promptTokens, completionTokens int)
}

// ServiceOption customizes the client returned by NewService.
type ServiceOption func(*service)

// WithRecorder attaches a metrics recorder to the client.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *service) {
		s.metrics = r
	}
}

// NewService creates a completion client for an OpenAI-compatible provider.
func NewService(cfg *Config, opts ...ServiceOption) (Service, error) {
	var clientConfig openai.ClientConfig

	httpClient := newHTTPClient()

	switch cfg.Provider {
	case "deepseek":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.deepseek.com"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	case "siliconflow":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.siliconflow.cn/v1"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	case "openai":
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clientConfig.HTTPClient = httpClient

	case "openrouter":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = baseURL
		clientConfig.HTTPClient = httpClient

	default:
		// Generic fallback for any other OpenAI-compatible provider
		slog.Info("oracle: using generic OpenAI-compatible provider", "provider", cfg.Provider)
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		clientConfig.HTTPClient = httpClient
	}

	client := openai.NewClientWithConfig(clientConfig)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}

	s := &service{
		client:   client,
		model:    cfg.Model,
		provider: cfg.Provider,
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Complete(ctx context.Context, messages []Message, opts Options) (string, *CallStats, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	slog.Debug("oracle: completion request",
		"model", s.model,
		"messages_count", len(messages),
		"max_tokens", opts.MaxOutputTokens,
		"temperature", opts.Temperature,
	)

	startTime := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   opts.MaxOutputTokens,
		Temperature: opts.Temperature,
		Messages:    convertMessages(messages),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	latency := time.Since(startTime)
	if err != nil {
		slog.Error("oracle: completion request failed", "model", s.model, "error", err)
		s.record(latency, err, nil)
		return "", nil, NewServiceError(s.provider, s.model, err)
	}

	if len(resp.Choices) == 0 {
		slog.Warn("oracle: empty response", "model", s.model)
		err := errors.New("empty response")
		s.record(latency, err, nil)
		return "", nil, NewServiceError(s.provider, s.model, err)
	}

	stats := &CallStats{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		DurationMs:       latency.Milliseconds(),
	}
	s.record(latency, nil, stats)

	slog.Debug("oracle: completion response received",
		"content_length", len(resp.Choices[0].Message.Content),
		"total_tokens", stats.TotalTokens,
		"duration_ms", stats.DurationMs,
	)

	return resp.Choices[0].Message.Content, stats, nil
}

func (s *service) record(latency time.Duration, err error, stats *CallStats) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOracleCall(s.model, s.provider, latency, err)
	if stats != nil {
		s.metrics.RecordOracleTokens(s.model, stats.PromptTokens, stats.CompletionTokens)
	}
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		switch m.Role {
		case "system":
			converted[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: m.Content,
			}
		case "assistant":
			converted[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
		default:
			converted[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Content,
			}
		}
	}
	return converted
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
