// Package openai implements the assistant chat provider against an
// OpenAI-compatible API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/campus-cloud/coursedex/internal/domain"
	"github.com/campus-cloud/coursedex/internal/metrics"
	"github.com/campus-cloud/coursedex/internal/usecase/assistant"
)

// ChatProvider is a chat completion provider using the OpenAI-compatible API.
type ChatProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	provider    string
	logger      *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// NewChatProvider creates an OpenAI-compatible chat provider.
func NewChatProvider(cfg *Config) *ChatProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Chat implements assistant.Provider with transport-level metrics.
func (p *ChatProvider) Chat(ctx context.Context, messages []assistant.Message) (assistant.Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AssistantRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		return assistant.Reply{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.AssistantRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		return assistant.Reply{}, fmt.Errorf("empty completion response: %w", domain.ErrAssistantProviderError)
	}

	metrics.AssistantRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.AssistantTokensTotal.WithLabelValues(p.provider, p.model, "prompt").
			Add(float64(usage.PromptTokens))
		metrics.AssistantTokensTotal.WithLabelValues(p.provider, p.model, "total").
			Add(float64(usage.TotalTokens))
	}

	p.logger.Debug("chat completion",
		zap.String("model", p.model),
		zap.Duration("latency", duration),
		zap.Int("total_tokens", usage.TotalTokens),
	)

	return assistant.Reply{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *ChatProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAssistantProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAssistantProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
