package ai

import (
	"context"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/ai/tokencount"
	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// DeepSeekClient calls the DeepSeek chat completion API.
type DeepSeekClient struct {
	chat chatClient
}

// NewDeepSeek builds the DeepSeek provider from configuration.
func NewDeepSeek(cfg config.Config) *DeepSeekClient {
	return &DeepSeekClient{chat: chatClient{
		httpClient:      defaultHTTPClient(),
		baseURL:         cfg.DeepSeekBaseURL,
		apiKey:          cfg.DeepSeekAPIKey,
		model:           cfg.DeepSeekModel,
		provider:        "deepseek",
		counter:         tokencount.NewCounter(),
		maxPromptTokens: cfg.MaxPromptTokens,
	}}
}

func (c *DeepSeekClient) Name() string { return "deepseek" }

func (c *DeepSeekClient) Available() bool { return c.chat.apiKey != "" }

func (c *DeepSeekClient) Invoke(ctx context.Context, req domain.PromptRequest) (string, error) {
	return c.chat.complete(ctx, req)
}
