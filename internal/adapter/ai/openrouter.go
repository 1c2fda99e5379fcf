package ai

import (
	"context"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/ai/tokencount"
	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// OpenRouterClient calls the OpenRouter chat completion API.
type OpenRouterClient struct {
	chat chatClient
}

// NewOpenRouter builds the OpenRouter provider from configuration.
func NewOpenRouter(cfg config.Config) *OpenRouterClient {
	return &OpenRouterClient{chat: chatClient{
		httpClient: defaultHTTPClient(),
		baseURL:    cfg.OpenRouterBaseURL,
		apiKey:     cfg.OpenRouterAPIKey,
		model:      cfg.OpenRouterModel,
		provider:   "openrouter",
		headers: map[string]string{
			"HTTP-Referer": cfg.OpenRouterReferer,
			"X-Title":      cfg.OpenRouterTitle,
		},
		counter:         tokencount.NewCounter(),
		maxPromptTokens: cfg.MaxPromptTokens,
	}}
}

func (c *OpenRouterClient) Name() string { return "openrouter" }

func (c *OpenRouterClient) Available() bool { return c.chat.apiKey != "" }

func (c *OpenRouterClient) Invoke(ctx context.Context, req domain.PromptRequest) (string, error) {
	return c.chat.complete(ctx, req)
}
