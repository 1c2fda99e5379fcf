package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/ai/tokencount"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// chatClient speaks the OpenAI-compatible chat completion dialect shared by
// OpenRouter and DeepSeek.
type chatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	provider   string
	headers    map[string]string
	counter    *tokencount.Counter
	// maxPromptTokens caps system+user prompt size; 0 disables the check.
	maxPromptTokens int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *chatClient) complete(ctx context.Context, req domain.PromptRequest) (string, error) {
	userPrompt, err := c.fitBudget(req.System, req.User)
	if err != nil {
		return "", err
	}

	payload := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: userPrompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("op=%s.complete: %w", c.provider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=%s.complete: %w", c.provider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("op=%s.complete: %w: %v", c.provider, domain.ErrProviderCallFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw := readBody(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("op=%s.complete: %w: status=%d", c.provider, domain.ErrProviderUnavailable, resp.StatusCode)
	default:
		return "", fmt.Errorf("op=%s.complete: %w: status=%d body=%s", c.provider, domain.ErrProviderCallFailed, resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("op=%s.complete: %w: %v", c.provider, domain.ErrMalformedResponse, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("op=%s.complete: %w: %s", c.provider, domain.ErrProviderCallFailed, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("op=%s.complete: %w: empty choices", c.provider, domain.ErrMalformedResponse)
	}
	content := parsed.Choices[0].Message.Content

	if usage, uerr := c.counter.CalculateUsage(req.System, userPrompt, content, c.model, c.provider); uerr == nil {
		slog.Debug("ai token usage",
			slog.String("provider", c.provider),
			slog.String("model", c.model),
			slog.Int("prompt_tokens", usage.PromptTokens),
			slog.Int("completion_tokens", usage.CompletionTokens))
	}
	return content, nil
}

// fitBudget enforces the configured prompt token budget before the call goes
// out. Oversized user prompts are truncated to fit; a system prompt that
// leaves no room for user content is rejected outright.
func (c *chatClient) fitBudget(system, user string) (string, error) {
	if c.maxPromptTokens <= 0 {
		return user, nil
	}

	total, err := c.counter.CountChatTokens(system, user, c.model)
	if err != nil || total <= c.maxPromptTokens {
		return user, nil
	}

	userTokens, err := c.counter.CountTokens(user, c.model)
	if err != nil {
		return user, nil
	}
	budget := c.maxPromptTokens - (total - userTokens)
	if budget <= 0 {
		return "", fmt.Errorf("op=%s.complete: %w: system prompt alone exceeds budget of %d tokens",
			c.provider, domain.ErrInvalidArgument, c.maxPromptTokens)
	}

	truncated, err := c.counter.Truncate(user, c.model, budget)
	if err != nil {
		return user, nil
	}
	slog.Warn("prompt over token budget, truncating",
		slog.String("provider", c.provider),
		slog.String("model", c.model),
		slog.Int("prompt_tokens", total),
		slog.Int("budget", c.maxPromptTokens))
	return truncated, nil
}
