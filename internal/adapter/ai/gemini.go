package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// GeminiClient calls the Google Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini builds the Gemini provider. When no API key is configured the
// client is returned unconnected and reports itself unavailable.
func NewGemini(ctx context.Context, cfg config.Config) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return &GeminiClient{model: cfg.GeminiModel}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("op=ai.NewGemini: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiModel}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Available() bool { return c.client != nil }

func (c *GeminiClient) Invoke(ctx context.Context, req domain.PromptRequest) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("op=gemini.Invoke: %w: no api key", domain.ErrProviderUnavailable)
	}
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("op=gemini.Invoke: %w: %v", domain.ErrProviderCallFailed, err)
	}
	return textFromGemini(resp)
}

// Close releases the underlying SDK connection.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func textFromGemini(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("op=gemini.Invoke: %w: no candidates", domain.ErrMalformedResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("op=gemini.Invoke: %w: no content", domain.ErrMalformedResponse)
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("op=gemini.Invoke: %w: no text parts", domain.ErrMalformedResponse)
	}
	return strings.Join(parts, ""), nil
}
