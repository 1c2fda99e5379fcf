package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// OllamaClient calls a local Ollama daemon. It has no credential; it is
// considered available only when a base URL is configured.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllama builds the Ollama provider from configuration.
func NewOllama(cfg config.Config) *OllamaClient {
	return &OllamaClient{
		httpClient: defaultHTTPClient(),
		baseURL:    strings.TrimSuffix(cfg.OllamaBaseURL, "/"),
		model:      cfg.OllamaModel,
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) Available() bool { return c.baseURL != "" }

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *OllamaClient) Invoke(ctx context.Context, req domain.PromptRequest) (string, error) {
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n\n" + req.User
	}
	payload := ollamaRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}
	if req.Temperature > 0 {
		payload.Options = map[string]any{"temperature": req.Temperature}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("op=ollama.Invoke: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=ollama.Invoke: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("op=ollama.Invoke: %w: %v", domain.ErrProviderCallFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw := readBody(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("op=ollama.Invoke: %w: status=%d body=%s", domain.ErrProviderCallFailed, resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("op=ollama.Invoke: %w: %v", domain.ErrMalformedResponse, err)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return "", fmt.Errorf("op=ollama.Invoke: %w: empty response", domain.ErrMalformedResponse)
	}
	return parsed.Response, nil
}
