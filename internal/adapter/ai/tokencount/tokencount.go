// Package tokencount estimates token usage for provider calls.
//
// It uses tiktoken-go, a Go port of OpenAI's tiktoken library. Non-OpenAI
// models are approximated with the cl100k_base encoding, which is close
// enough for budgeting and usage logging.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Usage represents token counts for one provider call.
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// Counter provides thread-safe token counting.
type Counter struct {
	mu            sync.RWMutex
	encodingCache map[string]*tiktoken.Tiktoken
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	normalized := normalizeModelName(model)

	c.mu.RLock()
	enc, ok := c.encodingCache[normalized]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[normalized]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(normalized)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.encodingCache[normalized] = enc
	return enc, nil
}

// normalizeModelName maps provider model IDs onto tiktoken-known names.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	// OpenRouter IDs carry vendor prefixes like "openai/gpt-4o-mini"
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")

	switch {
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		// cl100k_base via gpt-4 is a fair approximation for the rest
		return "gpt-4"
	}
}

// CountTokens counts tokens in text for the given model.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountChatTokens counts tokens for a system+user chat request, including
// the per-message overhead used by OpenAI-compatible APIs.
func (c *Counter) CountChatTokens(systemPrompt, userPrompt, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}

	const tokensPerMessage, tokensPerRole = 3, 1
	n := 0
	n += tokensPerMessage + tokensPerRole + len(enc.Encode("system", nil, nil)) + len(enc.Encode(systemPrompt, nil, nil))
	n += tokensPerMessage + tokensPerRole + len(enc.Encode("user", nil, nil)) + len(enc.Encode(userPrompt, nil, nil))
	// every reply is primed with <|start|>assistant<|message|>
	n += 3
	return n, nil
}

// Truncate cuts text down to at most budget tokens for the given model,
// keeping token boundaries intact.
func (c *Counter) Truncate(text, model string, budget int) (string, error) {
	if budget <= 0 {
		return "", nil
	}
	enc, err := c.encodingFor(model)
	if err != nil {
		return "", err
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= budget {
		return text, nil
	}
	return enc.Decode(ids[:budget]), nil
}

// CalculateUsage computes full usage for one completed chat call. Counting
// failures degrade to a rough 4-chars-per-token estimate.
func (c *Counter) CalculateUsage(systemPrompt, userPrompt, completion, model, provider string) (*Usage, error) {
	promptTokens, err := c.CountChatTokens(systemPrompt, userPrompt, model)
	if err != nil {
		slog.Warn("token count failed, using estimate", slog.String("model", model), slog.Any("error", err))
		promptTokens = (len(systemPrompt) + len(userPrompt)) / 4
	}
	completionTokens, err := c.CountTokens(completion, model)
	if err != nil {
		slog.Warn("token count failed, using estimate", slog.String("model", model), slog.Any("error", err))
		completionTokens = len(completion) / 4
	}
	return &Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Model:            model,
		Provider:         provider,
	}, nil
}
