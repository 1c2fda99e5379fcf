package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// StubClient is a fast, deterministic provider for local development when no
// real provider credentials are configured.
type StubClient struct{}

func NewStub() *StubClient { return &StubClient{} }

func (c *StubClient) Name() string { return "stub" }

func (c *StubClient) Available() bool { return true }

// Invoke returns a compact JSON string matching the expected schema.
func (c *StubClient) Invoke(_ context.Context, _ domain.PromptRequest) (string, error) {
	// Simulate a tiny bit of processing latency to resemble real work
	time.Sleep(50 * time.Millisecond)
	payload := map[string]any{
		"score":    7.5,
		"feedback": "Clear answer with concrete examples; expand on trade-offs.",
	}
	b, _ := json.Marshal(payload)
	return string(b), nil
}
