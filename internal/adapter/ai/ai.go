// Package ai implements the provider port for the external model services
// the evaluator can call: OpenRouter, DeepSeek, Hugging Face, Gemini and a
// local Ollama daemon.
package ai

import (
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

func readBody(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func defaultHTTPClient() *http.Client {
	// Per-call deadlines come from the request context.
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "ai " + r.Method + " " + r.URL.Host
			})),
	}
}
