package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// ErrProviderUnavailable marks a provider with no credential configured.
	// It is skipped without a network call; not a failure.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderCallFailed covers network errors, timeouts and non-2xx statuses.
	ErrProviderCallFailed = errors.New("provider call failed")
	// ErrMalformedResponse means the provider replied but the content could not
	// be used (bad payload, empty choices, undecodable body).
	ErrMalformedResponse = errors.New("malformed response")
	// ErrAllProvidersExhausted means every configured provider failed or was
	// skipped; callers degrade to their local heuristic path.
	ErrAllProvidersExhausted = errors.New("all providers exhausted")
	ErrInternal              = errors.New("internal error")
)

// TaskKind classifies provider work by latency class. The orchestrator picks
// the per-call timeout from the task kind, not from the provider.
type TaskKind string

// Task kinds dispatched through the fallback orchestrator.
const (
	TaskAnswerAnalysis TaskKind = "answer_analysis"
	TaskQuestionGen    TaskKind = "question_generation"
	TaskAssignment     TaskKind = "assignment_grading"
	TaskResumeScoring  TaskKind = "resume_scoring"
	TaskPlagiarism     TaskKind = "plagiarism"
	TaskRecommendation TaskKind = "recommendation"
	TaskVision         TaskKind = "vision"
	TaskAudio          TaskKind = "audio"
)

// PromptRequest is the uniform payload for text-generation providers.
// Vision/audio clients accept media through their own methods but share the
// same result contract (raw text or a typed failure).
type PromptRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Provider is the uniform abstraction over one external inference service.
// Invoke performs exactly one outbound call; it must not retry internally
// (retries and fallback ordering belong to the orchestrator) and must not
// mutate shared state.
//
//go:generate mockery --name=Provider --with-expecter --filename=provider_mock.go
type Provider interface {
	Name() string
	// Available reports whether the provider has credentials configured.
	// Unavailable providers are skipped without any network call.
	Available() bool
	Invoke(ctx context.Context, req PromptRequest) (string, error)
}

// JudgmentSource records which stage produced a judgment, for observability
// and testing.
type JudgmentSource string

// Known judgment sources.
const (
	SourceOpenRouter  JudgmentSource = "openrouter"
	SourceDeepSeek    JudgmentSource = "deepseek"
	SourceHuggingFace JudgmentSource = "huggingface"
	SourceGemini      JudgmentSource = "gemini"
	// SourceHeuristic marks the provider-free deterministic path.
	SourceHeuristic JudgmentSource = "heuristic_fallback"
)

// Judgment is the normalized result of evaluating one answer, submission or
// session. Invariants: 0.0 <= Score <= 10.0; Feedback never reported as
// missing (empty string at worst); immutable once constructed.
type Judgment struct {
	Score     float64
	Feedback  string
	Fields    map[string]any
	Source    JudgmentSource
	CreatedAt time.Time
}

// Component is one named signal feeding a composite score.
type Component struct {
	Value  float64 // [0,10]
	Weight float64 // [0,1]
}

// Question is one generated or bank-sourced interview question.
type Question struct {
	Question   string   `json:"question" yaml:"question"`
	Type       string   `json:"type" yaml:"type"`             // technical|behavioral
	Difficulty string   `json:"difficulty" yaml:"difficulty"` // easy|medium|hard
	Keywords   []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ResumeFeatures is the feature set extracted from one resume, used both for
// scoring and for the duplicate-detection fingerprint.
type ResumeFeatures struct {
	Skills     map[string][]string `json:"skills"`
	Education  []string            `json:"education"`
	Experience string              `json:"experience"`
	Projects   []string            `json:"projects"`
	Roles      []string            `json:"roles"`
}

// Fingerprint is the feature-derived identity of a document. Computed at
// submission time, appended to the corpus if accepted, never mutated.
type Fingerprint struct {
	ID        string
	Hash      string
	Features  ResumeFeatures
	CreatedAt time.Time
}

// FingerprintStore is the append-only corpus of accepted fingerprints.
// Implementations never delete or update entries.
//
//go:generate mockery --name=FingerprintStore --with-expecter --filename=fingerprint_store_mock.go
type FingerprintStore interface {
	List(ctx Context) ([]Fingerprint, error)
	Append(ctx Context, fp Fingerprint) error
}

// JudgmentCache caches judgments keyed by task+prompt digest so repeated
// evaluations of identical input skip provider spend.
type JudgmentCache interface {
	Get(ctx Context, key string) (Judgment, bool, error)
	Set(ctx Context, key string, j Judgment) error
}

// ClampScore forces a score into the canonical [0,10] range.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Context aliases the std context so port signatures stay compact.
type Context = context.Context
