package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

func TestKeywordScoreCoverageAndLength(t *testing.T) {
	t.Parallel()

	// 2 of 3 keywords and 40 words: 2/3*6 + 40/25 = 4 + 1.6
	words := make([]string, 0, 40)
	words = append(words, "goroutines", "channels")
	for len(words) < 40 {
		words = append(words, "filler")
	}
	answer := strings.Join(words, " ")

	score := keywordScore(answer, []string{"goroutines", "channels", "mutex"})
	assert.InDelta(t, 5.6, score, 0.001)
}

func TestKeywordScoreEmptyAnswer(t *testing.T) {
	t.Parallel()

	assert.Zero(t, keywordScore("", []string{"anything"}))
	assert.Zero(t, keywordScore("   ", []string{"anything"}))
}

func TestKeywordScoreNoKeywords(t *testing.T) {
	t.Parallel()

	// length only, capped at 4
	long := strings.Repeat("word ", 200)
	assert.InDelta(t, 4, keywordScore(long, nil), 0.001)
}

func TestKeywordScoreCap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("design patterns testing ", 50)
	score := keywordScore(long, []string{"design", "patterns", "testing"})
	assert.InDelta(t, 10, score, 0.001)
}

func TestKeywordFeedbackBands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Excellent answer! You covered the key points clearly and thoroughly.",
		keywordFeedback("x", nil, 8.2))
	assert.Equal(t, "Good answer. You mentioned some relevant points but could add more detail.",
		keywordFeedback("x", nil, 6.5))
	assert.Equal(t, "Average answer. Consider providing more specific examples and details.",
		keywordFeedback("x", nil, 4.0))
}

func TestKeywordFeedbackMissingKeywords(t *testing.T) {
	t.Parallel()

	got := keywordFeedback("short", []string{"sql", "index", "join", "view"}, 2.0)
	assert.Equal(t, "Try to include concepts like: sql, index, join", got)
}

func TestKeywordFeedbackLowScoreAllKeywordsPresent(t *testing.T) {
	t.Parallel()

	got := keywordFeedback("sql", []string{"sql"}, 2.0)
	assert.Equal(t, "Please provide a more detailed and structured answer.", got)
}

func TestAnalyzeAnswerEmptyUsesHeuristic(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: `{"score": 9}`}
	svc := NewInterviewService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.AnalyzeAnswer(context.Background(), "Explain indexes.", "", []string{"btree"})
	require.NoError(t, err)
	assert.Zero(t, j.Score)
	assert.Equal(t, domain.SourceHeuristic, j.Source)
	assert.Equal(t, 0, alpha.calls, "empty answers must not reach a provider")
}

func TestAnalyzeAnswerProviderPath(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: `{"score": 7.5, "feedback": "Good coverage."}`}
	svc := NewInterviewService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.AnalyzeAnswer(context.Background(), "Explain goroutines.", "Goroutines are lightweight threads managed by the runtime.", []string{"goroutines", "runtime"})
	require.NoError(t, err)
	assert.InDelta(t, 7.5, j.Score, 0.001)
	assert.Equal(t, domain.JudgmentSource("alpha"), j.Source)
	assert.Equal(t, 8, j.Fields["word_count"])
	assert.ElementsMatch(t, []string{"goroutines", "runtime"}, j.Fields["keywords_matched"])
}

func TestAnalyzeAnswerFallsBackOnExhaustion(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, err: errors.New("down")}
	svc := NewInterviewService(NewOrchestrator(testConfig(), nil, alpha))

	answer := "Channels let goroutines communicate safely without explicit locks in most cases."
	j, err := svc.AnalyzeAnswer(context.Background(), "Explain channels.", answer, []string{"channels", "goroutines"})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceHeuristic, j.Source)
	assert.Greater(t, j.Score, 0.0)
}

func TestOverallFeedbackEmpty(t *testing.T) {
	t.Parallel()

	svc := NewInterviewService(NewOrchestrator(testConfig(), nil))
	got, err := svc.OverallFeedback(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No responses to evaluate.", got)
}

func TestOverallFeedbackProviderText(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: "You communicated clearly and backed claims with examples."}
	svc := NewInterviewService(NewOrchestrator(testConfig(), nil, alpha))

	got, err := svc.OverallFeedback(context.Background(), []ResponseSummary{{Answer: "a", Score: 8}})
	require.NoError(t, err)
	assert.Equal(t, "You communicated clearly and backed claims with examples.", got)
}

func TestOverallFeedbackBandFallback(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, err: errors.New("down")}
	svc := NewInterviewService(NewOrchestrator(testConfig(), nil, alpha))

	got, err := svc.OverallFeedback(context.Background(), []ResponseSummary{
		{Answer: "a", Score: 9},
		{Answer: "b", Score: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, "Overall, you demonstrated strong performance in this interview with an average score of 8.0/10.", got)
}

func TestOverallFeedbackShortProviderTextIgnored(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: "ok"}
	svc := NewInterviewService(NewOrchestrator(testConfig(), nil, alpha))

	got, err := svc.OverallFeedback(context.Background(), []ResponseSummary{{Answer: "a", Score: 3}})
	require.NoError(t, err)
	assert.Equal(t, "Overall, you demonstrated needs improvement performance in this interview with an average score of 3.0/10.", got)
}
