package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

func TestGradeParsesLabeledResponse(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: "Score: 8\nFeedback: Solid implementation, add tests for edge cases."}
	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.Grade(context.Background(), "Rate limiter", "Build a token bucket rate limiter.", "I implemented a token bucket with a refill goroutine.")
	require.NoError(t, err)
	assert.InDelta(t, 8, j.Score, 0.001)
	assert.Equal(t, "Solid implementation, add tests for edge cases.", j.Feedback)
}

func TestGradeEmptySubmission(t *testing.T) {
	t.Parallel()

	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil))
	_, err := svc.Grade(context.Background(), "t", "d", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGradeUnparseableKeepsRawText(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: "This submission shows reasonable understanding of the problem."}
	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.Grade(context.Background(), "t", "d", "submission body")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, j.Score, 0.001)
	assert.Equal(t, "This submission shows reasonable understanding of the problem.", j.Feedback)
}

func TestGradeExhaustionDegradesToZeroScore(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, err: errors.New("down")}
	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.Grade(context.Background(), "t", "d", "submission body")
	require.NoError(t, err)
	assert.Zero(t, j.Score)
	assert.Equal(t, "Evaluation failed due to AI engine error.", j.Feedback)
	assert.Equal(t, domain.SourceHeuristic, j.Source)
}

func TestGradeNoProvidersStillProducesJudgment(t *testing.T) {
	t.Parallel()

	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil))

	j, err := svc.Grade(context.Background(), "t", "d", "submission body")
	require.NoError(t, err)
	assert.Zero(t, j.Score)
	assert.Equal(t, "Evaluation failed due to AI engine error.", j.Feedback)
}

func TestRecommendExhaustionDegradesToZeroScore(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, err: errors.New("down")}
	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.Recommend(context.Background(), "Backend Engineer", "summary")
	require.NoError(t, err)
	assert.Zero(t, j.Score)
	assert.Equal(t, domain.SourceHeuristic, j.Source)
}

func TestRecommendParsesRecommendationLabel(t *testing.T) {
	t.Parallel()

	alpha := &fakeProvider{name: "alpha", available: true, out: "Score: 7.5\nRecommendation: Ready for mid-level roles, deepen system design."}
	svc := NewAssignmentService(NewOrchestrator(testConfig(), nil, alpha))

	j, err := svc.Recommend(context.Background(), "Backend Engineer", "Scored well on concurrency questions.")
	require.NoError(t, err)
	assert.InDelta(t, 7.5, j.Score, 0.001)
	assert.Equal(t, "Ready for mid-level roles, deepen system design.", j.Feedback)
}
