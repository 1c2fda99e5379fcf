package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/httpserver"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/repo/memory"
	"github.com/hireloop/ai-hiring-evaluator/internal/app"
	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/internal/service/fingerprint"
	"github.com/hireloop/ai-hiring-evaluator/internal/service/questionbank"
	"github.com/hireloop/ai-hiring-evaluator/internal/usecase"
)

type testProvider struct {
	out string
	err error
}

func (p *testProvider) Name() string    { return "test" }
func (p *testProvider) Available() bool { return true }

func (p *testProvider) Invoke(_ context.Context, _ domain.PromptRequest) (string, error) {
	return p.out, p.err
}

type testMedia struct{}

func (testMedia) ClassifyImage(_ context.Context, _ []byte) ([]domain.Label, error) {
	return []domain.Label{{Name: "neutral", Score: 0.8}}, nil
}

func (testMedia) ClassifyAudio(_ context.Context, _ []byte) ([]domain.Label, error) {
	return []domain.Label{{Name: "calm", Score: 0.8}}, nil
}

func (testMedia) DetectObjects(_ context.Context, _ []byte) ([]domain.Detection, error) {
	return []domain.Detection{{Label: "person", Score: 0.9}}, nil
}

func (testMedia) ZeroShot(_ context.Context, _ string, _ []string) ([]domain.Label, error) {
	return []domain.Label{{Name: "good", Score: 0.7}}, nil
}

func newTestHandler(t *testing.T, provider domain.Provider) http.Handler {
	t.Helper()

	cfg := config.Config{
		AnswerProviders:     []string{"test"},
		QuestionProviders:   []string{"test"},
		GradingProviders:    []string{"test"},
		ResumeProviders:     []string{"test"},
		MinQuestions:        5,
		MaxQuestions:        10,
		DefaultQuestions:    5,
		SimilarityThreshold: 0.75,
		ConfidenceWeight:    0.5,
		VoiceWeight:         0.3,
		BodyLanguageWeight:  0.2,
		RateLimitPerMin:     1000,
	}

	orch := usecase.NewOrchestrator(cfg, nil, provider)
	bank, err := questionbank.Load("")
	require.NoError(t, err)
	engine := fingerprint.NewEngine(memory.NewFingerprintStore(), cfg.SimilarityThreshold)

	srv := httpserver.NewServer(cfg,
		usecase.NewInterviewService(orch),
		usecase.NewQuestionService(cfg, orch, bank),
		usecase.NewAssignmentService(orch),
		usecase.NewResumeService(orch, engine),
		usecase.NewProctorService(cfg, testMedia{}),
		nil, nil)
	return app.BuildRouter(cfg, srv)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeAnswerEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: `{"score": 8, "feedback": "Good answer."}`})
	rec := postJSON(t, h, "/v1/interview/answer", map[string]any{
		"question": "Explain goroutines.",
		"answer":   "Goroutines are lightweight threads.",
		"keywords": []string{"goroutines"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 8, resp["score"].(float64), 0.001)
	assert.Equal(t, "Good answer.", resp["feedback"])
	assert.Equal(t, "test", resp["source"])
}

func TestAnalyzeAnswerValidation(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: `{}`})
	rec := postJSON(t, h, "/v1/interview/answer", map[string]any{"answer": "no question"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestAnalyzeAnswerFallbackWhenProvidersDown(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{err: errors.New("down")})
	rec := postJSON(t, h, "/v1/interview/answer", map[string]any{
		"question": "Explain indexes.",
		"answer":   "Indexes speed up lookups at the cost of writes.",
		"keywords": []string{"lookups"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.SourceHeuristic), resp["source"])
}

func TestOverallFeedbackEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{err: errors.New("down")})
	rec := postJSON(t, h, "/v1/interview/feedback", map[string]any{
		"responses": []map[string]any{
			{"answer": "a", "score": 8},
			{"answer": "b", "score": 6},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["feedback"], "average score of 7.0/10")
	assert.InDelta(t, 7.0, resp["average_score"].(float64), 0.001)
}

func TestGenerateQuestionsBankFallback(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{err: errors.New("down")})
	rec := postJSON(t, h, "/v1/questions", map[string]any{"role": "software engineer", "count": 5})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Questions []domain.Question `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Questions, 5)
}

func TestGradeAssignmentEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "Score: 9\nFeedback: Excellent work."})
	rec := postJSON(t, h, "/v1/assignments/grade", map[string]any{
		"title":      "Rate limiter",
		"submission": "token bucket implementation",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 9, resp["score"].(float64), 0.001)
}

func TestGradeAssignmentProvidersDown(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{err: errors.New("down")})
	rec := postJSON(t, h, "/v1/assignments/grade", map[string]any{
		"title":      "Rate limiter",
		"submission": "token bucket implementation",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp["score"].(float64))
	assert.Equal(t, "Evaluation failed due to AI engine error.", resp["feedback"])
	assert.Equal(t, string(domain.SourceHeuristic), resp["source"])
}

func TestScreenResumeConflictOnDuplicate(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{err: errors.New("down")})
	resume := map[string]any{"text": `Senior developer with 5 years experience.
Built services in Go and Python with PostgreSQL.
Education: Bachelor of Computer Science.`}

	first := postJSON(t, h, "/v1/resumes/screen", resume)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, h, "/v1/resumes/screen", resume)
	require.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "too similar")
}

func TestAnalyzeResumeEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{err: errors.New("down")})
	rec := postJSON(t, h, "/v1/resumes/analyze", map[string]any{
		"text": "Python developer with 3 years experience. Bachelor of Science.",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp["scores"])
	assert.NotNil(t, resp["plagiarism"])
}

func TestProctorSessionEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "{}"})
	rec := postJSON(t, h, "/v1/proctor/session", map[string]any{
		"frames": []string{"ZnJhbWU="},
		"clips":  []string{"Y2xpcA=="},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "overall_physical_score")
	assert.NotEmpty(t, resp["session_id"])
	assert.Empty(t, resp["violations"])
}

func TestProctorIntegrityEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "{}"})
	rec := postJSON(t, h, "/v1/proctor/integrity", map[string]any{
		"transcript": "Someone please help me answer this.",
		"responses":  []map[string]any{{"answer": "a", "score": 2}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	issues := resp["issues"].([]any)
	assert.Len(t, issues, 2)
	assert.Equal(t, "good", resp["quality_label"])
}

func TestProctorSessionBadBase64(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "{}"})
	rec := postJSON(t, h, "/v1/proctor/session", map[string]any{"frames": []string{"%%%"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "{}"})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzWithoutDependencies(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "{}"})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled")
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, &testProvider{out: "{}"})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
