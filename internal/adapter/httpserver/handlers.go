package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Interview   usecase.InterviewService
	Questions   usecase.QuestionService
	Assignments usecase.AssignmentService
	Resumes     usecase.ResumeService
	Proctor     *usecase.ProctorService
	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, interview usecase.InterviewService, questions usecase.QuestionService, assignments usecase.AssignmentService, resumes usecase.ResumeService, proctor *usecase.ProctorService, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:         cfg,
		Interview:   interview,
		Questions:   questions,
		Assignments: assignments,
		Resumes:     resumes,
		Proctor:     proctor,
		DBCheck:     dbCheck,
		RedisCheck:  redisCheck,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// decodeJSON decodes and validates a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err)
	}
	if err := getValidator().Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

type judgmentResponse struct {
	Score    float64        `json:"score"`
	Feedback string         `json:"feedback"`
	Source   string         `json:"source"`
	Fields   map[string]any `json:"fields,omitempty"`
}

func toJudgmentResponse(j domain.Judgment) judgmentResponse {
	return judgmentResponse{
		Score:    j.Score,
		Feedback: j.Feedback,
		Source:   string(j.Source),
		Fields:   j.Fields,
	}
}

// AnalyzeAnswerHandler scores one interview answer.
func (s *Server) AnalyzeAnswerHandler() http.HandlerFunc {
	type request struct {
		Question string   `json:"question" validate:"required"`
		Answer   string   `json:"answer"`
		Keywords []string `json:"keywords"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		j, err := s.Interview.AnalyzeAnswer(r.Context(), req.Question, req.Answer, req.Keywords)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJudgmentResponse(j))
	}
}

// OverallFeedbackHandler summarizes a whole interview.
func (s *Server) OverallFeedbackHandler() http.HandlerFunc {
	type responseItem struct {
		Answer string  `json:"answer"`
		Score  float64 `json:"score" validate:"gte=0,lte=10"`
	}
	type request struct {
		Responses []responseItem `json:"responses" validate:"dive"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		summaries := make([]usecase.ResponseSummary, 0, len(req.Responses))
		var total float64
		for _, item := range req.Responses {
			summaries = append(summaries, usecase.ResponseSummary{Answer: item.Answer, Score: item.Score})
			total += item.Score
		}
		feedback, err := s.Interview.OverallFeedback(r.Context(), summaries)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		resp := map[string]any{"feedback": feedback}
		if len(summaries) > 0 {
			resp["average_score"] = usecase.Round1(total / float64(len(summaries)))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// GenerateQuestionsHandler produces a set of interview questions for a role.
func (s *Server) GenerateQuestionsHandler() http.HandlerFunc {
	type request struct {
		Role   string   `json:"role" validate:"required"`
		Skills []string `json:"skills"`
		Count  int      `json:"count" validate:"gte=0"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		questions, err := s.Questions.Generate(r.Context(), req.Role, req.Skills, req.Count)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	}
}

// NextQuestionHandler produces one follow-up question.
func (s *Server) NextQuestionHandler() http.HandlerFunc {
	type request struct {
		Role       string   `json:"role" validate:"required"`
		Skills     []string `json:"skills"`
		Asked      []string `json:"asked"`
		LastAnswer string   `json:"last_answer"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		q, err := s.Questions.Next(r.Context(), req.Role, req.Skills, req.Asked, req.LastAnswer)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"question": q})
	}
}

// GradeAssignmentHandler evaluates a free-form submission.
func (s *Server) GradeAssignmentHandler() http.HandlerFunc {
	type request struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Submission  string `json:"submission" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		j, err := s.Assignments.Grade(r.Context(), req.Title, req.Description, req.Submission)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJudgmentResponse(j))
	}
}

// RecommendHandler produces a career recommendation from an interview summary.
func (s *Server) RecommendHandler() http.HandlerFunc {
	type request struct {
		Role    string `json:"role" validate:"required"`
		Summary string `json:"summary" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		j, err := s.Assignments.Recommend(r.Context(), req.Role, req.Summary)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJudgmentResponse(j))
	}
}

// AnalyzeResumeHandler runs the full resume analysis.
func (s *Server) AnalyzeResumeHandler() http.HandlerFunc {
	type request struct {
		Text string `json:"text" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		analysis, err := s.Resumes.Analyze(r.Context(), req.Text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

// ScreenResumeHandler checks a resume for uniqueness against the corpus.
func (s *Server) ScreenResumeHandler() http.HandlerFunc {
	type request struct {
		Text string `json:"text" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		result, err := s.Resumes.Screen(r.Context(), req.Text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		status := http.StatusOK
		if !result.Unique {
			status = http.StatusConflict
		}
		writeJSON(w, status, result)
	}
}

// ProctorSessionHandler scores a proctoring session from captured frames and
// audio clips, both base64 encoded.
func (s *Server) ProctorSessionHandler() http.HandlerFunc {
	type request struct {
		SessionID string   `json:"session_id"`
		Frames    []string `json:"frames"`
		Clips     []string `json:"clips"`
	}
	type response struct {
		SessionID string `json:"session_id"`
		usecase.SessionReport
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		frames, err := decodeAll(req.Frames)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: frames: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		clips, err := decodeAll(req.Clips)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: clips: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		report := s.Proctor.AnalyzeSession(r.Context(), frames, clips)
		writeJSON(w, http.StatusOK, response{SessionID: sessionID, SessionReport: report})
	}
}

// ProctorIntegrityHandler flags suspicious transcript content and weak
// responses in a finished session.
func (s *Server) ProctorIntegrityHandler() http.HandlerFunc {
	type responseItem struct {
		Answer string  `json:"answer"`
		Score  float64 `json:"score" validate:"gte=0,lte=10"`
	}
	type request struct {
		Transcript string         `json:"transcript"`
		Responses  []responseItem `json:"responses" validate:"dive"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		summaries := make([]usecase.ResponseSummary, 0, len(req.Responses))
		for _, item := range req.Responses {
			summaries = append(summaries, usecase.ResponseSummary{Answer: item.Answer, Score: item.Score})
		}
		report := s.Proctor.AnalyzeIntegrity(r.Context(), req.Transcript, summaries)
		writeJSON(w, http.StatusOK, report)
	}
}

func decodeAll(encoded []string) ([][]byte, error) {
	out := make([][]byte, 0, len(encoded))
	for i, e := range encoded {
		data, err := base64.StdEncoding.DecodeString(e)
		if err != nil {
			return nil, fmt.Errorf("item %d: %v", i, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// ReadyzHandler reports dependency readiness.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]func(context.Context) error{
			"db":    s.DBCheck,
			"redis": s.RedisCheck,
		}
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if check == nil {
				results[name] = "disabled"
				continue
			}
			if err := check(r.Context()); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, status, map[string]any{"checks": results})
	}
}
