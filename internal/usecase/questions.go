package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/internal/service/questionbank"
)

// QuestionService generates interview questions through the provider chain
// with the curated bank as deterministic fallback.
type QuestionService struct {
	AI   *Orchestrator
	Bank *questionbank.Service

	min, max, def int
}

// NewQuestionService constructs a QuestionService with the configured
// count bounds.
func NewQuestionService(cfg config.Config, ai *Orchestrator, bank *questionbank.Service) QuestionService {
	return QuestionService{AI: ai, Bank: bank, min: cfg.MinQuestions, max: cfg.MaxQuestions, def: cfg.DefaultQuestions}
}

// ClampCount applies the configured question count bounds; zero or
// negative requests get the default.
func (s QuestionService) ClampCount(n int) int {
	if n <= 0 {
		n = s.def
	}
	if n < s.min {
		return s.min
	}
	if n > s.max {
		return s.max
	}
	return n
}

// Generate produces n questions for a role, informed by candidate skills.
func (s QuestionService) Generate(ctx domain.Context, role string, skills []string, n int) ([]domain.Question, error) {
	n = s.ClampCount(n)

	skillsText := strings.Join(skills, ", ")
	req := domain.PromptRequest{
		System: "You are an expert technical interviewer. Return only valid JSON, no markdown.",
		User: fmt.Sprintf(`Generate exactly %d interview questions for a %s candidate.
%s
Mix technical and behavioral questions.

Return ONLY a JSON array in this exact format:
[{"question":"...","type":"technical|behavioral","difficulty":"easy|medium|hard","keywords":["..."]}]`, n, role, skillsLine(skillsText)),
		MaxTokens:   1200,
		Temperature: 0.7,
	}

	raw, _, err := s.AI.Run(ctx, domain.TaskQuestionGen, req)
	if err == nil {
		if qs := parseQuestionArray(raw); len(qs) >= n {
			return qs[:n], nil
		}
	}

	// bank fallback cycles the curated questions for the role
	return s.Bank.Cycle(role, n), nil
}

// Next produces a single follow-up question that has not been asked yet.
func (s QuestionService) Next(ctx domain.Context, role string, skills []string, asked []string, lastAnswer string) (domain.Question, error) {
	lastAnswer = strings.TrimSpace(lastAnswer)
	if len(lastAnswer) > 600 {
		lastAnswer = lastAnswer[:600]
	}
	recent := asked
	if len(recent) > 8 {
		recent = recent[len(recent)-8:]
	}
	recentList := "- (none yet)"
	if len(recent) > 0 {
		recentList = "- " + strings.Join(recent, "\n- ")
	}

	req := domain.PromptRequest{
		System: "You are an experienced human interviewer having a natural conversation. Return only valid JSON, no markdown.",
		User: fmt.Sprintf(`You are interviewing a %s candidate.
%s
Previously asked questions (do NOT repeat):
%s

%sGenerate exactly 1 next question that feels like a natural follow-up.

Return ONLY valid JSON in this exact format:
{"question":"...","type":"technical|behavioral","difficulty":"easy|medium|hard"}`,
			role, skillsLine(strings.Join(skills, ", ")), recentList, lastAnswerLine(lastAnswer)),
		MaxTokens:   250,
		Temperature: 0.7,
	}

	raw, _, err := s.AI.Run(ctx, domain.TaskQuestionGen, req)
	if err == nil {
		if q, ok := parseQuestionObject(raw); ok && !containsText(asked, q.Question) {
			return q, nil
		}
	}

	if q, ok := s.Bank.FirstUnasked(role, asked); ok {
		return q, nil
	}
	return domain.Question{
		Question:   fmt.Sprintf("Tell me about yourself and your most relevant experience for this %s role.", role),
		Type:       "behavioral",
		Difficulty: "easy",
	}, nil
}

func parseQuestionArray(raw string) []domain.Question {
	arr := sliceJSONArray(stripMarkdownFences(raw))
	if arr == "" {
		return nil
	}
	var parsed []domain.Question
	if err := json.Unmarshal([]byte(arr), &parsed); err != nil {
		arr = trailingCommaRe.ReplaceAllString(arr, "$1")
		if err := json.Unmarshal([]byte(arr), &parsed); err != nil {
			return nil
		}
	}

	out := make([]domain.Question, 0, len(parsed))
	seen := make(map[string]struct{})
	for _, q := range parsed {
		q = normalizeQuestion(q)
		if q.Question == "" {
			continue
		}
		if _, dup := seen[q.Question]; dup {
			continue
		}
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	return out
}

func parseQuestionObject(raw string) (domain.Question, bool) {
	obj := sliceJSONObject(stripMarkdownFences(raw))
	if obj == "" {
		return domain.Question{}, false
	}
	var q domain.Question
	if err := json.Unmarshal([]byte(obj), &q); err != nil {
		obj = trailingCommaRe.ReplaceAllString(obj, "$1")
		if err := json.Unmarshal([]byte(obj), &q); err != nil {
			return domain.Question{}, false
		}
	}
	q = normalizeQuestion(q)
	return q, q.Question != ""
}

func normalizeQuestion(q domain.Question) domain.Question {
	q.Question = strings.TrimSpace(q.Question)
	q.Type = strings.TrimSpace(q.Type)
	if q.Type == "" {
		q.Type = "technical"
	}
	q.Difficulty = strings.TrimSpace(q.Difficulty)
	if q.Difficulty == "" {
		q.Difficulty = "medium"
	}
	return q
}

func containsText(list []string, text string) bool {
	for _, t := range list {
		if t == text {
			return true
		}
	}
	return false
}

func skillsLine(skills string) string {
	if skills == "" {
		return ""
	}
	return "Candidate skills: " + skills + "\n"
}

func lastAnswerLine(answer string) string {
	if answer == "" {
		return ""
	}
	return "Candidate's last answer (for follow-up context): " + answer + "\n\n"
}
