package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/pkg/textx"
)

// InterviewService scores interview answers and produces end-of-interview
// feedback. Provider exhaustion falls back to the keyword heuristic, so an
// answer always gets a judgment.
type InterviewService struct {
	AI *Orchestrator
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(ai *Orchestrator) InterviewService {
	return InterviewService{AI: ai}
}

// AnalyzeAnswer evaluates one answer against its question and the expected
// keywords.
func (s InterviewService) AnalyzeAnswer(ctx domain.Context, question, answer string, keywords []string) (domain.Judgment, error) {
	answer = textx.SanitizeText(answer)
	if strings.TrimSpace(answer) == "" {
		return KeywordJudgment(answer, keywords), nil
	}

	req := domain.PromptRequest{
		System: "You are an expert interviewer. Analyze interview answers and provide scores and feedback in valid JSON format only.",
		User: fmt.Sprintf(`Analyze this interview answer and provide a score from 0-10, feedback, and analysis.

Question: %s
Expected keywords: %s

Answer: %s

Return JSON in this exact format:
{
  "score": 0-10,
  "feedback": "Brief feedback on the answer",
  "analysis": "Short analysis of strengths and gaps"
}`, question, strings.Join(keywords, ", "), answer),
		MaxTokens:   500,
		Temperature: 0.3,
	}

	j, err := s.AI.Judge(ctx, domain.TaskAnswerAnalysis, req)
	if err != nil {
		observability.HeuristicFallbackTotal.WithLabelValues("answer_analysis").Inc()
		j = KeywordJudgment(answer, keywords)
	}

	if j.Fields == nil {
		j.Fields = make(map[string]any)
	}
	j.Fields["word_count"] = textx.WordCount(answer)
	j.Fields["keywords_matched"] = matchedKeywords(answer, keywords)

	observability.ObserveScores(j.Score, -1)
	return j, nil
}

// ResponseSummary is one scored answer used for overall feedback.
type ResponseSummary struct {
	Answer string
	Score  float64
}

// OverallFeedback summarizes a whole interview. Provider text is used when
// available; otherwise a deterministic band sentence is produced.
func (s InterviewService) OverallFeedback(ctx domain.Context, responses []ResponseSummary) (string, error) {
	if len(responses) == 0 {
		return "No responses to evaluate.", nil
	}

	var total float64
	for _, r := range responses {
		total += r.Score
	}
	avg := total / float64(len(responses))

	var answers []string
	for i, r := range responses {
		if i >= 5 {
			break
		}
		answers = append(answers, r.Answer)
	}
	joined := strings.Join(answers, " ")
	if len(joined) > 500 {
		joined = joined[:500]
	}

	req := domain.PromptRequest{
		System: "You are an experienced interviewer writing a short performance summary.",
		User: fmt.Sprintf(`Based on these interview responses with an average score of %.1f/10, provide overall feedback:
%s

Provide brief, constructive feedback:`, avg, joined),
		MaxTokens:   200,
		Temperature: 0.7,
	}
	if raw, _, err := s.AI.Run(ctx, domain.TaskRecommendation, req); err == nil {
		if text := strings.TrimSpace(raw); len(text) > 20 {
			return text, nil
		}
	}

	var strength string
	switch {
	case avg >= 8:
		strength = "strong"
	case avg >= 6:
		strength = "good"
	case avg >= 4:
		strength = "average"
	default:
		strength = "needs improvement"
	}
	return fmt.Sprintf("Overall, you demonstrated %s performance in this interview with an average score of %.1f/10.", strength, avg), nil
}

// KeywordJudgment scores an answer without any provider: keyword coverage
// contributes up to 6 points and answer length up to 4.
func KeywordJudgment(answer string, keywords []string) domain.Judgment {
	score := keywordScore(answer, keywords)
	matched := matchedKeywords(answer, keywords)
	return domain.Judgment{
		Score:    score,
		Feedback: keywordFeedback(answer, keywords, score),
		Fields: map[string]any{
			"word_count":       textx.WordCount(answer),
			"keywords_matched": matched,
		},
		Source:    domain.SourceHeuristic,
		CreatedAt: time.Now().UTC(),
	}
}

func keywordScore(answer string, keywords []string) float64 {
	if strings.TrimSpace(answer) == "" {
		return 0
	}

	var kwScore float64
	if len(keywords) > 0 {
		found := len(matchedKeywords(answer, keywords))
		kwScore = float64(found) / float64(len(keywords)) * 6
	}
	lengthScore := math.Min(4, float64(textx.WordCount(answer))/25)
	return Round1(math.Min(10, kwScore+lengthScore))
}

func keywordFeedback(answer string, keywords []string, score float64) string {
	switch {
	case score >= 8:
		return "Excellent answer! You covered the key points clearly and thoroughly."
	case score >= 6:
		return "Good answer. You mentioned some relevant points but could add more detail."
	case score >= 4:
		return "Average answer. Consider providing more specific examples and details."
	}

	var missing []string
	for _, kw := range keywords {
		if !textx.ContainsFold(answer, kw) {
			missing = append(missing, kw)
		}
	}
	if len(missing) > 0 {
		if len(missing) > 3 {
			missing = missing[:3]
		}
		return "Try to include concepts like: " + strings.Join(missing, ", ")
	}
	return "Please provide a more detailed and structured answer."
}

func matchedKeywords(answer string, keywords []string) []string {
	matched := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if textx.ContainsFold(answer, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
