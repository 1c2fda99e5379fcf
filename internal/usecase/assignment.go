package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/pkg/textx"
)

// AssignmentService grades free-form submissions and produces career
// recommendations through the grading provider chain. Total provider outage
// degrades to a zero-score judgment, never a user-visible failure.
type AssignmentService struct {
	AI *Orchestrator
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(ai *Orchestrator) AssignmentService {
	return AssignmentService{AI: ai}
}

// Grade evaluates a submission against the assignment description. A
// response that cannot be parsed keeps the raw text as feedback with a
// neutral score.
func (s AssignmentService) Grade(ctx domain.Context, title, description, submission string) (domain.Judgment, error) {
	submission = textx.SanitizeText(submission)
	if submission == "" {
		return domain.Judgment{}, fmt.Errorf("op=assignment.Grade: %w: empty submission", domain.ErrInvalidArgument)
	}

	req := domain.PromptRequest{
		System: "You are an expert academic evaluator.",
		User: fmt.Sprintf(`Please evaluate the following student submission for the assignment titled '%s'.

Assignment Description:
%s

Student Submission:
%s

Please provide:
1. A score out of 10.
2. Detailed constructive feedback.

Format your response EXACTLY like this:
Score: [Number]
Feedback: [Text]`, title, description, submission),
		MaxTokens:   800,
		Temperature: 0.3,
	}

	return s.judge(ctx, domain.TaskAssignment, req)
}

// Recommend produces a career recommendation from an interview summary.
func (s AssignmentService) Recommend(ctx domain.Context, role, summary string) (domain.Judgment, error) {
	req := domain.PromptRequest{
		System: "You are an AI career advisor.",
		User: fmt.Sprintf(`Based on a candidate's practice interview for the role of '%s', provide a career recommendation and performance summary.

Interview Summary:
%s

Please provide:
1. A score out of 10.
2. A career recommendation and suggested improvements.

Format your response EXACTLY like this:
Score: [Number]
Recommendation: [Text]`, role, summary),
		MaxTokens:   600,
		Temperature: 0.5,
	}

	return s.judge(ctx, domain.TaskRecommendation, req)
}

const outageFeedback = "Evaluation failed due to AI engine error."

func (s AssignmentService) judge(ctx domain.Context, task domain.TaskKind, req domain.PromptRequest) (domain.Judgment, error) {
	j, err := s.AI.Judge(ctx, task, req)
	if err != nil {
		if errors.Is(err, domain.ErrAllProvidersExhausted) {
			observability.HeuristicFallbackTotal.WithLabelValues(string(task)).Inc()
			return domain.Judgment{
				Score:     0,
				Feedback:  outageFeedback,
				Source:    domain.SourceHeuristic,
				CreatedAt: time.Now().UTC(),
			}, nil
		}
		return domain.Judgment{}, fmt.Errorf("op=assignment.judge: task=%s: %w", task, err)
	}
	return j, nil
}
