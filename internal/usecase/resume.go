package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/internal/service/fingerprint"
	"github.com/hireloop/ai-hiring-evaluator/pkg/textx"
)

// ResumeService analyzes resume text and screens uploads for uniqueness.
type ResumeService struct {
	AI     *Orchestrator
	Engine *fingerprint.Engine
}

// NewResumeService constructs a ResumeService.
func NewResumeService(ai *Orchestrator, engine *fingerprint.Engine) ResumeService {
	return ResumeService{AI: ai, Engine: engine}
}

// PlagiarismReport is the provider-backed originality assessment.
type PlagiarismReport struct {
	Percentage   float64  `json:"percentage"`
	Authenticity float64  `json:"authenticity_score"`
	RiskLevel    string   `json:"risk_level"`
	Observations []string `json:"observations,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// ResumeAnalysis is the full analysis result for one resume.
type ResumeAnalysis struct {
	WordCount       int                   `json:"word_count"`
	CharCount       int                   `json:"char_count"`
	Features        domain.ResumeFeatures `json:"features"`
	Scores          map[string]float64    `json:"scores"`
	Recommendations []string              `json:"recommendations"`
	Plagiarism      PlagiarismReport      `json:"plagiarism"`
}

// Analyze extracts features and produces scores, recommendations, and a
// plagiarism report. Provider failures fall back to local heuristics so the
// analysis always completes.
func (s ResumeService) Analyze(ctx domain.Context, text string) (ResumeAnalysis, error) {
	text = textx.SanitizeText(text)
	if text == "" {
		return ResumeAnalysis{}, fmt.Errorf("op=resume.Analyze: %w: empty resume text", domain.ErrInvalidArgument)
	}

	features := fingerprint.ExtractFeatures(text)
	analysis := ResumeAnalysis{
		WordCount: textx.WordCount(text),
		CharCount: len(text),
		Features:  features,
	}

	analysis.Scores = s.scores(ctx, text, features)
	analysis.Recommendations = s.recommendations(ctx, analysis)
	analysis.Plagiarism = s.plagiarism(ctx, text)

	observability.ObserveScores(-1, analysis.Scores["overall_score"])
	return analysis, nil
}

var scoreKeys = []string{"skills_score", "experience_score", "education_score", "overall_score"}

func (s ResumeService) scores(ctx domain.Context, text string, features domain.ResumeFeatures) map[string]float64 {
	prompt := text
	if len(prompt) > 3000 {
		prompt = prompt[:3000]
	}
	req := domain.PromptRequest{
		System: "You are a resume screening assistant. Return only valid JSON.",
		User: fmt.Sprintf(`Score this resume on a 0-10 scale for skills, experience, and education.

Resume:
%s

Return scores as JSON: {"skills_score": X, "experience_score": Y, "education_score": Z, "overall_score": W}`, prompt),
		MaxTokens:   200,
		Temperature: 0.2,
	}

	if j, err := s.AI.Judge(ctx, domain.TaskResumeScoring, req); err == nil && j.Fields != nil {
		scores := make(map[string]float64, len(scoreKeys))
		for _, key := range scoreKeys {
			if v, ok := coerceScore(j.Fields[key]); ok {
				scores[key] = domain.ClampScore(v)
			}
		}
		if len(scores) > 0 {
			if _, ok := scores["overall_score"]; !ok {
				scores["overall_score"] = Round2((scores["skills_score"] + scores["experience_score"] + scores["education_score"]) / 3)
			}
			return scores
		}
	}

	observability.HeuristicFallbackTotal.WithLabelValues("resume_scoring").Inc()
	return localResumeScores(text, features)
}

// localResumeScores mirrors the deterministic fallback: skill count halved
// and capped, a flat experience credit when numbers appear, three points
// per degree.
func localResumeScores(text string, features domain.ResumeFeatures) map[string]float64 {
	totalSkills := 0
	for _, list := range features.Skills {
		totalSkills += len(list)
	}
	skillsScore := domain.ClampScore(float64(totalSkills) / 2)

	var expScore float64
	for _, d := range []string{"1", "2", "3", "4", "5"} {
		if strings.Contains(text, d) {
			expScore = 5
			break
		}
	}

	eduScore := domain.ClampScore(float64(len(features.Education)) * 3)

	return map[string]float64{
		"skills_score":     skillsScore,
		"experience_score": expScore,
		"education_score":  eduScore,
		"overall_score":    Round2((skillsScore + expScore + eduScore) / 3),
	}
}

func (s ResumeService) recommendations(ctx domain.Context, analysis ResumeAnalysis) []string {
	totalSkills := 0
	for _, list := range analysis.Features.Skills {
		totalSkills += len(list)
	}
	req := domain.PromptRequest{
		System: "You are a resume coach. Return only a JSON array of strings.",
		User: fmt.Sprintf(`Based on this resume analysis:
- Skills Score: %.1f/10
- Experience Score: %.1f/10
- Education Score: %.1f/10
- Overall Score: %.1f/10
- Resume length: %d words
- Skills found: %d technical skills

Provide 2-3 specific, actionable recommendations to improve this resume.
Format as a JSON array of strings: ["recommendation1", "recommendation2", "recommendation3"]`,
			analysis.Scores["skills_score"], analysis.Scores["experience_score"],
			analysis.Scores["education_score"], analysis.Scores["overall_score"],
			analysis.WordCount, totalSkills),
		MaxTokens:   300,
		Temperature: 0.7,
	}

	if raw, _, err := s.AI.Run(ctx, domain.TaskRecommendation, req); err == nil {
		if recs := parseRecommendations(raw); len(recs) > 0 {
			return recs
		}
	}

	// deterministic fallback rules
	var recs []string
	if analysis.Scores["skills_score"] < 6 {
		recs = append(recs, "Consider adding more technical skills to your resume")
	}
	if analysis.Scores["experience_score"] < 5 {
		recs = append(recs, "Highlight your work experience with specific achievements")
	}
	if analysis.WordCount < 200 {
		recs = append(recs, "Your resume seems brief. Consider adding more details about your projects and achievements")
	}
	if len(recs) == 0 {
		recs = append(recs, "Your resume looks strong! Focus on preparing for behavioral questions")
	}
	return recs
}

const maxRecommendations = 4

// parseRecommendations reads a JSON string array, falling back to advisory
// bullet lines when the array does not parse.
func parseRecommendations(raw string) []string {
	cleaned := stripMarkdownFences(raw)
	if arr := sliceJSONArray(cleaned); arr != "" {
		var parsed []string
		if err := json.Unmarshal([]byte(arr), &parsed); err == nil {
			var out []string
			for _, r := range parsed {
				r = strings.TrimSpace(r)
				if len(r) > 10 {
					out = append(out, r)
				}
				if len(out) == maxRecommendations {
					break
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}

	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-* "))
		if len(line) <= 15 {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest") ||
			strings.Contains(lower, "improve") || strings.Contains(lower, "add") {
			out = append(out, line)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

func (s ResumeService) plagiarism(ctx domain.Context, text string) PlagiarismReport {
	prompt := text
	if len(prompt) > 3000 {
		prompt = prompt[:3000]
	}
	req := domain.PromptRequest{
		System: "You are an originality reviewer for resumes. Return only valid JSON.",
		User: fmt.Sprintf(`Assess how likely this resume text is copied from templates or other resumes.

Resume:
%s

Return JSON: {"percentage": 0-100, "authenticity_score": 0-100, "risk_level": "low|medium|high", "observations": ["..."]}`, prompt),
		MaxTokens:   300,
		Temperature: 0.2,
	}

	raw, _, err := s.AI.Run(ctx, domain.TaskPlagiarism, req)
	if err != nil {
		return PlagiarismReport{
			Percentage:   0,
			Authenticity: 50,
			RiskLevel:    "unknown",
			Message:      "Plagiarism detection unavailable - no provider configured",
		}
	}

	report := PlagiarismReport{Authenticity: 50}
	if obj := sliceJSONObject(stripMarkdownFences(raw)); obj != "" {
		var fields map[string]any
		if json.Unmarshal([]byte(obj), &fields) == nil {
			if v, ok := coerceScore(fields["percentage"]); ok {
				report.Percentage = clampPercent(v)
			}
			if v, ok := coerceScore(fields["authenticity_score"]); ok {
				report.Authenticity = clampPercent(v)
			}
			if obs, ok := fields["observations"].([]any); ok {
				for _, o := range obs {
					if str, ok := o.(string); ok {
						report.Observations = append(report.Observations, str)
					}
				}
			}
		}
	}

	switch {
	case report.Percentage >= 70:
		report.RiskLevel = "high"
	case report.Percentage >= 40:
		report.RiskLevel = "medium"
	default:
		report.RiskLevel = "low"
	}
	return report
}

// Screen runs the uniqueness check against the fingerprint corpus.
func (s ResumeService) Screen(ctx domain.Context, text string) (fingerprint.ScreenResult, error) {
	text = textx.SanitizeText(text)
	if text == "" {
		return fingerprint.ScreenResult{}, fmt.Errorf("op=resume.Screen: %w: empty resume text", domain.ErrInvalidArgument)
	}
	return s.Engine.CheckUnique(ctx, text)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
