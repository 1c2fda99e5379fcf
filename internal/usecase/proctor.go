package usecase

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// ProctorService scores the physical interview signals: facial expression,
// posture, and voice. Classifier failures degrade to neutral scores so a
// session report is always produced.
type ProctorService struct {
	Media domain.MediaAnalyzer

	confidenceWeight float64
	voiceWeight      float64
	bodyWeight       float64

	mu      sync.Mutex
	prevBox *domain.Rect
}

// NewProctorService constructs a ProctorService with the configured
// composite weights.
func NewProctorService(cfg config.Config, media domain.MediaAnalyzer) *ProctorService {
	return &ProctorService{
		Media:            media,
		confidenceWeight: cfg.ConfidenceWeight,
		voiceWeight:      cfg.VoiceWeight,
		bodyWeight:       cfg.BodyLanguageWeight,
	}
}

// FrameAnalysis is the outcome for one video frame.
type FrameAnalysis struct {
	Confidence    float64            `json:"confidence"`
	Posture       float64            `json:"posture_score"`
	PersonCount   int                `json:"person_count"`
	PhoneDetected bool               `json:"phone_detected"`
	Emotions      map[string]float64 `json:"emotions,omitempty"`
}

// AudioAnalysis is the outcome for one audio clip.
type AudioAnalysis struct {
	VoiceScore float64            `json:"voice_score"`
	Emotions   map[string]float64 `json:"emotions,omitempty"`
}

// SessionReport aggregates a whole proctoring session.
type SessionReport struct {
	Confidence    float64  `json:"confidence"`
	VoiceQuality  float64  `json:"voice_quality"`
	BodyLanguage  float64  `json:"body_language"`
	Overall       float64  `json:"overall_physical_score"`
	PersonCount   int      `json:"person_count"`
	PhoneDetected bool     `json:"phone_detected"`
	Violations    []string `json:"violations"`
}

// AnalyzeFrame classifies one frame for emotion and scene composition.
func (s *ProctorService) AnalyzeFrame(ctx domain.Context, frame []byte) FrameAnalysis {
	analysis := FrameAnalysis{Confidence: 5.0, Posture: 5.0, PersonCount: 1}

	if labels, err := s.Media.ClassifyImage(ctx, frame); err == nil {
		analysis.Emotions = labelMap(labels)
		analysis.Confidence = emotionConfidence(analysis.Emotions)
	} else {
		slog.Warn("face classification failed", slog.Any("error", err))
	}

	detections, err := s.Media.DetectObjects(ctx, frame)
	if err != nil {
		slog.Warn("object detection failed", slog.Any("error", err))
		return analysis
	}

	posture, persons, phone := s.scoreScene(detections)
	analysis.Posture = posture
	analysis.PersonCount = persons
	analysis.PhoneDetected = phone
	return analysis
}

// scoreScene derives the posture score from detections: a clearly framed
// person raises it, movement between frames and extra people or a phone
// lower it.
func (s *ProctorService) scoreScene(detections []domain.Detection) (float64, int, bool) {
	posture := 6.0
	var persons []domain.Detection
	phone := false
	for _, d := range detections {
		label := strings.ToLower(d.Label)
		if strings.Contains(label, "person") {
			persons = append(persons, d)
		}
		if strings.Contains(label, "phone") {
			phone = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(persons) > 0 {
		posture += 2.0
		box := persons[0].Box
		if s.prevBox != nil {
			diff := math.Abs(box.XMin-s.prevBox.XMin) + math.Abs(box.YMin-s.prevBox.YMin)
			if diff > 50 {
				posture -= 1.5
			} else if diff < 10 {
				posture += 1.0
			}
		}
		s.prevBox = &box
	} else {
		posture = 4.0
	}

	if len(persons) > 1 {
		posture -= 3.0
	}
	if phone {
		posture -= 4.0
	}
	return domain.ClampScore(posture), len(persons), phone
}

// AnalyzeAudio scores one audio clip for vocal confidence.
func (s *ProctorService) AnalyzeAudio(ctx domain.Context, clip []byte) AudioAnalysis {
	labels, err := s.Media.ClassifyAudio(ctx, clip)
	if err != nil {
		slog.Warn("audio classification failed", slog.Any("error", err))
		return AudioAnalysis{VoiceScore: 5.0}
	}
	emotions := labelMap(labels)
	return AudioAnalysis{VoiceScore: voiceQuality(emotions), Emotions: emotions}
}

// AnalyzeSession aggregates frames and clips into the session report with
// the configured composite weights.
func (s *ProctorService) AnalyzeSession(ctx domain.Context, frames [][]byte, clips [][]byte) SessionReport {
	var confScores, postureScores, voiceScores []float64
	maxPersons := 0
	anyPhone := false

	for _, frame := range frames {
		fa := s.AnalyzeFrame(ctx, frame)
		confScores = append(confScores, fa.Confidence)
		postureScores = append(postureScores, fa.Posture)
		if fa.PersonCount > maxPersons {
			maxPersons = fa.PersonCount
		}
		if fa.PhoneDetected {
			anyPhone = true
		}
	}
	if len(frames) == 0 {
		maxPersons = 1
	}

	report := SessionReport{
		Confidence:   Round2(mean(confScores, 5.0)),
		VoiceQuality: 5.0,
		BodyLanguage: Round2(mean(postureScores, 5.0)),
	}

	for _, clip := range clips {
		aa := s.AnalyzeAudio(ctx, clip)
		voiceScores = append(voiceScores, aa.VoiceScore)
	}
	report.VoiceQuality = Round2(mean(voiceScores, 5.0))

	report.Overall = Round2(Composite(map[string]domain.Component{
		"confidence": {Value: report.Confidence, Weight: s.confidenceWeight},
		"voice":      {Value: report.VoiceQuality, Weight: s.voiceWeight},
		"body":       {Value: report.BodyLanguage, Weight: s.bodyWeight},
	}))

	report.PersonCount = maxPersons
	report.PhoneDetected = anyPhone
	report.Violations = violations(maxPersons, anyPhone)
	return report
}

// IntegrityReport flags behavior in a session transcript that warrants a
// human look.
type IntegrityReport struct {
	Issues       []string `json:"issues"`
	QualityLabel string   `json:"quality_label,omitempty"`
	QualityScore float64  `json:"quality_score,omitempty"`
}

var suspiciousKeywords = []string{"look away", "phone", "other person", "copy", "help", "chat"}

var qualityLabels = []string{"excellent", "good", "average", "poor"}

// AnalyzeIntegrity scans a session transcript for suspicious references and
// flags low-scoring responses. When a transcript is present it also rates
// the overall answer quality with zero-shot classification; classifier
// failures drop the rating, never the report.
func (s *ProctorService) AnalyzeIntegrity(ctx domain.Context, transcript string, responses []ResponseSummary) IntegrityReport {
	report := IntegrityReport{Issues: []string{}}

	lower := strings.ToLower(transcript)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			report.Issues = append(report.Issues, fmt.Sprintf("Detected reference to %q in transcript", kw))
		}
	}
	for i, resp := range responses {
		if resp.Score < 3 {
			report.Issues = append(report.Issues, fmt.Sprintf("Low score on question %d", i+1))
		}
	}

	if strings.TrimSpace(transcript) == "" {
		return report
	}
	labels, err := s.Media.ZeroShot(ctx, transcript, qualityLabels)
	if err != nil {
		slog.Warn("transcript classification failed", slog.Any("error", err))
		return report
	}
	if top, ok := domain.TopLabel(labels); ok {
		report.QualityLabel = top.Name
		report.QualityScore = top.Score
	}
	return report
}

func violations(maxPersons int, phone bool) []string {
	var out []string
	if phone {
		out = append(out, "Mobile phone detected")
	}
	if maxPersons == 0 {
		out = append(out, "No face detected")
	} else if maxPersons > 1 {
		out = append(out, fmt.Sprintf("Multiple people detected (%d)", maxPersons))
	}
	return out
}

// emotionConfidence weighs the facial emotion mix for interview context:
// neutral and happy read as confident, fear, sadness and anger do not.
func emotionConfidence(emotions map[string]float64) float64 {
	if len(emotions) == 0 {
		return 5.0
	}
	neutral, ok := emotions["neutral"]
	if !ok {
		neutral = 0.5
	}
	level := neutral*8.0 +
		emotions["happy"]*10.0 -
		emotions["fear"]*6.0 -
		emotions["sad"]*4.0 -
		emotions["angry"]*5.0
	return domain.ClampScore(level)
}

// voiceQuality maps vocal emotion probabilities onto a 0-10 score.
func voiceQuality(emotions map[string]float64) float64 {
	if len(emotions) == 0 {
		return 5.0
	}
	positive := emotions["calm"] + emotions["happy"] + emotions["neutral"]
	negative := emotions["angry"] + emotions["fear"] + emotions["sad"]
	return domain.ClampScore(5.0 + positive*5.0 - negative*3.0)
}

func labelMap(labels []domain.Label) map[string]float64 {
	m := make(map[string]float64, len(labels))
	for _, l := range labels {
		m[strings.ToLower(l.Name)] = l.Score
	}
	return m
}

func mean(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
