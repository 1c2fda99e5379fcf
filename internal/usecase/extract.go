package usecase

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// ExtractLayer names the extraction layer that produced a judgment.
type ExtractLayer string

const (
	LayerJSON    ExtractLayer = "json"
	LayerLabels  ExtractLayer = "labels"
	LayerBullets ExtractLayer = "bullets"
	LayerNeutral ExtractLayer = "neutral"
)

// Known section markers for the label layer. Scanning is anchored: a
// section runs until the next known marker, not until the next substring.
var sectionMarkers = []string{"Score:", "Feedback:", "Recommendation:", "Strengths:", "Weaknesses:", "Suggestions:", "Analysis:"}

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	markdownFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

// Extract turns a raw model response into a judgment. It never fails
// outward: each layer degrades to the next and the last layer always
// produces a neutral judgment carrying the raw text.
func Extract(raw string) (domain.Judgment, ExtractLayer) {
	now := time.Now().UTC()

	if j, ok := extractJSON(raw); ok {
		j.CreatedAt = now
		return j, LayerJSON
	}
	if j, ok := extractLabels(raw); ok {
		j.CreatedAt = now
		return j, LayerLabels
	}
	if j, ok := extractBullets(raw); ok {
		j.CreatedAt = now
		return j, LayerBullets
	}
	return domain.Judgment{
		Score:     5.0,
		Feedback:  strings.TrimSpace(raw),
		Source:    domain.SourceHeuristic,
		CreatedAt: now,
	}, LayerNeutral
}

// extractJSON slices a brace-matched object out of the response, repairs
// common model artifacts, and reads score/feedback fields.
func extractJSON(raw string) (domain.Judgment, bool) {
	cleaned := stripMarkdownFences(raw)
	obj := sliceJSONObject(cleaned)
	if obj == "" {
		return domain.Judgment{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		obj = trailingCommaRe.ReplaceAllString(obj, "$1")
		if err := json.Unmarshal([]byte(obj), &fields); err != nil {
			return domain.Judgment{}, false
		}
	}

	score, scoreOK := coerceScore(firstPresent(fields, "score", "overall_score", "total_score", "skills_score"))
	feedback, _ := fields["feedback"].(string)
	if !scoreOK && feedback == "" {
		return domain.Judgment{}, false
	}
	if !scoreOK {
		score = 5.0
	}
	return domain.Judgment{
		Score:    domain.ClampScore(score),
		Feedback: strings.TrimSpace(feedback),
		Fields:   fields,
	}, true
}

// extractLabels parses the delimited "Score: / Feedback:" format.
func extractLabels(raw string) (domain.Judgment, bool) {
	sections := splitSections(raw)
	if len(sections) == 0 {
		return domain.Judgment{}, false
	}

	scoreText, hasScore := sections["Score:"]
	if !hasScore {
		return domain.Judgment{}, false
	}
	score, ok := parseScoreToken(scoreText)
	if !ok {
		return domain.Judgment{}, false
	}

	feedback := sections["Feedback:"]
	if feedback == "" {
		feedback = sections["Recommendation:"]
	}
	if feedback == "" {
		// Score with no feedback marker: the rest of the text stands in.
		if idx := strings.Index(raw, "Score:"); idx >= 0 {
			if nl := strings.IndexByte(raw[idx:], '\n'); nl >= 0 {
				feedback = strings.TrimSpace(raw[idx+nl:])
			}
		}
	}

	fields := make(map[string]any)
	for _, marker := range []string{"Strengths:", "Weaknesses:", "Suggestions:", "Recommendation:", "Analysis:"} {
		if text, ok := sections[marker]; ok && text != "" {
			key := strings.ToLower(strings.TrimSuffix(marker, ":"))
			fields[key] = text
		}
	}
	if len(fields) == 0 {
		fields = nil
	}

	return domain.Judgment{
		Score:    domain.ClampScore(score),
		Feedback: feedback,
		Fields:   fields,
	}, true
}

// extractBullets collects bullet lines under list headers when there is no
// score anywhere; they become suggestions on a neutral judgment.
func extractBullets(raw string) (domain.Judgment, bool) {
	var bullets []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"- ", "* ", "• "} {
			if strings.HasPrefix(line, prefix) {
				item := strings.TrimSpace(strings.TrimPrefix(line, prefix))
				if item != "" {
					bullets = append(bullets, item)
				}
				break
			}
		}
	}
	if len(bullets) == 0 {
		return domain.Judgment{}, false
	}
	return domain.Judgment{
		Score:    5.0,
		Feedback: strings.Join(bullets, " "),
		Fields:   map[string]any{"suggestions": bullets},
	}, true
}

func stripMarkdownFences(s string) string {
	if m := markdownFenceRe.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// sliceJSONObject returns the first brace-matched object in s, or "".
func sliceJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// sliceJSONArray returns the outermost bracketed array in s, or "".
func sliceJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// splitSections maps each known marker to the text that follows it, bounded
// by the next known marker.
func splitSections(raw string) map[string]string {
	type hit struct {
		marker string
		pos    int
	}
	var hits []hit
	for _, m := range sectionMarkers {
		if pos := strings.Index(raw, m); pos >= 0 {
			hits = append(hits, hit{marker: m, pos: pos})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	// order by position
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	sections := make(map[string]string, len(hits))
	for i, h := range hits {
		start := h.pos + len(h.marker)
		end := len(raw)
		if i+1 < len(hits) {
			end = hits[i+1].pos
		}
		sections[h.marker] = strings.TrimSpace(raw[start:end])
	}
	return sections
}

// parseScoreToken reads the first numeric token, stripping a trailing
// "/10" denominator and punctuation. Non-numeric tokens degrade.
func parseScoreToken(text string) (float64, bool) {
	fieldsText := strings.Fields(text)
	if len(fieldsText) == 0 {
		return 0, false
	}
	token := fieldsText[0]
	if i := strings.IndexByte(token, '/'); i >= 0 {
		token = token[:i]
	}
	token = strings.Trim(token, "*[]():,")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstPresent(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v
		}
	}
	return nil
}

// coerceScore accepts numbers and numeric strings, including "8/10".
func coerceScore(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseScoreToken(t)
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}
