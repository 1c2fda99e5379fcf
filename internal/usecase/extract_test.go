package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	j, layer := Extract(`{"score": 8.5, "feedback": "Strong answer with examples."}`)
	assert.Equal(t, LayerJSON, layer)
	assert.InDelta(t, 8.5, j.Score, 0.001)
	assert.Equal(t, "Strong answer with examples.", j.Feedback)
}

func TestExtractJSONFenced(t *testing.T) {
	t.Parallel()

	raw := "Here is the result:\n```json\n{\"score\": 7, \"feedback\": \"Good.\", \"analysis\": \"Covers basics.\"}\n```"
	j, layer := Extract(raw)
	assert.Equal(t, LayerJSON, layer)
	assert.InDelta(t, 7, j.Score, 0.001)
	assert.Equal(t, "Covers basics.", j.Fields["analysis"])
}

func TestExtractJSONTrailingComma(t *testing.T) {
	t.Parallel()

	j, layer := Extract(`{"score": 6, "feedback": "Fine.",}`)
	assert.Equal(t, LayerJSON, layer)
	assert.InDelta(t, 6, j.Score, 0.001)
}

func TestExtractJSONClampsScore(t *testing.T) {
	t.Parallel()

	j, _ := Extract(`{"score": 42, "feedback": "Way too enthusiastic."}`)
	assert.InDelta(t, 10, j.Score, 0.001)

	j, _ = Extract(`{"score": -3, "feedback": "Harsh."}`)
	assert.InDelta(t, 0, j.Score, 0.001)
}

func TestExtractJSONStringScore(t *testing.T) {
	t.Parallel()

	j, layer := Extract(`{"score": "8/10", "feedback": "Solid."}`)
	assert.Equal(t, LayerJSON, layer)
	assert.InDelta(t, 8, j.Score, 0.001)
}

func TestExtractLabels(t *testing.T) {
	t.Parallel()

	j, layer := Extract("Score: 7/10\nFeedback:\nGreat job")
	assert.Equal(t, LayerLabels, layer)
	assert.InDelta(t, 7, j.Score, 0.001)
	assert.Equal(t, "Great job", j.Feedback)
}

func TestExtractLabelsSections(t *testing.T) {
	t.Parallel()

	raw := `Score: 6.5
Feedback: Decent coverage of the topic.
Strengths: Clear structure.
Weaknesses: Missing error handling discussion.`
	j, layer := Extract(raw)
	require.Equal(t, LayerLabels, layer)
	assert.InDelta(t, 6.5, j.Score, 0.001)
	assert.Equal(t, "Decent coverage of the topic.", j.Feedback)
	assert.Equal(t, "Clear structure.", j.Fields["strengths"])
	assert.Equal(t, "Missing error handling discussion.", j.Fields["weaknesses"])
}

func TestExtractLabelsRecommendationAsFeedback(t *testing.T) {
	t.Parallel()

	j, layer := Extract("Score: 9\nRecommendation: Hire for the senior track.")
	assert.Equal(t, LayerLabels, layer)
	assert.InDelta(t, 9, j.Score, 0.001)
	assert.Equal(t, "Hire for the senior track.", j.Feedback)
}

func TestExtractBullets(t *testing.T) {
	t.Parallel()

	raw := "Some thoughts on the answer:\n- Add concrete examples\n- Mention trade-offs\n* Keep answers shorter"
	j, layer := Extract(raw)
	assert.Equal(t, LayerBullets, layer)
	assert.InDelta(t, 5.0, j.Score, 0.001)
	suggestions, ok := j.Fields["suggestions"].([]string)
	require.True(t, ok)
	assert.Len(t, suggestions, 3)
}

func TestExtractNeutral(t *testing.T) {
	t.Parallel()

	j, layer := Extract("I cannot really evaluate this without more context.")
	assert.Equal(t, LayerNeutral, layer)
	assert.InDelta(t, 5.0, j.Score, 0.001)
	assert.Equal(t, "I cannot really evaluate this without more context.", j.Feedback)
}

func TestExtractNeverOutOfRange(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"score": 1000}`,
		`{"score": -1000, "feedback": "x"}`,
		"Score: 99/10\nFeedback: overflow",
		"random text without structure",
		"",
	}
	for _, in := range inputs {
		j, _ := Extract(in)
		assert.GreaterOrEqual(t, j.Score, 0.0, "input %q", in)
		assert.LessOrEqual(t, j.Score, 10.0, "input %q", in)
	}
}

func TestParseScoreToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"7/10", 7, true},
		{"8.5", 8.5, true},
		{"**9**", 9, true},
		{"(6):", 6, true},
		{"excellent", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseScoreToken(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 0.001, "input %q", tc.in)
		}
	}
}

func TestSliceJSONObjectNested(t *testing.T) {
	t.Parallel()

	s := `prefix {"a": {"b": "with } brace"}, "c": 1} suffix`
	assert.Equal(t, `{"a": {"b": "with } brace"}, "c": 1}`, sliceJSONObject(s))
}
