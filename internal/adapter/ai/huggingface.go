package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// HFClient calls the Hugging Face inference API. It serves double duty: as a
// text provider in the fallback chain and as the media classifier behind
// proctoring and zero-shot scoring.
type HFClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	textModel     string
	zeroShotModel string
	faceModel     string
	voiceModel    string
	objectModel   string
}

// NewHuggingFace builds the Hugging Face provider from configuration.
func NewHuggingFace(cfg config.Config) *HFClient {
	return &HFClient{
		httpClient:    defaultHTTPClient(),
		baseURL:       strings.TrimSuffix(cfg.HFBaseURL, "/"),
		apiKey:        cfg.HFAPIKey,
		textModel:     cfg.HFTextModel,
		zeroShotModel: cfg.HFZeroShotModel,
		faceModel:     cfg.HFFaceModel,
		voiceModel:    cfg.HFVoiceModel,
		objectModel:   cfg.HFObjectModel,
	}
}

func (c *HFClient) Name() string { return "huggingface" }

func (c *HFClient) Available() bool { return c.apiKey != "" }

type hfTextRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type hfGenerated struct {
	GeneratedText string `json:"generated_text"`
}

// Invoke runs text generation against the configured instruct model.
func (c *HFClient) Invoke(ctx context.Context, req domain.PromptRequest) (string, error) {
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n\n" + req.User
	}
	params := map[string]any{"return_full_text": false}
	if req.MaxTokens > 0 {
		params["max_new_tokens"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		params["temperature"] = req.Temperature
	}
	raw, err := c.post(ctx, c.textModel, "application/json", mustJSON(hfTextRequest{Inputs: prompt, Parameters: params}))
	if err != nil {
		return "", err
	}

	var outs []hfGenerated
	if err := json.Unmarshal(raw, &outs); err != nil || len(outs) == 0 {
		return "", fmt.Errorf("op=huggingface.Invoke: %w: %s", domain.ErrMalformedResponse, truncate(string(raw), 200))
	}
	return outs[0].GeneratedText, nil
}

type hfZeroShotRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
	} `json:"parameters"`
}

type hfZeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// ZeroShot classifies free text against candidate labels.
func (c *HFClient) ZeroShot(ctx context.Context, text string, candidates []string) ([]domain.Label, error) {
	req := hfZeroShotRequest{Inputs: text}
	req.Parameters.CandidateLabels = candidates
	raw, err := c.post(ctx, c.zeroShotModel, "application/json", mustJSON(req))
	if err != nil {
		return nil, err
	}

	var parsed hfZeroShotResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Labels) != len(parsed.Scores) {
		return nil, fmt.Errorf("op=huggingface.ZeroShot: %w: %s", domain.ErrMalformedResponse, truncate(string(raw), 200))
	}
	labels := make([]domain.Label, len(parsed.Labels))
	for i := range parsed.Labels {
		labels[i] = domain.Label{Name: parsed.Labels[i], Score: parsed.Scores[i]}
	}
	return labels, nil
}

// ClassifyImage runs face-expression classification on an image frame.
func (c *HFClient) ClassifyImage(ctx context.Context, data []byte) ([]domain.Label, error) {
	return c.classifyBinary(ctx, c.faceModel, data)
}

// ClassifyAudio runs emotion recognition on an audio clip.
func (c *HFClient) ClassifyAudio(ctx context.Context, data []byte) ([]domain.Label, error) {
	return c.classifyBinary(ctx, c.voiceModel, data)
}

type hfDetection struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Box   struct {
		XMin float64 `json:"xmin"`
		YMin float64 `json:"ymin"`
		XMax float64 `json:"xmax"`
		YMax float64 `json:"ymax"`
	} `json:"box"`
}

// DetectObjects runs object detection on an image frame.
func (c *HFClient) DetectObjects(ctx context.Context, data []byte) ([]domain.Detection, error) {
	contentType := mimetype.Detect(data).String()
	raw, err := c.post(ctx, c.objectModel, contentType, data)
	if err != nil {
		return nil, err
	}

	var parsed []hfDetection
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("op=huggingface.DetectObjects: %w: %s", domain.ErrMalformedResponse, truncate(string(raw), 200))
	}
	dets := make([]domain.Detection, len(parsed))
	for i, d := range parsed {
		dets[i] = domain.Detection{
			Label: d.Label,
			Score: d.Score,
			Box:   domain.Rect{XMin: d.Box.XMin, YMin: d.Box.YMin, XMax: d.Box.XMax, YMax: d.Box.YMax},
		}
	}
	return dets, nil
}

type hfLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HFClient) classifyBinary(ctx context.Context, model string, data []byte) ([]domain.Label, error) {
	contentType := mimetype.Detect(data).String()
	raw, err := c.post(ctx, model, contentType, data)
	if err != nil {
		return nil, err
	}

	var parsed []hfLabel
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("op=huggingface.classify: %w: %s", domain.ErrMalformedResponse, truncate(string(raw), 200))
	}
	labels := make([]domain.Label, len(parsed))
	for i, l := range parsed {
		labels[i] = domain.Label{Name: l.Label, Score: l.Score}
	}
	return labels, nil
}

func (c *HFClient) post(ctx context.Context, model, contentType string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("op=huggingface.post: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("op=huggingface.post: %w: %v", domain.ErrProviderCallFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw := readBody(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
		return raw, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("op=huggingface.post: %w: status=%d", domain.ErrProviderUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("op=huggingface.post: %w: model=%s status=%d body=%s", domain.ErrProviderCallFailed, model, resp.StatusCode, truncate(string(raw), 200))
	}
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
