package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
	"visioncheck/ports"
)

// reportSchema forces structured output from the Gemini API. It
// mirrors the payload contract parsePayload enforces.
var reportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"confidence": {
			Type:        genai.TypeNumber,
			Description: "Confidence level of the analysis, from 0.85 to 0.98.",
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "A detailed, comprehensive assessment (100-150 words) of the vision status. Explain the meaning of the results in practical, easy-to-understand terms.",
		},
		"causes": {
			Type:        genai.TypeString,
			Description: "A brief analysis (30-50 words) of the most common potential causes for the vision status.",
		},
		"recommendations": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of 3-4 specific, actionable recommendations. The last recommendation MUST ALWAYS be to consult a professional ophthalmologist.",
		},
		"severity": {
			Type:        genai.TypeString,
			Description: "Severity level: NONE, LOW, MEDIUM, or HIGH.",
		},
		"prediction": {
			Type:        genai.TypeString,
			Description: "A short prediction (20-40 words) of the condition if left untreated.",
		},
	},
	Required: []string{"confidence", "summary", "recommendations", "severity", "causes", "prediction"},
}

// GeminiConfig holds the Gemini provider settings.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Gemini generates reports through the Google Gemini API with a
// response schema, so the provider answers in the payload shape
// directly instead of free text.
type Gemini struct {
	client *genai.Client
	cfg    GeminiConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewGemini creates a Gemini report generator.
func NewGemini(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-pro"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg, log: log, now: time.Now}, nil
}

var _ ports.ReportGenerator = (*Gemini)(nil)

// Generate produces a validated report for one scored result.
func (g *Gemini) Generate(ctx context.Context, req ports.ReportRequest) (*vision.Report, error) {
	started := g.now()
	prompt := BuildPrompt(req)

	g.log.Debug("requesting gemini report",
		zap.String("testType", string(req.TestType)),
		zap.String("model", g.cfg.Model))

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.cfg.Temperature),
		MaxOutputTokens:  g.cfg.MaxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   reportSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", core.ErrReportFailed, err)
	}

	text := resp.Text()
	if text == "" {
		reason := "unknown"
		if len(resp.Candidates) > 0 {
			reason = string(resp.Candidates[0].FinishReason)
		}
		g.log.Warn("gemini returned no content", zap.String("finishReason", reason))
		return nil, fmt.Errorf("%w: gemini finish reason %s", core.ErrEmptyResponse, reason)
	}

	payload, err := parsePayload(text)
	if err != nil {
		g.log.Warn("gemini payload rejected", zap.Error(err))
		return nil, err
	}
	return buildReport(req.TestType, payload, started, g.now())
}
