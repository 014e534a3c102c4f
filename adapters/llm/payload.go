// Package llm contains the report-generator adapters: a Gemini client,
// an OpenAI-compatible chat client, and a weighted ensemble over both.
// Every adapter funnels provider output through the same fail-closed
// payload validation before a report leaves this package.
package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

// generatedPayload is the JSON shape providers are instructed to
// return. Confidence arrives as a 0-1 fraction.
type generatedPayload struct {
	Confidence      float64  `json:"confidence"`
	Summary         string   `json:"summary"`
	Causes          string   `json:"causes"`
	Recommendations []string `json:"recommendations"`
	Severity        string   `json:"severity"`
	Prediction      string   `json:"prediction"`
	Trend           string   `json:"trend"`
}

// parsePayload decodes and validates a provider response. It fails
// closed on any structural mismatch; the one permitted repair is
// appending the professional-referral directive when the model left it
// off a non-empty recommendation list.
func parsePayload(raw string) (*generatedPayload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, core.ErrEmptyResponse
	}

	var p generatedPayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidReport, err)
	}

	if strings.TrimSpace(p.Summary) == "" {
		return nil, fmt.Errorf("%w: empty summary", core.ErrInvalidReport)
	}
	if !vision.Severity(p.Severity).Valid() {
		return nil, fmt.Errorf("%w: severity %q", core.ErrInvalidReport, p.Severity)
	}
	if len(p.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: no recommendations", core.ErrInvalidReport)
	}
	p.Recommendations = vision.EnsureReferral(p.Recommendations)

	switch {
	case p.Confidence >= 0 && p.Confidence <= 1:
		// Fractional confidence, scaled to percent with two decimals.
		p.Confidence = math.Round(p.Confidence*100*100) / 100
	case p.Confidence > 1 && p.Confidence <= 100:
		// Some models answer in percent despite the schema; accept it.
	default:
		return nil, fmt.Errorf("%w: confidence %v", core.ErrInvalidReport, p.Confidence)
	}

	return &p, nil
}

// buildReport assembles a validated vision.Report from a parsed
// payload.
func buildReport(testType vision.TestType, p *generatedPayload, started, finished time.Time) (*vision.Report, error) {
	status := vision.StatusNeedsReview
	if p.Confidence >= 85 {
		status = vision.StatusReliable
	}

	report := &vision.Report{
		ID:                core.NewReportID(),
		TestType:          testType,
		Timestamp:         finished.UTC().Format(time.RFC3339),
		TotalResponseTime: finished.Sub(started).Milliseconds(),
		Confidence:        p.Confidence,
		Status:            status,
		Summary:           p.Summary,
		Causes:            p.Causes,
		Recommendations:   p.Recommendations,
		Severity:          vision.Severity(p.Severity),
		Prediction:        p.Prediction,
		Trend:             p.Trend,
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidReport, err)
	}
	return report, nil
}
