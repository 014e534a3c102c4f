package vision

import (
	"fmt"
	"strings"

	"visioncheck/domain/core"
)

// ReferralRecommendation is the fixed directive every report must end
// its recommendation list with. This is a content contract, not a UI
// nicety: generators repair or reject payloads that omit it.
const ReferralRecommendation = "Consult a professional ophthalmologist for an accurate diagnosis."

// ReportStatus flags how much trust the generation pipeline places in a report.
type ReportStatus string

const (
	StatusReliable    ReportStatus = "RELIABLE"
	StatusNeedsReview ReportStatus = "NEEDS_REVIEW"
)

// Analysis is one provider's contribution to an ensemble report.
type Analysis struct {
	Provider       string   `json:"provider"`
	Weight         float64  `json:"weight"`
	Confidence     float64  `json:"confidence"`
	Assessment     string   `json:"assessment"`
	Severity       Severity `json:"severity"`
	ResponseTimeMs int64    `json:"responseTime"`
}

// Report is the natural-language explanatory artifact attached to
// exactly one TestResult. Its text is non-deterministic; only the
// structural contract below is guaranteed.
type Report struct {
	ID                core.ReportID       `json:"id"`
	TestType          TestType            `json:"testType"`
	Timestamp         string              `json:"timestamp"`
	TotalResponseTime int64               `json:"totalResponseTime"`
	Confidence        float64             `json:"confidence"`
	Status            ReportStatus        `json:"status,omitempty"`
	Summary           string              `json:"summary"`
	Causes            string              `json:"causes,omitempty"`
	Recommendations   []string            `json:"recommendations"`
	Severity          Severity            `json:"severity"`
	Prediction        string              `json:"prediction,omitempty"`
	Trend             string              `json:"trend,omitempty"`
	Analyses          map[string]Analysis `json:"aiDetails,omitempty"`
}

// Validate checks the structural contract of a report: confidence in
// [0,100], non-empty summary, known severity and test type, and a
// non-empty recommendation list ending in the professional referral.
func (r *Report) Validate() error {
	if r.ID.String() == "" {
		return core.NewValidationError("id", "must not be empty")
	}
	if !r.TestType.Valid() {
		return core.NewValidationError("testType", fmt.Sprintf("unknown value %q", r.TestType))
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return core.NewValidationError("confidence", fmt.Sprintf("%.2f outside [0,100]", r.Confidence))
	}
	if strings.TrimSpace(r.Summary) == "" {
		return core.NewValidationError("summary", "must not be empty")
	}
	if !r.Severity.Valid() {
		return core.NewValidationError("severity", fmt.Sprintf("unknown value %q", r.Severity))
	}
	if r.TotalResponseTime < 0 {
		return core.NewValidationError("totalResponseTime", "must not be negative")
	}
	if len(r.Recommendations) == 0 {
		return core.NewValidationError("recommendations", "must not be empty")
	}
	if r.Recommendations[len(r.Recommendations)-1] != ReferralRecommendation {
		return core.NewValidationError("recommendations", "last entry must be the professional referral")
	}
	return nil
}

// EnsureReferral appends the fixed referral directive when the list
// does not already end with it. An empty list stays empty; that is a
// validation failure, not something repair should paper over.
func EnsureReferral(recommendations []string) []string {
	if len(recommendations) == 0 {
		return recommendations
	}
	if recommendations[len(recommendations)-1] == ReferralRecommendation {
		return recommendations
	}
	return append(recommendations, ReferralRecommendation)
}
