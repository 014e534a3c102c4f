package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

const goodPayload = `{
	"confidence": 0.92,
	"summary": "Acuity within the normal range.",
	"causes": "Screen fatigue is a common factor.",
	"recommendations": ["Follow the 20-20-20 rule.", "` + vision.ReferralRecommendation + `"],
	"severity": "LOW",
	"prediction": "Unlikely to worsen if habits improve."
}`

func TestParsePayloadAccepted(t *testing.T) {
	p, err := parsePayload(goodPayload)
	require.NoError(t, err)
	require.InDelta(t, 92.0, p.Confidence, 0.001)
	require.Equal(t, "LOW", p.Severity)
	require.Len(t, p.Recommendations, 2)
}

func TestParsePayloadFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty response", "   ", core.ErrEmptyResponse},
		{"not json", "Here is your report: all good!", core.ErrInvalidReport},
		{"json with prose prefix", "Sure! " + goodPayload, core.ErrInvalidReport},
		{"empty summary", `{"confidence":0.9,"summary":" ","recommendations":["x"],"severity":"LOW"}`, core.ErrInvalidReport},
		{"unknown severity", `{"confidence":0.9,"summary":"ok","recommendations":["x"],"severity":"SEVERE"}`, core.ErrInvalidReport},
		{"no recommendations", `{"confidence":0.9,"summary":"ok","recommendations":[],"severity":"LOW"}`, core.ErrInvalidReport},
		{"confidence out of range", `{"confidence":420,"summary":"ok","recommendations":["x"],"severity":"LOW"}`, core.ErrInvalidReport},
		{"negative confidence", `{"confidence":-0.2,"summary":"ok","recommendations":["x"],"severity":"LOW"}`, core.ErrInvalidReport},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parsePayload(test.raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, test.want), "expected %v, got %v", test.want, err)
		})
	}
}

func TestParsePayloadRepairsMissingReferral(t *testing.T) {
	p, err := parsePayload(`{
		"confidence": 0.9,
		"summary": "ok",
		"recommendations": ["Rest your eyes."],
		"severity": "MEDIUM"
	}`)
	require.NoError(t, err)
	require.Equal(t, vision.ReferralRecommendation, p.Recommendations[len(p.Recommendations)-1])
}

func TestParsePayloadAcceptsPercentConfidence(t *testing.T) {
	p, err := parsePayload(`{
		"confidence": 91.5,
		"summary": "ok",
		"recommendations": ["` + vision.ReferralRecommendation + `"],
		"severity": "NONE"
	}`)
	require.NoError(t, err)
	require.InDelta(t, 91.5, p.Confidence, 0.001)
}

func TestBuildReportStampsTiming(t *testing.T) {
	p, err := parsePayload(goodPayload)
	require.NoError(t, err)

	started := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	finished := started.Add(1200 * time.Millisecond)

	report, err := buildReport(vision.TestSnellen, p, started, finished)
	require.NoError(t, err)
	require.NoError(t, report.Validate())
	require.Equal(t, int64(1200), report.TotalResponseTime)
	require.Equal(t, vision.TestSnellen, report.TestType)
	require.Equal(t, vision.StatusReliable, report.Status)
	require.False(t, report.ID.String() == "")
}

func TestBuildReportLowConfidenceNeedsReview(t *testing.T) {
	p, err := parsePayload(`{
		"confidence": 0.6,
		"summary": "ok",
		"recommendations": ["` + vision.ReferralRecommendation + `"],
		"severity": "HIGH"
	}`)
	require.NoError(t, err)

	now := time.Now()
	report, err := buildReport(vision.TestAmsler, p, now, now)
	require.NoError(t, err)
	require.Equal(t, vision.StatusNeedsReview, report.Status)
}
