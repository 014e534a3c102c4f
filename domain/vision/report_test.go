package vision

import (
	"testing"

	"visioncheck/domain/core"
)

func validReport() *Report {
	return &Report{
		ID:                core.NewReportID(),
		TestType:          TestSnellen,
		Timestamp:         "2026-01-15T10:30:00Z",
		TotalResponseTime: 1200,
		Confidence:        92.5,
		Summary:           "Acuity within the normal range.",
		Recommendations:   []string{"Follow the 20-20-20 rule.", ReferralRecommendation},
		Severity:          SeverityNone,
	}
}

func TestReportValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Report)
		expectError bool
	}{
		{
			name:        "valid report",
			mutate:      func(r *Report) {},
			expectError: false,
		},
		{
			name:        "empty id",
			mutate:      func(r *Report) { r.ID = "" },
			expectError: true,
		},
		{
			name:        "unknown test type",
			mutate:      func(r *Report) { r.TestType = "retina" },
			expectError: true,
		},
		{
			name:        "confidence above 100",
			mutate:      func(r *Report) { r.Confidence = 101 },
			expectError: true,
		},
		{
			name:        "negative confidence",
			mutate:      func(r *Report) { r.Confidence = -0.5 },
			expectError: true,
		},
		{
			name:        "blank summary",
			mutate:      func(r *Report) { r.Summary = "   " },
			expectError: true,
		},
		{
			name:        "unknown severity",
			mutate:      func(r *Report) { r.Severity = "CRITICAL" },
			expectError: true,
		},
		{
			name:        "negative response time",
			mutate:      func(r *Report) { r.TotalResponseTime = -1 },
			expectError: true,
		},
		{
			name:        "empty recommendations",
			mutate:      func(r *Report) { r.Recommendations = nil },
			expectError: true,
		},
		{
			name:        "missing referral tail",
			mutate:      func(r *Report) { r.Recommendations = []string{"Rest your eyes."} },
			expectError: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := validReport()
			test.mutate(r)
			err := r.Validate()
			if test.expectError && err == nil {
				t.Errorf("Expected validation error, got none")
			}
			if !test.expectError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestEnsureReferral(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		wantLen int
	}{
		{"appends when missing", []string{"Rest your eyes."}, 2},
		{"no-op when present", []string{"Rest your eyes.", ReferralRecommendation}, 2},
		{"empty stays empty", nil, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := EnsureReferral(test.in)
			if len(out) != test.wantLen {
				t.Fatalf("Expected %d recommendations, got %d", test.wantLen, len(out))
			}
			if test.wantLen > 0 && out[len(out)-1] != ReferralRecommendation {
				t.Errorf("Expected referral as last entry, got %q", out[len(out)-1])
			}
		})
	}
}

func TestParseTestType(t *testing.T) {
	for _, known := range AllTestTypes() {
		parsed, err := ParseTestType(string(known))
		if err != nil {
			t.Errorf("Unexpected error parsing %q: %v", known, err)
		}
		if parsed != known {
			t.Errorf("Expected %q, got %q", known, parsed)
		}
	}

	if _, err := ParseTestType("retina"); err == nil {
		t.Error("Expected error for unknown test type, got none")
	}
}
