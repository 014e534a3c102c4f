package ports

import (
	"context"

	"visioncheck/domain/vision"
)

// ReportRequest is the logical call to the report generator: one scored
// result plus optional enrichment. History carries the most-recent few
// same-type records, newest first.
type ReportRequest struct {
	TestType vision.TestType
	Result   vision.TestResult
	Profile  *vision.UserProfile
	History  []vision.StoredTestResult
	Locale   string
}

// ReportGenerator is the external report boundary. Implementations are
// fallible, latency-bearing, and non-idempotent: repeated calls with
// the same request may legitimately return different text. Only the
// structural contract of vision.Report is guaranteed; callers get a
// validated report or an error, never a half-formed payload.
type ReportGenerator interface {
	Generate(ctx context.Context, req ReportRequest) (*vision.Report, error)
}
