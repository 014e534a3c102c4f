// Package vision holds the shared value types of the screening core:
// severity and test-type vocabulary, the per-test result shapes, the
// generated report, and the persisted history record.
package vision

import "fmt"

// Severity is the categorical clinical-urgency bucket assigned to a result.
// It is not ordered; treat it as a label, not a scale.
type Severity string

const (
	SeverityNone   Severity = "NONE"
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// TestType identifies one of the five screening protocols. The set is
// closed: each type maps to exactly one engine and one result shape.
type TestType string

const (
	TestSnellen     TestType = "snellen"
	TestColorBlind  TestType = "colorblind"
	TestAstigmatism TestType = "astigmatism"
	TestAmsler      TestType = "amsler"
	TestDuochrome   TestType = "duochrome"
)

// AllTestTypes lists every known test type.
func AllTestTypes() []TestType {
	return []TestType{TestSnellen, TestColorBlind, TestAstigmatism, TestAmsler, TestDuochrome}
}

// Valid reports whether t names a known test type.
func (t TestType) Valid() bool {
	switch t {
	case TestSnellen, TestColorBlind, TestAstigmatism, TestAmsler, TestDuochrome:
		return true
	}
	return false
}

// ParseTestType parses a string into a TestType.
func ParseTestType(s string) (TestType, error) {
	t := TestType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown test type %q", s)
	}
	return t, nil
}

// VisionScore is the Snellen fraction assigned to an acuity run.
type VisionScore string

const (
	Score2020  VisionScore = "20/20"
	Score2030  VisionScore = "20/30"
	Score2040  VisionScore = "20/40"
	Score2060  VisionScore = "20/60"
	Score20100 VisionScore = "20/100"
)

// UserProfile is optional context forwarded to the report generator as
// enrichment. The core never stores or interprets it.
type UserProfile struct {
	Name  string `json:"name"`
	Age   string `json:"age"`
	Phone string `json:"phone"`
}
