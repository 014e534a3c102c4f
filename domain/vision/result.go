package vision

import "fmt"

// TestResult is implemented by every per-test result value. A result is
// immutable once produced: Date is stamped at scoring time and Duration
// is whole seconds from start to completion, never negative.
type TestResult interface {
	Kind() TestType
	// When returns the ISO-8601 completion timestamp.
	When() string
	// Summary returns a one-line description of the outcome.
	Summary() string
}

// SnellenResult is the outcome of an acuity run over 20 optotypes.
type SnellenResult struct {
	Score          VisionScore `json:"score"`
	Accuracy       int         `json:"accuracy"`
	CorrectAnswers int         `json:"correctAnswers"`
	TotalQuestions int         `json:"totalQuestions"`
	Duration       int         `json:"duration"`
	Date           string      `json:"date"`
}

func (r SnellenResult) Kind() TestType { return TestSnellen }
func (r SnellenResult) When() string   { return r.Date }
func (r SnellenResult) Summary() string {
	return fmt.Sprintf("Visual acuity %s (%d/%d correct, %d%% accuracy)",
		r.Score, r.CorrectAnswers, r.TotalQuestions, r.Accuracy)
}

// ColorVisionType labels the color-deficiency band of a run.
type ColorVisionType string

const (
	ColorVisionNormal   ColorVisionType = "Normal"
	ColorVisionRedGreen ColorVisionType = "Red-Green Deficiency"
	ColorVisionTotal    ColorVisionType = "Possible Total Color Blindness"
)

// MissedPlate records one incorrectly answered plate for later display.
type MissedPlate struct {
	Plate         int    `json:"plate"`
	CorrectAnswer string `json:"correctAnswer"`
	UserAnswer    string `json:"userAnswer"`
}

// ColorBlindResult is the outcome of a 20-plate color-vision run.
type ColorBlindResult struct {
	Correct      int             `json:"correct"`
	Total        int             `json:"total"`
	Accuracy     int             `json:"accuracy"`
	MissedPlates []MissedPlate   `json:"missedPlates"`
	Type         ColorVisionType `json:"type"`
	Severity     Severity        `json:"severity"`
	Date         string          `json:"date"`
	Duration     int             `json:"duration"`
}

func (r ColorBlindResult) Kind() TestType { return TestColorBlind }
func (r ColorBlindResult) When() string   { return r.Date }
func (r ColorBlindResult) Summary() string {
	return fmt.Sprintf("%s (%d/%d plates, %d%% accuracy)", r.Type, r.Correct, r.Total, r.Accuracy)
}

// AstigmatismResult is the outcome of the single-shot fan-dial test.
type AstigmatismResult struct {
	HasAstigmatism bool     `json:"hasAstigmatism"`
	Severity       Severity `json:"severity"`
	Details        string   `json:"details"`
	Date           string   `json:"date"`
	Duration       int      `json:"duration"`
}

func (r AstigmatismResult) Kind() TestType { return TestAstigmatism }
func (r AstigmatismResult) When() string   { return r.Date }
func (r AstigmatismResult) Summary() string {
	if r.HasAstigmatism {
		return "Possible astigmatism detected"
	}
	return "No sign of astigmatism"
}

// AmslerGridResult is the outcome of the macular-grid test.
type AmslerGridResult struct {
	IssueDetected bool     `json:"issueDetected"`
	Severity      Severity `json:"severity"`
	Details       string   `json:"details"`
	Date          string   `json:"date"`
	Duration      int      `json:"duration"`
}

func (r AmslerGridResult) Kind() TestType { return TestAmsler }
func (r AmslerGridResult) When() string   { return r.Date }
func (r AmslerGridResult) Summary() string {
	if r.IssueDetected {
		return "Grid distortion detected"
	}
	return "No grid distortion detected"
}

// RefractiveTendency labels the duochrome outcome.
type RefractiveTendency string

const (
	RefractiveNormal    RefractiveTendency = "normal"
	RefractiveMyopic    RefractiveTendency = "myopic"
	RefractiveHyperopic RefractiveTendency = "hyperopic"
)

// DuochromeResult is the outcome of the single-shot red/green test.
type DuochromeResult struct {
	Result   RefractiveTendency `json:"result"`
	Severity Severity           `json:"severity"`
	Details  string             `json:"details"`
	Date     string             `json:"date"`
	Duration int                `json:"duration"`
}

func (r DuochromeResult) Kind() TestType { return TestDuochrome }
func (r DuochromeResult) When() string   { return r.Date }
func (r DuochromeResult) Summary() string {
	switch r.Result {
	case RefractiveMyopic:
		return "Red side clearer, possible myopic tendency"
	case RefractiveHyperopic:
		return "Green side clearer, possible hyperopic tendency"
	default:
		return "Both sides equally sharp"
	}
}
