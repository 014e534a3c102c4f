package screening

import (
	"math"
	"strings"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

// ColorBlindRunPlates is how many plates a single run presents, drawn
// without repetition from the full catalogue.
const ColorBlindRunPlates = 20

// Plate is one color-vision test image with its canonical answer.
// "nothing" is a legitimate canonical answer for control plates.
type Plate struct {
	ID            int    `json:"id"`
	CorrectAnswer string `json:"correctAnswer"`
}

// plateCatalogue is the fixed 30-plate set runs are sampled from.
var plateCatalogue = []Plate{
	{1, "12"}, {2, "8"},
	{3, "29"}, {4, "5"},
	{5, "3"}, {6, "15"},
	{7, "74"}, {8, "6"},
	{9, "45"}, {10, "7"},
	{11, "16"}, {12, "73"},
	{13, "2"}, {14, "97"},
	{15, "42"}, {16, "35"},
	{17, "96"}, {18, "5"},
	{19, "nothing"}, {20, "nothing"},
	{21, "26"}, {22, "45"},
	{23, "nothing"}, {24, "nothing"},
	{25, "56"}, {26, "25"},
	{27, "nothing"}, {28, "6"},
	{29, "nothing"}, {30, "8"},
}

// PlateCatalogue returns a copy of the full plate set.
func PlateCatalogue() []Plate {
	out := make([]Plate, len(plateCatalogue))
	copy(out, plateCatalogue)
	return out
}

// ColorBlindEngine drives a 20-plate color-deficiency run.
type ColorBlindEngine struct {
	rt        runtime
	runPlates []Plate
	answers   map[int]string
}

// NewColorBlindEngine constructs a color-vision engine.
func NewColorBlindEngine(opts ...Option) *ColorBlindEngine {
	return &ColorBlindEngine{rt: newRuntime(opts)}
}

// Kind returns the engine's test type.
func (e *ColorBlindEngine) Kind() vision.TestType { return vision.TestColorBlind }

// Start resets the run and samples 20 distinct plates by shuffling the
// catalogue and truncating.
func (e *ColorBlindEngine) Start() {
	e.rt.begin()
	e.answers = make(map[int]string, ColorBlindRunPlates)

	deck := PlateCatalogue()
	shuffle(e.rt.rng, deck)
	e.runPlates = deck[:ColorBlindRunPlates]
}

// Plates returns the plates of the current run in presentation order.
func (e *ColorBlindEngine) Plates() []Plate {
	out := make([]Plate, len(e.runPlates))
	copy(out, e.runPlates)
	return out
}

// SubmitReading records the subject's reading of one plate. Readings
// are trimmed and lowercased before comparison.
func (e *ColorBlindEngine) SubmitReading(plateID int, reading string) error {
	if !e.rt.started {
		return core.ErrNotStarted
	}
	e.answers[plateID] = strings.ToLower(strings.TrimSpace(reading))
	return nil
}

// Submit records an answer; Item is the plate id, Value the reading.
func (e *ColorBlindEngine) Submit(a Answer) error {
	return e.SubmitReading(a.Item, a.Value)
}

// Completed reports whether every plate in the run has a reading.
func (e *ColorBlindEngine) Completed() bool {
	if !e.rt.started {
		return false
	}
	for _, p := range e.runPlates {
		if _, ok := e.answers[p.ID]; !ok {
			return false
		}
	}
	return true
}

// Result scores the run. Plates without a reading count as missed with
// an empty submitted answer.
func (e *ColorBlindEngine) Result() (vision.TestResult, error) {
	if !e.rt.started {
		return nil, core.ErrNotStarted
	}

	total := len(e.runPlates)
	correct := 0
	missed := make([]vision.MissedPlate, 0)
	for _, p := range e.runPlates {
		reading := e.answers[p.ID]
		if reading == p.CorrectAnswer {
			correct++
			continue
		}
		missed = append(missed, vision.MissedPlate{
			Plate:         p.ID,
			CorrectAnswer: p.CorrectAnswer,
			UserAnswer:    reading,
		})
	}

	severity, kind := colorVisionBand(correct)
	date, duration := e.rt.stamp()
	return vision.ColorBlindResult{
		Correct:      correct,
		Total:        total,
		Accuracy:     int(math.Round(100 * float64(correct) / float64(total))),
		MissedPlates: missed,
		Type:         kind,
		Severity:     severity,
		Date:         date,
		Duration:     duration,
	}, nil
}

// colorVisionBand maps a correct count out of 20 to severity and
// deficiency type. Thresholds checked in descending order.
func colorVisionBand(correct int) (vision.Severity, vision.ColorVisionType) {
	switch {
	case correct >= 18:
		return vision.SeverityNone, vision.ColorVisionNormal
	case correct >= 14:
		return vision.SeverityLow, vision.ColorVisionRedGreen
	case correct >= 10:
		return vision.SeverityMedium, vision.ColorVisionRedGreen
	default:
		return vision.SeverityHigh, vision.ColorVisionTotal
	}
}
