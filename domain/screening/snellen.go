package screening

import (
	"fmt"
	"math"
	"strconv"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

// SnellenTotalQuestions is the fixed item count of an acuity run. The
// score bands below assume exactly this count.
const SnellenTotalQuestions = 20

// Rotations an optotype can be presented at, in degrees.
var snellenRotations = [4]int{0, 90, 180, 270}

// SnellenQuestion is one optotype presentation: a difficulty level, a
// computed glyph size, and the rotation the subject must identify.
type SnellenQuestion struct {
	Level    int `json:"level"`
	Size     int `json:"size"`
	Rotation int `json:"rotation"`
}

// SnellenEngine drives a 20-item rotating-optotype acuity run.
type SnellenEngine struct {
	rt        runtime
	questions []SnellenQuestion
	answers   map[int]bool
}

// NewSnellenEngine constructs an acuity engine.
func NewSnellenEngine(opts ...Option) *SnellenEngine {
	return &SnellenEngine{rt: newRuntime(opts)}
}

// Kind returns the engine's test type.
func (e *SnellenEngine) Kind() vision.TestType { return vision.TestSnellen }

// Start resets the run and generates the question sequence: one item
// per level 1..20 with a random rotation, then shuffled so levels are
// never presented in order.
func (e *SnellenEngine) Start() {
	e.rt.begin()
	e.answers = make(map[int]bool, SnellenTotalQuestions)

	e.questions = make([]SnellenQuestion, 0, SnellenTotalQuestions)
	for level := 1; level <= SnellenTotalQuestions; level++ {
		e.questions = append(e.questions, SnellenQuestion{
			Level:    level,
			Size:     glyphSize(level),
			Rotation: snellenRotations[e.rt.rng.Intn(len(snellenRotations))],
		})
	}
	shuffle(e.rt.rng, e.questions)
}

// Questions returns the presentation sequence of the current run.
func (e *SnellenEngine) Questions() []SnellenQuestion {
	out := make([]SnellenQuestion, len(e.questions))
	copy(out, e.questions)
	return out
}

// SubmitRotation records the subject's rotation for one question and
// reports whether it was correct, for immediate feedback.
func (e *SnellenEngine) SubmitRotation(questionIndex, rotation int) (bool, error) {
	if !e.rt.started {
		return false, core.ErrNotStarted
	}
	if questionIndex < 0 || questionIndex >= len(e.questions) {
		return false, fmt.Errorf("question index %d out of range", questionIndex)
	}
	correct := e.questions[questionIndex].Rotation == rotation
	e.answers[questionIndex] = correct
	return correct, nil
}

// Submit records an answer; Value must be the rotation in degrees.
func (e *SnellenEngine) Submit(a Answer) error {
	rotation, err := strconv.Atoi(a.Value)
	if err != nil {
		return fmt.Errorf("rotation %q is not a number: %w", a.Value, err)
	}
	_, err = e.SubmitRotation(a.Item, rotation)
	return err
}

// Completed reports whether every question has been answered.
func (e *SnellenEngine) Completed() bool {
	return e.rt.started && len(e.answers) >= len(e.questions)
}

// Result scores the run. Unanswered questions count as incorrect.
func (e *SnellenEngine) Result() (vision.TestResult, error) {
	if !e.rt.started {
		return nil, core.ErrNotStarted
	}

	correct := 0
	for _, ok := range e.answers {
		if ok {
			correct++
		}
	}

	date, duration := e.rt.stamp()
	return vision.SnellenResult{
		Score:          visionScore(correct),
		Accuracy:       int(math.Round(100 * float64(correct) / SnellenTotalQuestions)),
		CorrectAnswers: correct,
		TotalQuestions: SnellenTotalQuestions,
		Duration:       duration,
		Date:           date,
	}, nil
}

// glyphSize computes the optotype size for a level: monotonically
// non-increasing with a floor of 16.
func glyphSize(level int) int {
	size := 120 - level*5
	if size < 16 {
		return 16
	}
	return size
}

// visionScore maps a correct count out of 20 to a Snellen fraction.
// Thresholds checked in descending order, first match wins.
func visionScore(correct int) vision.VisionScore {
	switch {
	case correct >= 18:
		return vision.Score2020
	case correct >= 14:
		return vision.Score2030
	case correct >= 10:
		return vision.Score2040
	case correct >= 6:
		return vision.Score2060
	default:
		return vision.Score20100
	}
}
