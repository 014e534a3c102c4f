package screening

import (
	"fmt"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

// AstigmatismSelection is the subject's single-shot choice of which
// line group on the fan dial looked darkest or sharpest.
type AstigmatismSelection string

const (
	AstigmatismNone       AstigmatismSelection = "none"
	AstigmatismVertical   AstigmatismSelection = "vertical"
	AstigmatismHorizontal AstigmatismSelection = "horizontal"
	AstigmatismOblique    AstigmatismSelection = "oblique"
)

// astigmatismDetails maps each selection to its explanatory detail.
var astigmatismDetails = map[AstigmatismSelection]string{
	AstigmatismNone:       "All lines appear equally clear and sharp.",
	AstigmatismVertical:   "Vertical lines (6-12 o'clock direction) appear darker or clearer than horizontal ones.",
	AstigmatismHorizontal: "Horizontal lines (3-9 o'clock direction) appear darker or clearer than vertical ones.",
	AstigmatismOblique:    "Oblique lines appear darker or clearer than the others.",
}

// AstigmatismEngine drives the single-shot fan-dial test.
type AstigmatismEngine struct {
	rt        runtime
	selection AstigmatismSelection
	selected  bool
}

// NewAstigmatismEngine constructs an astigmatism engine.
func NewAstigmatismEngine(opts ...Option) *AstigmatismEngine {
	return &AstigmatismEngine{rt: newRuntime(opts)}
}

// Kind returns the engine's test type.
func (e *AstigmatismEngine) Kind() vision.TestType { return vision.TestAstigmatism }

// Start resets the run.
func (e *AstigmatismEngine) Start() {
	e.rt.begin()
	e.selection = ""
	e.selected = false
}

// Select records the subject's choice.
func (e *AstigmatismEngine) Select(sel AstigmatismSelection) error {
	if !e.rt.started {
		return core.ErrNotStarted
	}
	if _, ok := astigmatismDetails[sel]; !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownSelection, sel)
	}
	e.selection = sel
	e.selected = true
	return nil
}

// Submit records an answer; Value is the selection keyword.
func (e *AstigmatismEngine) Submit(a Answer) error {
	return e.Select(AstigmatismSelection(a.Value))
}

// Completed reports whether a selection has been made.
func (e *AstigmatismEngine) Completed() bool {
	return e.rt.started && e.selected
}

// Result scores the selection. A run without a selection is treated as
// "none" rather than failing.
func (e *AstigmatismEngine) Result() (vision.TestResult, error) {
	if !e.rt.started {
		return nil, core.ErrNotStarted
	}

	sel := e.selection
	if !e.selected {
		sel = AstigmatismNone
	}

	has := sel != AstigmatismNone
	severity := vision.SeverityNone
	if has {
		// Flat severity for any detected issue; the test cannot grade it.
		severity = vision.SeverityMedium
	}

	date, duration := e.rt.stamp()
	return vision.AstigmatismResult{
		HasAstigmatism: has,
		Severity:       severity,
		Details:        astigmatismDetails[sel],
		Date:           date,
		Duration:       duration,
	}, nil
}
