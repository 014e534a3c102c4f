package screening

import (
	"fmt"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

// DuochromeSelection is the subject's single-shot choice of which
// background showed the sharper characters.
type DuochromeSelection string

const (
	DuochromeRed   DuochromeSelection = "red"
	DuochromeGreen DuochromeSelection = "green"
	DuochromeEqual DuochromeSelection = "equal"
)

// DuochromeEngine drives the single-shot red/green chromatic test.
type DuochromeEngine struct {
	rt        runtime
	selection DuochromeSelection
	selected  bool
}

// NewDuochromeEngine constructs a duochrome engine.
func NewDuochromeEngine(opts ...Option) *DuochromeEngine {
	return &DuochromeEngine{rt: newRuntime(opts)}
}

// Kind returns the engine's test type.
func (e *DuochromeEngine) Kind() vision.TestType { return vision.TestDuochrome }

// Start resets the run.
func (e *DuochromeEngine) Start() {
	e.rt.begin()
	e.selection = ""
	e.selected = false
}

// Select records the subject's choice.
func (e *DuochromeEngine) Select(sel DuochromeSelection) error {
	if !e.rt.started {
		return core.ErrNotStarted
	}
	switch sel {
	case DuochromeRed, DuochromeGreen, DuochromeEqual:
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownSelection, sel)
	}
	e.selection = sel
	e.selected = true
	return nil
}

// Submit records an answer; Value is the selection keyword.
func (e *DuochromeEngine) Submit(a Answer) error {
	return e.Select(DuochromeSelection(a.Value))
}

// Completed reports whether a selection has been made.
func (e *DuochromeEngine) Completed() bool {
	return e.rt.started && e.selected
}

// Result scores the selection. A run without a selection is treated as
// "equal" rather than failing.
func (e *DuochromeEngine) Result() (vision.TestResult, error) {
	if !e.rt.started {
		return nil, core.ErrNotStarted
	}

	result := vision.RefractiveNormal
	severity := vision.SeverityNone
	details := "Characters on both the red and green backgrounds appear equally sharp."

	if e.selected {
		switch e.selection {
		case DuochromeRed:
			result = vision.RefractiveMyopic
			severity = vision.SeverityLow
			details = "Characters on the red background appear sharper, which can indicate myopia or over-correction."
		case DuochromeGreen:
			result = vision.RefractiveHyperopic
			severity = vision.SeverityLow
			details = "Characters on the green background appear sharper, which can indicate hyperopia or under-correction."
		}
	}

	date, duration := e.rt.stamp()
	return vision.DuochromeResult{
		Result:   result,
		Severity: severity,
		Details:  details,
		Date:     date,
		Duration: duration,
	}, nil
}
