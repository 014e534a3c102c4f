package screening

import (
	"fmt"
	"strings"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

// AmslerGridSize is the cell count per axis of the presented grid.
const AmslerGridSize = 20

// amslerHighThreshold: more than this many distinct distorted cells
// escalates severity to HIGH.
const amslerHighThreshold = 5

// GridCell addresses one cell of the Amsler grid.
type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Quadrant names the quadrant a cell falls in by comparing each axis
// to the grid midpoint.
func (c GridCell) Quadrant() string {
	half := AmslerGridSize / 2
	vert := "top"
	if c.Y >= half {
		vert = "bottom"
	}
	horiz := "left"
	if c.X >= half {
		horiz = "right"
	}
	return vert + "-" + horiz
}

// AmslerGridEngine drives the macular-grid test. The subject marks
// zero or more distorted cells during an interactive phase; marking a
// cell twice unmarks it.
type AmslerGridEngine struct {
	rt    runtime
	cells []GridCell
}

// NewAmslerGridEngine constructs a macular-grid engine.
func NewAmslerGridEngine(opts ...Option) *AmslerGridEngine {
	return &AmslerGridEngine{rt: newRuntime(opts)}
}

// Kind returns the engine's test type.
func (e *AmslerGridEngine) Kind() vision.TestType { return vision.TestAmsler }

// Start resets the run.
func (e *AmslerGridEngine) Start() {
	e.rt.begin()
	e.cells = nil
}

// MarkCell toggles a cell's distorted state.
func (e *AmslerGridEngine) MarkCell(x, y int) error {
	if !e.rt.started {
		return core.ErrNotStarted
	}
	if x < 0 || x >= AmslerGridSize || y < 0 || y >= AmslerGridSize {
		return fmt.Errorf("cell (%d,%d) outside the %dx%d grid", x, y, AmslerGridSize, AmslerGridSize)
	}
	for i, c := range e.cells {
		if c.X == x && c.Y == y {
			e.cells = append(e.cells[:i], e.cells[i+1:]...)
			return nil
		}
	}
	e.cells = append(e.cells, GridCell{X: x, Y: y})
	return nil
}

// Submit records an answer; Value is a cell as "x,y".
func (e *AmslerGridEngine) Submit(a Answer) error {
	var x, y int
	if _, err := fmt.Sscanf(a.Value, "%d,%d", &x, &y); err != nil {
		return fmt.Errorf("cell %q is not x,y: %w", a.Value, err)
	}
	return e.MarkCell(x, y)
}

// Completed always reports false: the interactive phase is open-ended
// and the subject ends it explicitly.
func (e *AmslerGridEngine) Completed() bool { return false }

// MarkedCells returns the currently marked cells in marking order.
func (e *AmslerGridEngine) MarkedCells() []GridCell {
	out := make([]GridCell, len(e.cells))
	copy(out, e.cells)
	return out
}

// Result scores the marks. Severity follows the distinct-cell count;
// the detail string lists the de-duplicated affected quadrants in
// marking order.
func (e *AmslerGridEngine) Result() (vision.TestResult, error) {
	if !e.rt.started {
		return nil, core.ErrNotStarted
	}

	count := len(e.cells)
	detected := count > 0

	severity := vision.SeverityNone
	details := "No distortion detected on the grid."
	if detected {
		severity = vision.SeverityMedium
		if count > amslerHighThreshold {
			severity = vision.SeverityHigh
		}
		details = fmt.Sprintf("Distortion detected in areas: %s.", strings.Join(e.affectedAreas(), ", "))
	}

	date, duration := e.rt.stamp()
	return vision.AmslerGridResult{
		IssueDetected: detected,
		Severity:      severity,
		Details:       details,
		Date:          date,
		Duration:      duration,
	}, nil
}

func (e *AmslerGridEngine) affectedAreas() []string {
	seen := make(map[string]bool, 4)
	areas := make([]string, 0, 4)
	for _, c := range e.cells {
		q := c.Quadrant()
		if !seen[q] {
			seen[q] = true
			areas = append(areas, q)
		}
	}
	return areas
}
