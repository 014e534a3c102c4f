package screening

import (
	"errors"
	"strings"
	"testing"
	"time"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

func TestAstigmatismSelections(t *testing.T) {
	tests := []struct {
		selection    AstigmatismSelection
		wantDetected bool
		wantSeverity vision.Severity
	}{
		{AstigmatismNone, false, vision.SeverityNone},
		{AstigmatismVertical, true, vision.SeverityMedium},
		{AstigmatismHorizontal, true, vision.SeverityMedium},
		{AstigmatismOblique, true, vision.SeverityMedium},
	}

	for _, test := range tests {
		e := NewAstigmatismEngine()
		e.Start()
		if err := e.Select(test.selection); err != nil {
			t.Fatalf("%s: %v", test.selection, err)
		}
		if !e.Completed() {
			t.Errorf("%s: run not complete after selection", test.selection)
		}

		result, err := e.Result()
		if err != nil {
			t.Fatal(err)
		}
		r := result.(vision.AstigmatismResult)
		if r.HasAstigmatism != test.wantDetected || r.Severity != test.wantSeverity {
			t.Errorf("%s: got detected=%v severity=%s", test.selection, r.HasAstigmatism, r.Severity)
		}
		if r.Details == "" {
			t.Errorf("%s: empty detail string", test.selection)
		}
	}
}

func TestAstigmatismDetailsAreSelectionSpecific(t *testing.T) {
	seen := make(map[string]AstigmatismSelection)
	for _, sel := range []AstigmatismSelection{AstigmatismNone, AstigmatismVertical, AstigmatismHorizontal, AstigmatismOblique} {
		e := NewAstigmatismEngine()
		e.Start()
		if err := e.Select(sel); err != nil {
			t.Fatal(err)
		}
		result, _ := e.Result()
		details := result.(vision.AstigmatismResult).Details
		if prev, dup := seen[details]; dup {
			t.Errorf("Selections %s and %s share detail string %q", prev, sel, details)
		}
		seen[details] = sel
	}
}

func TestAstigmatismLeniency(t *testing.T) {
	e := NewAstigmatismEngine()
	e.Start()
	if err := e.Select("diagonal-ish"); !errors.Is(err, core.ErrUnknownSelection) {
		t.Errorf("Expected ErrUnknownSelection, got %v", err)
	}

	// No selection at all scores as "none" rather than failing.
	result, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	r := result.(vision.AstigmatismResult)
	if r.HasAstigmatism || r.Severity != vision.SeverityNone {
		t.Errorf("Missing selection should score as none, got %+v", r)
	}
}

func TestDuochromeSelections(t *testing.T) {
	tests := []struct {
		selection    DuochromeSelection
		wantResult   vision.RefractiveTendency
		wantSeverity vision.Severity
	}{
		{DuochromeRed, vision.RefractiveMyopic, vision.SeverityLow},
		{DuochromeGreen, vision.RefractiveHyperopic, vision.SeverityLow},
		{DuochromeEqual, vision.RefractiveNormal, vision.SeverityNone},
	}

	for _, test := range tests {
		e := NewDuochromeEngine()
		e.Start()
		if err := e.Select(test.selection); err != nil {
			t.Fatal(err)
		}

		result, err := e.Result()
		if err != nil {
			t.Fatal(err)
		}
		r := result.(vision.DuochromeResult)
		if r.Result != test.wantResult || r.Severity != test.wantSeverity {
			t.Errorf("%s: got %s/%s, expected %s/%s",
				test.selection, r.Result, r.Severity, test.wantResult, test.wantSeverity)
		}
		if r.Details == "" {
			t.Errorf("%s: empty detail string", test.selection)
		}
	}
}

func TestDuochromeUnknownSelection(t *testing.T) {
	e := NewDuochromeEngine()
	e.Start()
	if err := e.Select("blue"); !errors.Is(err, core.ErrUnknownSelection) {
		t.Errorf("Expected ErrUnknownSelection, got %v", err)
	}
	if e.Completed() {
		t.Error("Rejected selection must not complete the run")
	}
}

func TestAmslerSeverityBands(t *testing.T) {
	tests := []struct {
		cells        int
		wantDetected bool
		wantSeverity vision.Severity
	}{
		{0, false, vision.SeverityNone},
		{1, true, vision.SeverityMedium},
		{3, true, vision.SeverityMedium},
		{5, true, vision.SeverityMedium},
		{6, true, vision.SeverityHigh},
		{12, true, vision.SeverityHigh},
	}

	for _, test := range tests {
		e := NewAmslerGridEngine()
		e.Start()
		for i := 0; i < test.cells; i++ {
			if err := e.MarkCell(i, i); err != nil {
				t.Fatal(err)
			}
		}

		result, err := e.Result()
		if err != nil {
			t.Fatal(err)
		}
		r := result.(vision.AmslerGridResult)
		if r.IssueDetected != test.wantDetected || r.Severity != test.wantSeverity {
			t.Errorf("cells=%d: got detected=%v severity=%s", test.cells, r.IssueDetected, r.Severity)
		}
	}
}

func TestAmslerMarkToggle(t *testing.T) {
	e := NewAmslerGridEngine()
	e.Start()

	if err := e.MarkCell(2, 3); err != nil {
		t.Fatal(err)
	}
	if err := e.MarkCell(2, 3); err != nil {
		t.Fatal(err)
	}
	if cells := e.MarkedCells(); len(cells) != 0 {
		t.Errorf("Marking a cell twice should unmark it, have %d cells", len(cells))
	}

	if err := e.MarkCell(25, 0); err == nil {
		t.Error("Expected error for cell outside the grid")
	}
}

func TestAmslerQuadrantNaming(t *testing.T) {
	tests := []struct {
		cell GridCell
		want string
	}{
		{GridCell{X: 0, Y: 0}, "top-left"},
		{GridCell{X: 19, Y: 0}, "top-right"},
		{GridCell{X: 0, Y: 19}, "bottom-left"},
		{GridCell{X: 19, Y: 19}, "bottom-right"},
		{GridCell{X: 9, Y: 9}, "top-left"},
		{GridCell{X: 10, Y: 10}, "bottom-right"},
	}
	for _, test := range tests {
		if got := test.cell.Quadrant(); got != test.want {
			t.Errorf("(%d,%d): expected %s, got %s", test.cell.X, test.cell.Y, test.want, got)
		}
	}
}

func TestAmslerDetailsListDeduplicatedAreas(t *testing.T) {
	e := NewAmslerGridEngine()
	e.Start()

	// Three cells in the same quadrant plus one in another.
	for _, c := range []GridCell{{1, 1}, {2, 2}, {3, 3}, {15, 15}} {
		if err := e.MarkCell(c.X, c.Y); err != nil {
			t.Fatal(err)
		}
	}

	result, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	r := result.(vision.AmslerGridResult)
	if !strings.Contains(r.Details, "top-left, bottom-right") {
		t.Errorf("Expected de-duplicated quadrants in marking order, got %q", r.Details)
	}
	if strings.Count(r.Details, "top-left") != 1 {
		t.Errorf("Quadrant listed more than once: %q", r.Details)
	}
}

func TestAmslerNoDistortion(t *testing.T) {
	e := NewAmslerGridEngine()
	e.Start()
	result, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	r := result.(vision.AmslerGridResult)
	if r.IssueDetected || r.Severity != vision.SeverityNone {
		t.Errorf("Expected clean result, got %+v", r)
	}
	if !strings.Contains(r.Details, "No distortion") {
		t.Errorf("Expected no-distortion detail, got %q", r.Details)
	}
}

func TestSingleShotDurationStamping(t *testing.T) {
	clock := newManualClock()
	e := NewDuochromeEngine(WithClock(clock.Now))
	e.Start()
	clock.Advance(12 * time.Second)
	if err := e.Select(DuochromeRed); err != nil {
		t.Fatal(err)
	}

	result, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	r := result.(vision.DuochromeResult)
	if r.Duration != 12 {
		t.Errorf("Expected duration 12s, got %d", r.Duration)
	}
	if r.Date == "" {
		t.Error("Expected date stamped at scoring time")
	}
}
