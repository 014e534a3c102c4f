package vision

import (
	"encoding/json"
	"fmt"

	"visioncheck/domain/core"
)

// StoredTestResult is the persisted pairing of one result with its
// report. Records are self-describing through TestType so mixed test
// types coexist in a single history list.
type StoredTestResult struct {
	ID       core.ReportID `json:"id"`
	TestType TestType      `json:"testType"`
	Date     string        `json:"date"`
	Result   TestResult    `json:"resultData"`
	Report   *Report       `json:"report"`
}

// NewStoredTestResult pairs a result with its report. The record id is
// the report id and the date is the result's scoring date.
func NewStoredTestResult(result TestResult, report *Report) StoredTestResult {
	return StoredTestResult{
		ID:       report.ID,
		TestType: result.Kind(),
		Date:     result.When(),
		Result:   result,
		Report:   report,
	}
}

// storedEnvelope defers result decoding until the test type is known.
type storedEnvelope struct {
	ID       core.ReportID   `json:"id"`
	TestType TestType        `json:"testType"`
	Date     string          `json:"date"`
	Result   json.RawMessage `json:"resultData"`
	Report   *Report         `json:"report"`
}

// UnmarshalJSON decodes the polymorphic resultData field by switching
// on the record's test type.
func (s *StoredTestResult) UnmarshalJSON(data []byte) error {
	var env storedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	result, err := decodeResult(env.TestType, env.Result)
	if err != nil {
		return err
	}

	s.ID = env.ID
	s.TestType = env.TestType
	s.Date = env.Date
	s.Result = result
	s.Report = env.Report
	return nil
}

func decodeResult(t TestType, raw json.RawMessage) (TestResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("record has no result data")
	}
	switch t {
	case TestSnellen:
		var r SnellenResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode snellen result: %w", err)
		}
		return r, nil
	case TestColorBlind:
		var r ColorBlindResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode colorblind result: %w", err)
		}
		return r, nil
	case TestAstigmatism:
		var r AstigmatismResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode astigmatism result: %w", err)
		}
		return r, nil
	case TestAmsler:
		var r AmslerGridResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode amsler result: %w", err)
		}
		return r, nil
	case TestDuochrome:
		var r DuochromeResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode duochrome result: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownTestType, t)
	}
}
