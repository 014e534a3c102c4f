// Package trend summarizes a subject's recent same-type history into
// the numeric context handed to the report generator.
package trend

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"visioncheck/domain/vision"
)

// Direction labels the slope of the accuracy series.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionStable    Direction = "stable"
	DirectionDeclining Direction = "declining"
)

// slopeEpsilon: accuracy-points-per-run below which the series counts
// as stable.
const slopeEpsilon = 1.0

// Summary condenses an accuracy series.
type Summary struct {
	Samples      int
	MeanAccuracy float64
	StdDev       float64
	Slope        float64
	Direction    Direction
}

// Describe renders the summary for inclusion in a prompt.
func (s Summary) Describe() string {
	return fmt.Sprintf("%d prior runs, mean accuracy %.1f%% (stddev %.1f), accuracy trend %s (%.2f points/run)",
		s.Samples, s.MeanAccuracy, s.StdDev, s.Direction, s.Slope)
}

// Summarize extracts the accuracy series from stored records (newest
// first, as the history store returns them) and fits its direction.
// It reports false when fewer than two records carry an accuracy.
func Summarize(records []vision.StoredTestResult) (Summary, bool) {
	series := accuracySeries(records)
	if len(series) < 2 {
		return Summary{}, false
	}

	mean, _ := stats.Mean(series)
	stdDev, _ := stats.StandardDeviation(series)

	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, series, nil, false)

	dir := DirectionStable
	switch {
	case slope > slopeEpsilon:
		dir = DirectionImproving
	case slope < -slopeEpsilon:
		dir = DirectionDeclining
	}

	return Summary{
		Samples:      len(series),
		MeanAccuracy: mean,
		StdDev:       stdDev,
		Slope:        slope,
		Direction:    dir,
	}, true
}

// accuracySeries returns accuracies in chronological order (records
// arrive newest first). Only acuity and color-vision results carry an
// accuracy; other kinds contribute nothing.
func accuracySeries(records []vision.StoredTestResult) []float64 {
	series := make([]float64, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		switch r := records[i].Result.(type) {
		case vision.SnellenResult:
			series = append(series, float64(r.Accuracy))
		case vision.ColorBlindResult:
			series = append(series, float64(r.Accuracy))
		}
	}
	return series
}
