package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
	"visioncheck/ports"
)

// Provider is one weighted member of an ensemble.
type Provider struct {
	Name      string
	Weight    float64
	Generator ports.ReportGenerator
}

// Ensemble fans a request out to several providers and merges the
// successful answers into one report. Any single success is enough;
// only total failure surfaces as a report-generation error.
type Ensemble struct {
	providers []Provider
	log       *zap.Logger
	now       func() time.Time
}

// NewEnsemble creates a weighted ensemble generator.
func NewEnsemble(providers []Provider, log *zap.Logger) (*Ensemble, error) {
	if len(providers) == 0 {
		return nil, core.ErrNoProviders
	}
	return &Ensemble{providers: providers, log: log, now: time.Now}, nil
}

var _ ports.ReportGenerator = (*Ensemble)(nil)

type providerOutcome struct {
	provider Provider
	report   *vision.Report
	err      error
	elapsed  time.Duration
}

// Generate queries every provider concurrently and merges the results.
func (e *Ensemble) Generate(ctx context.Context, req ports.ReportRequest) (*vision.Report, error) {
	started := e.now()
	outcomes := make([]providerOutcome, len(e.providers))

	var g errgroup.Group
	for i, p := range e.providers {
		g.Go(func() error {
			callStart := time.Now()
			report, err := p.Generator.Generate(ctx, req)
			outcomes[i] = providerOutcome{
				provider: p,
				report:   report,
				err:      err,
				elapsed:  time.Since(callStart),
			}
			// A failed provider must not cancel its siblings.
			return nil
		})
	}
	g.Wait()

	return e.merge(req, outcomes, started)
}

func (e *Ensemble) merge(req ports.ReportRequest, outcomes []providerOutcome, started time.Time) (*vision.Report, error) {
	var (
		successes []providerOutcome
		lastErr   error
	)
	for _, o := range outcomes {
		if o.err != nil {
			e.log.Warn("ensemble provider failed",
				zap.String("provider", o.provider.Name), zap.Error(o.err))
			lastErr = o.err
			continue
		}
		successes = append(successes, o)
	}
	if len(successes) == 0 {
		return nil, fmt.Errorf("%w (last: %v)", core.ErrAllProvidersDown, lastErr)
	}

	// The highest-weight success carries the narrative fields.
	primary := successes[0]
	for _, o := range successes[1:] {
		if o.provider.Weight > primary.provider.Weight {
			primary = o
		}
	}

	var confidenceSum, weightSum float64
	analyses := make(map[string]vision.Analysis, len(successes))
	for _, o := range successes {
		confidenceSum += o.report.Confidence * o.provider.Weight
		weightSum += o.provider.Weight
		analyses[o.provider.Name] = vision.Analysis{
			Provider:       o.provider.Name,
			Weight:         o.provider.Weight,
			Confidence:     o.report.Confidence,
			Assessment:     o.report.Summary,
			Severity:       o.report.Severity,
			ResponseTimeMs: o.elapsed.Milliseconds(),
		}
	}
	confidence := confidenceSum / weightSum

	status := vision.StatusNeedsReview
	if len(successes) == len(e.providers) && confidence >= 85 {
		status = vision.StatusReliable
	}

	finished := e.now()
	merged := &vision.Report{
		ID:                core.NewReportID(),
		TestType:          req.TestType,
		Timestamp:         finished.UTC().Format(time.RFC3339),
		TotalResponseTime: finished.Sub(started).Milliseconds(),
		Confidence:        confidence,
		Status:            status,
		Summary:           primary.report.Summary,
		Causes:            primary.report.Causes,
		Recommendations:   primary.report.Recommendations,
		Severity:          primary.report.Severity,
		Prediction:        primary.report.Prediction,
		Trend:             primary.report.Trend,
		Analyses:          analyses,
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("%w: merged report: %v", core.ErrInvalidReport, err)
	}
	return merged, nil
}
