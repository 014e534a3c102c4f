package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"visioncheck/domain/core"
	"visioncheck/domain/screening"
	"visioncheck/domain/vision"
	"visioncheck/ports"
)

// SessionState is one phase of a screening run.
type SessionState string

const (
	StateStart   SessionState = "start"
	StateTesting SessionState = "testing"
	StateLoading SessionState = "loading"
	StateReport  SessionState = "report"
	StateFailed  SessionState = "failed"
)

// Session lifecycle errors.
var (
	ErrAlreadyBegun = errors.New("session already begun")
	ErrNotTesting   = errors.New("session is not collecting answers")
	ErrNoResult     = errors.New("session has no result yet")
)

// defaultRecentForReport is how many same-type prior results travel
// with the report request for trend context.
const defaultRecentForReport = 5

// defaultReportTimeout bounds the report-generator call so a hung
// provider cannot leave a session in loading forever.
const defaultReportTimeout = 60 * time.Second

// Session drives one screening run from instructions to a terminal
// report or failure. A redo is a fresh Session; no state is re-entered.
// Sessions are single-caller; the history store is the only shared
// component and locks internally.
type Session struct {
	id        core.SessionID
	engine    screening.Engine
	generator ports.ReportGenerator
	history   *HistoryStore
	log       *zap.Logger

	profile *vision.UserProfile
	locale  string
	timeout time.Duration
	recent  int

	state  SessionState
	result vision.TestResult
	report *vision.Report
	err    error
}

// SessionOption configures a session at construction time.
type SessionOption func(*Session)

// WithProfile attaches subject details for report personalization.
func WithProfile(p *vision.UserProfile) SessionOption {
	return func(s *Session) { s.profile = p }
}

// WithLocale sets the report language tag.
func WithLocale(locale string) SessionOption {
	return func(s *Session) { s.locale = locale }
}

// WithReportTimeout bounds the report-generator call.
func WithReportTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRecentForReport sets how many same-type prior results travel
// with the report request.
func WithRecentForReport(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.recent = n
		}
	}
}

// WithSessionLogger sets the session's logger.
func WithSessionLogger(log *zap.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession creates a run over one engine. Each run owns its engine
// instance; engines are never shared between sessions.
func NewSession(engine screening.Engine, generator ports.ReportGenerator, history *HistoryStore, opts ...SessionOption) *Session {
	s := &Session{
		id:        core.NewSessionID(),
		engine:    engine,
		generator: generator,
		history:   history,
		log:       zap.NewNop(),
		locale:    "en",
		timeout:   defaultReportTimeout,
		recent:    defaultRecentForReport,
		state:     StateStart,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the run's identifier.
func (s *Session) ID() core.SessionID { return s.id }

// State returns the current phase.
func (s *Session) State() SessionState { return s.state }

// Kind returns the test type this session runs.
func (s *Session) Kind() vision.TestType { return s.engine.Kind() }

// Begin starts the engine and moves to answer collection.
func (s *Session) Begin() error {
	if s.state != StateStart {
		return fmt.Errorf("%w: state %s", ErrAlreadyBegun, s.state)
	}
	s.engine.Start()
	s.state = StateTesting
	s.log.Info("screening started",
		zap.String("session", s.id.String()),
		zap.String("testType", string(s.engine.Kind())))
	return nil
}

// Submit records one answer. When the engine reports all required
// input gathered the session runs the scoring and report pipeline
// before returning. Open-ended tests never self-complete; their
// callers end the run with Complete.
func (s *Session) Submit(ctx context.Context, answer screening.Answer) error {
	if err := s.guardTesting(); err != nil {
		return err
	}
	if err := s.engine.Submit(answer); err != nil {
		return err
	}
	if s.engine.Completed() {
		s.finish(ctx)
	}
	return nil
}

// Complete ends answer collection explicitly and runs the scoring and
// report pipeline. Needed for open-ended tests; harmless but invalid
// for a session already past testing.
func (s *Session) Complete(ctx context.Context) error {
	if err := s.guardTesting(); err != nil {
		return err
	}
	s.finish(ctx)
	return nil
}

// guardTesting distinguishes a run that never started collecting from
// one that already ended.
func (s *Session) guardTesting() error {
	switch s.state {
	case StateTesting:
		return nil
	case StateReport, StateFailed:
		return fmt.Errorf("%w: state %s", core.ErrRunComplete, s.state)
	default:
		return fmt.Errorf("%w: state %s", ErrNotTesting, s.state)
	}
}

// Result returns the scored result. Available in both terminal states;
// report failure never discards a computed result.
func (s *Session) Result() (vision.TestResult, error) {
	if s.result == nil {
		return nil, ErrNoResult
	}
	return s.result, nil
}

// Report returns the generated report, nil until the session reaches
// the report state.
func (s *Session) Report() *vision.Report { return s.report }

// Err returns the failure that moved the session to failed, nil
// otherwise.
func (s *Session) Err() error { return s.err }

// finish scores the run and requests the report. Scoring always
// succeeds once a run has started; only report generation is fallible,
// and its failure is terminal for the session but not for the result.
func (s *Session) finish(ctx context.Context) {
	s.state = StateLoading

	result, err := s.engine.Result()
	if err != nil {
		// Unreachable after Begin, kept for the contract.
		s.fail(fmt.Errorf("score run: %w", err))
		return
	}
	s.result = result

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.generator.Generate(ctx, ports.ReportRequest{
		TestType: result.Kind(),
		Result:   result,
		Profile:  s.profile,
		History:  s.history.Recent(result.Kind(), s.recent),
		Locale:   s.locale,
	})
	if err != nil {
		s.fail(fmt.Errorf("%w: %v", core.ErrReportFailed, err))
		return
	}

	s.report = report
	s.history.Append(vision.NewStoredTestResult(result, report))
	s.state = StateReport
	s.log.Info("screening complete",
		zap.String("session", s.id.String()),
		zap.String("testType", string(result.Kind())),
		zap.Float64("confidence", report.Confidence))
}

func (s *Session) fail(err error) {
	s.err = err
	s.state = StateFailed
	s.log.Error("screening failed",
		zap.String("session", s.id.String()),
		zap.String("testType", string(s.engine.Kind())),
		zap.Error(err))
}
