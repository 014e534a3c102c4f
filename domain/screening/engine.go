// Package screening implements the five test scoring engines. Each
// engine owns one protocol's randomized item generation, answer
// collection, and deterministic scoring rule. Engines are independent
// of each other and share the same lifecycle: Start resets per-run
// state, Submit records answers leniently, Result is a pure function
// of the recorded answers.
package screening

import (
	"math"
	"math/rand"
	"time"

	"visioncheck/domain/vision"
)

// Answer is one unit of subject input. Item addresses the question or
// plate for multi-item tests and is ignored by single-shot tests;
// Value carries the response in the engine's own vocabulary.
type Answer struct {
	Item  int
	Value string
}

// Engine is the surface the orchestration layer drives. Typed engines
// expose richer methods alongside it for direct presentation use.
type Engine interface {
	Kind() vision.TestType
	// Start resets per-run state and stamps the run start time.
	Start()
	// Submit records one answer. Malformed input is rejected without
	// disturbing the run.
	Submit(Answer) error
	// Completed reports whether all required input has been gathered.
	// Open-ended tests (Amsler) never self-complete.
	Completed() bool
	// Result scores the accumulated answers and stamps date/duration.
	// It fails only when the run was never started.
	Result() (vision.TestResult, error)
}

// Option configures an engine at construction time.
type Option func(*runtime)

// WithRand injects a seeded random source for deterministic item generation.
func WithRand(rng *rand.Rand) Option {
	return func(rt *runtime) { rt.rng = rng }
}

// WithClock injects the time source used for date and duration stamping.
func WithClock(now func() time.Time) Option {
	return func(rt *runtime) { rt.now = now }
}

// runtime carries the injectable dependencies and per-run timing state
// common to every engine.
type runtime struct {
	rng     *rand.Rand
	now     func() time.Time
	started bool
	startAt time.Time
}

func newRuntime(opts []Option) runtime {
	rt := runtime{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&rt)
	}
	return rt
}

func (rt *runtime) begin() {
	rt.started = true
	rt.startAt = rt.now()
}

// stamp returns the completion date (ISO-8601) and the elapsed whole
// seconds since Start, never negative.
func (rt *runtime) stamp() (string, int) {
	done := rt.now()
	secs := int(math.Round(done.Sub(rt.startAt).Seconds()))
	if secs < 0 {
		secs = 0
	}
	return done.UTC().Format(time.RFC3339), secs
}

// shuffle performs an unbiased Fisher-Yates permutation in place.
func shuffle[T any](rng *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
