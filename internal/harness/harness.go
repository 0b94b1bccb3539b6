package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/testutil"
	"github.com/roach88/trainaudit/internal/timeline"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the auditor. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run audits the scenario's weeks and evaluates its assertions.
//
// Execution flow:
// 1. Resolve the profile (defaults unified with the scenario's overrides)
// 2. Render each week to a snapshot document and parse it
// 3. Build the timeline and run the audit
// 4. Evaluate assertions against the audit result
//
// The returned error covers scenarios that cannot run; failed assertions are
// reported in the Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	res, err := h.audit(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult(res)
	for _, msg := range EvaluateAssertions(res, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"failures", len(result.Errors),
	)
	return result, nil
}

func (h *Harness) audit(scenario *Scenario) (*audit.Result, error) {
	p, err := profile.Parse([]byte(scenario.Profile), scenario.Name+".profile.cue")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	records, err := testutil.BuildRecords(p.BlockScope, scenario.Weeks...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build weeks: %w", scenario.Name, err)
	}

	tl, err := timeline.New(records)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	return audit.New(p, audit.WithLogger(h.logger)).Run(tl), nil
}
