package audit

import (
	"log/slog"
	"slices"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/timeline"
)

// Result is everything one audit found.
type Result struct {
	Weeks          []WeekSummary  `json:"weeks"`
	Violations     []Violation    `json:"violations"`
	Directionality Directionality `json:"directionality"`
	Stability      Stability      `json:"stability"`
	Reversibility  Reversibility  `json:"reversibility"`
	FailureUsage   FailureUsage   `json:"failure_usage"`
	Traceability   Traceability   `json:"traceability"`
	Scores         Scores         `json:"scores"`
	RawScores      Scores         `json:"raw_scores"`
	Average        float64        `json:"average"`
	P0             int            `json:"p0"`
	P1             int            `json:"p1"`
	Verdict        Verdict        `json:"verdict"`
}

// Deltas returns every score adjustment the analyzers requested, in
// application order.
func (r *Result) Deltas() []ScoreDelta {
	return slices.Concat(r.FailureUsage.Deltas, r.Traceability.Deltas)
}

// Auditor runs the analyzers over a timeline.
type Auditor struct {
	profile profile.Profile
	logger  *slog.Logger
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// New creates an Auditor with the given thresholds.
func New(p profile.Profile, opts ...Option) *Auditor {
	a := &Auditor{profile: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Profile returns the thresholds in effect.
func (a *Auditor) Profile() profile.Profile {
	return a.profile
}

// Run audits the timeline. It reads the timeline only and always completes.
func (a *Auditor) Run(tl *timeline.Timeline) *Result {
	p := a.profile
	r := &Result{}

	r.Weeks = SummarizeWeeks(tl, p)

	r.Violations = CheckInvariants(tl, p)
	r.P0 = CountSeverity(r.Violations, SeverityP0)
	r.P1 = CountSeverity(r.Violations, SeverityP1)
	a.logger.Debug("invariants checked", "violations", len(r.Violations), "p0", r.P0, "p1", r.P1)

	r.Directionality = AnalyzeDirectionality(tl, p)
	a.logger.Debug("directionality analyzed",
		"transitions", len(r.Directionality.Transitions),
		"incoherent", r.Directionality.Incoherent,
		"skipped", r.Directionality.Skipped)

	r.Stability = AnalyzeStability(tl, p)
	a.logger.Debug("stability analyzed", "chaotic_weeks", len(r.Stability.Chaotic))

	r.Reversibility = AnalyzeReversibility(tl, p)
	a.logger.Debug("reversibility analyzed",
		"triggers", r.Reversibility.Triggers,
		"cycles", len(r.Reversibility.Cycles))

	r.FailureUsage = AnalyzeFailureUsage(tl, p)
	a.logger.Debug("failure usage analyzed",
		"rate", r.FailureUsage.Rate,
		"tier", r.FailureUsage.Tier,
		"deload_weeks", len(r.FailureUsage.DeloadWeeks))

	r.Traceability = AnalyzeTraceability(tl, p)
	a.logger.Debug("traceability analyzed",
		"average", r.Traceability.Average,
		"gaps", len(r.Traceability.Gaps))

	r.Scores, r.RawScores = Aggregate(r.Violations, r.FailureUsage.Deltas, r.Traceability.Deltas)
	r.Average = r.Scores.Average()
	r.Verdict = Decide(r.Scores, r.P0)

	a.logger.Info("audit complete",
		"weeks", tl.Len(),
		"scientific", r.Scores.Scientific,
		"clinical", r.Scores.Clinical,
		"robustness", r.Scores.Robustness,
		"verdict", string(r.Verdict))
	return r
}
