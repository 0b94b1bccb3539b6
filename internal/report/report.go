// Package report renders audit results for people and for tools.
//
// A Report is plain data. Nothing here makes a decision that the audit did
// not already make; rendering only orders and formats.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/timeline"
)

// IDGenerator produces run identifiers. Implemented by UUIDv7Generator
// (production) and testutil.FixedRunIDGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Report is one rendered audit run.
type Report struct {
	RunID          string              `json:"run_id"`
	GeneratedAt    time.Time           `json:"generated_at"`
	SourceDir      string              `json:"source_dir,omitempty"`
	BlockScope     snapshot.BlockScope `json:"block_scope"`
	TimelineDigest string              `json:"timeline_digest"`
	WeekCount      int                 `json:"week_count"`
	Result         *audit.Result       `json:"result"`
	Narrative      string              `json:"narrative"`
}

// Option configures New.
type Option func(*builder)

type builder struct {
	ids    IDGenerator
	clock  Clock
	source string
	scope  snapshot.BlockScope
}

// WithIDGenerator sets the run ID source.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *builder) { b.ids = g }
}

// WithClock sets the clock used for GeneratedAt.
func WithClock(c Clock) Option {
	return func(b *builder) { b.clock = c }
}

// WithSource records the snapshot directory.
func WithSource(dir string) Option {
	return func(b *builder) { b.source = dir }
}

// WithBlockScope records the block scope the records were parsed with.
func WithBlockScope(scope snapshot.BlockScope) Option {
	return func(b *builder) { b.scope = scope }
}

// New assembles a report for an audited timeline.
func New(tl *timeline.Timeline, res *audit.Result, opts ...Option) *Report {
	b := builder{ids: UUIDv7Generator{}, clock: systemClock{}, scope: snapshot.BlockScopeAll}
	for _, opt := range opts {
		opt(&b)
	}
	return &Report{
		RunID:          b.ids.Generate(),
		GeneratedAt:    b.clock.Now().UTC(),
		SourceDir:      b.source,
		BlockScope:     b.scope,
		TimelineDigest: tl.Digest(),
		WeekCount:      tl.Len(),
		Result:         res,
		Narrative:      Narrative(res.Verdict),
	}
}

// Narrative is the closing paragraph for a verdict.
func Narrative(v audit.Verdict) string {
	switch v {
	case audit.VerdictCorrect:
		return "The engine behaves conservatively and stays scientifically aligned over time. " +
			"Progressions are gradual, failure training is selective, and fatigue signals are " +
			"met with timely reductions. The decision trace is complete and every decision is " +
			"defensible. Fit for continuous real use without additional supervision."
	case audit.VerdictUsable:
		return "The engine is mostly correct but shows minor inconsistencies. Progressions are " +
			"reasonable though occasionally excessive, and failure training is present without " +
			"dominating. Clinical monitoring is recommended during the first weeks of real use. " +
			"Usable with caution."
	default:
		return "The engine breaks critical scientific invariants. Excessive progressions after " +
			"high-fatigue signals, inappropriate use of training to failure, or missing protective " +
			"mechanisms were detected. Not fit for real use without major corrections."
	}
}
