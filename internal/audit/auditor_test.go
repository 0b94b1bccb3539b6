package audit

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trainaudit/internal/profile"
)

func newAuditor() *Auditor {
	return New(profile.Default(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestAuditor_DeloadWithFailureScenario(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 10), P("back", 10)).WithFeedback(9.0, 0.9),
		Week(2, P("chest", 6).Failing(), P("back", 6).Failing()).InPhase("deload"),
		Week(3, P("chest", 10), P("back", 10)),
	)

	r := newAuditor().Run(tl)

	want := []Violation{{
		Week:     2,
		Muscle:   NoMuscle,
		Rule:     RuleFailureInDeload,
		Severity: SeverityP0,
		Details:  "2 exercises allow failure during deload",
	}}
	if diff := cmp.Diff(want, r.Violations); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, r.P0)
	assert.Zero(t, r.P1)

	// 50 - 30 (P0) - 20 (dominant failure rate) - 30 (deload failure).
	assert.Equal(t, -30, r.RawScores.Scientific)
	assert.Equal(t, Scores{Scientific: 0, Clinical: 20, Robustness: 50}, r.Scores)
	assert.Equal(t, VerdictIncorrect, r.Verdict)
	assert.NotEqual(t, VerdictCorrect, r.Verdict)

	assert.Equal(t, []int{2}, r.FailureUsage.DeloadWeeks)
	assert.Len(t, r.Reversibility.Cycles, 1)
	assert.False(t, r.Reversibility.Gap)
	require.Len(t, r.Directionality.Transitions, 1)
	assert.True(t, r.Directionality.Transitions[0].Coherent)
	assert.Equal(t, 1, r.Directionality.Skipped)
	assert.Len(t, r.Weeks, 3)
	assert.Len(t, r.Deltas(), 2)
}

func TestAuditor_IdenticalWeeksWithoutFeedback(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 10), P("back", 12), P("quads", 8)),
		Week(2, P("chest", 10), P("back", 12), P("quads", 8)),
		Week(3, P("chest", 10), P("back", 12), P("quads", 8)),
		Week(4, P("chest", 10), P("back", 12), P("quads", 8)),
	)

	r := newAuditor().Run(tl)

	assert.Empty(t, r.Violations)
	assert.Empty(t, r.Directionality.Transitions)
	assert.Equal(t, 3, r.Directionality.Skipped)
	for _, v := range r.Stability.Variances {
		assert.Zero(t, v.Variance, v.Muscle)
	}
	assert.Empty(t, r.Stability.Chaotic)
	assert.Zero(t, r.Reversibility.Triggers)
	assert.True(t, r.Reversibility.Gap)

	// Only the conservative failure bonus moves a score.
	assert.Equal(t, Scores{Scientific: 70, Clinical: 50, Robustness: 50}, r.Scores)
	assert.InDelta(t, 170.0/3.0, r.Average, 1e-9)
	assert.Equal(t, VerdictIncorrect, r.Verdict)
}

func TestAuditor_CleanTimeline(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 10), P("back", 12)).WithFeedback(4.0, 0.95).WithExtraDecisions(30),
		Week(2, P("chest", 12), P("back", 14)).WithFeedback(8.5, 0.9).WithExtraDecisions(30),
		Week(3, P("chest", 8), P("back", 8)).InPhase("deload").WithExtraDecisions(30),
		Week(4, P("chest", 12), P("back", 14)).WithFeedback(5.0, 0.9).WithExtraDecisions(30),
	)

	r := newAuditor().Run(tl)

	assert.Empty(t, r.Violations)
	// Clinical has no bonuses, so a clean run tops out at the usable tier.
	assert.Equal(t, Scores{Scientific: 70, Clinical: 50, Robustness: 70}, r.Scores)
	assert.Equal(t, VerdictUsable, r.Verdict)
	assert.Len(t, r.Reversibility.Cycles, 1)
	assert.Zero(t, r.Directionality.Incoherent)
}

func TestAuditor_ProfileFlowsThrough(t *testing.T) {
	p := profile.Default()
	p.MinDecisions = 3

	tl := build(t, Week(1, P("chest", 10)), Week(2, P("chest", 10)))

	r := New(p, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).Run(tl)

	assert.True(t, r.Traceability.Complete)
	assert.Equal(t, 70, r.Scores.Robustness)
	assert.Equal(t, p, New(p).Profile())
}

func TestAuditor_DoesNotMutateTimeline(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 30).Failing()).WithFeedback(9, 0.5).InPhase("deload"),
		Week(2, P("chest", 40)),
	)
	before := tl.Records()
	digest := tl.Digest()

	newAuditor().Run(tl)
	newAuditor().Run(tl)

	assert.Equal(t, before, tl.Records())
	assert.Equal(t, digest, tl.Digest())
	assert.Equal(t, 30, tl.At(0).Volume.Sets("chest"))
}

func TestAuditor_Deterministic(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 24), P("back", 26).Failing()).WithFeedback(9, 0.6).Expecting("high"),
		Week(2, P("chest", 30), P("back", 10)).WithFeedback(2, 1),
		Week(3, P("chest", 10), P("back", 30)).WithCategories("week_setup"),
	)

	first := newAuditor().Run(tl)
	second := newAuditor().Run(tl)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("audit is not deterministic (-first +second):\n%s", diff)
	}
}
