package audit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/testutil"
	"github.com/roach88/trainaudit/internal/timeline"
)

func TestClassifyFailureRate(t *testing.T) {
	p := profile.Default()
	assert.Equal(t, FailureDominant, ClassifyFailureRate(15.01, p))
	assert.Equal(t, FailureModerate, ClassifyFailureRate(15, p))
	assert.Equal(t, FailureModerate, ClassifyFailureRate(10.5, p))
	assert.Equal(t, FailureConservative, ClassifyFailureRate(10, p))
	assert.Equal(t, FailureConservative, ClassifyFailureRate(0, p))
}

func TestAnalyzeFailureUsage_Tiers(t *testing.T) {
	// Ten prescriptions per timeline; n of them allow failure.
	weeks := func(n int) []testutil.WeekSpec {
		var ps []testutil.PrescriptionSpec
		for i := range 10 {
			p := P("chest", 2)
			if i < n {
				p = p.Failing()
			}
			ps = append(ps, p)
		}
		return []testutil.WeekSpec{Week(1, ps[:5]...), Week(2, ps[5:]...)}
	}

	tests := []struct {
		failing int
		tier    FailureTier
		amount  int
	}{
		{0, FailureConservative, 20},
		{1, FailureConservative, 20},
		{2, FailureDominant, -20},
	}
	for _, tt := range tests {
		got := AnalyzeFailureUsage(build(t, weeks(tt.failing)...), profile.Default())

		assert.Equal(t, tt.tier, got.Tier)
		assert.Equal(t, 10, got.Prescriptions)
		assert.InDelta(t, float64(tt.failing)*10, got.Rate, 1e-9)
		if assert.Len(t, got.Deltas, 1) {
			assert.Equal(t, ScoreScientific, got.Deltas[0].Kind)
			assert.Equal(t, tt.amount, got.Deltas[0].Amount)
		}
	}
}

func TestAnalyzeFailureUsage_Moderate(t *testing.T) {
	var ps []testutil.PrescriptionSpec
	for i := range 8 {
		p := P("back", 2)
		if i == 0 {
			p = p.Failing()
		}
		ps = append(ps, p)
	}

	got := AnalyzeFailureUsage(build(t, Week(1, ps...)), profile.Default())

	assert.InDelta(t, 12.5, got.Rate, 1e-9)
	assert.Equal(t, FailureModerate, got.Tier)
	assert.Equal(t, []ScoreDelta{{ScoreScientific, -10, "failure rate 12.5% is moderate"}}, got.Deltas)
}

func TestAnalyzeFailureUsage_DeloadPenaltyPerWeek(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 5).Failing(), P("back", 5)).InPhase("deload"),
		Week(2, P("chest", 5), P("back", 5)).InPhase("deload"),
		Week(3, P("chest", 5).Failing(), P("back", 5).Failing()).InPhase("deload"),
	)

	got := AnalyzeFailureUsage(tl, profile.Default())

	assert.Equal(t, []int{1, 3}, got.DeloadWeeks)
	want := []ScoreDelta{
		{Kind: ScoreScientific, Amount: -20, Reason: "failure rate 50.0% is dominant"},
		{Kind: ScoreScientific, Amount: -30, Reason: "failure allowed during deload in week 1"},
		{Kind: ScoreScientific, Amount: -30, Reason: "failure allowed during deload in week 3"},
	}
	if diff := cmp.Diff(want, got.Deltas); diff != "" {
		t.Errorf("deltas mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeFailureUsage_NoPrescriptions(t *testing.T) {
	got := AnalyzeFailureUsage(build(t, Week(1), Week(2)), profile.Default())

	assert.Equal(t, FailureUnrated, got.Tier)
	assert.Zero(t, got.Rate)
	assert.Empty(t, got.Deltas)
}

func TestAnalyzeFailureUsage_BlockScope(t *testing.T) {
	spec := Week(1, P("chest", 4).Failing(), P("back", 4))
	spec.Lookahead = []testutil.PrescriptionSpec{P("chest", 4), P("back", 4), P("quads", 4), P("glutes", 4)}

	for _, tt := range []struct {
		scope         snapshot.BlockScope
		prescriptions int
		rate          float64
	}{
		{snapshot.BlockScopeAll, 6, 100.0 / 6},
		{snapshot.BlockScopeFirst, 2, 50},
	} {
		records, err := testutil.BuildRecords(tt.scope, spec)
		assert.NoError(t, err)
		tl, err := timeline.New(records)
		assert.NoError(t, err)

		got := AnalyzeFailureUsage(tl, profile.Default())

		assert.Equal(t, 1, got.AllowFailure, tt.scope)
		assert.Equal(t, tt.prescriptions, got.Prescriptions, tt.scope)
		assert.InDelta(t, tt.rate, got.Rate, 1e-9, tt.scope)
	}
}
