package audit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/trainaudit/internal/profile"
)

func TestCheckInvariants_VolumeOverMRV(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 12), P("chest", 11), P("back", 25), P("calves", 26), P("biceps", 14)),
	)

	got := CheckInvariants(tl, profile.Default())

	want := []Violation{
		{Week: 1, Muscle: "chest", Rule: RuleVolumeOverMRV, Severity: SeverityP0, Details: "sets=23 > MRV=22"},
		{Week: 1, Muscle: "calves", Rule: RuleVolumeOverMRV, Severity: SeverityP0, Details: "sets=26 > MRV=25"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckInvariants_OnePerWeekAndMuscle(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 10), P("chest", 10), P("chest", 10)),
		Week(2, P("chest", 30)),
	)

	got := CheckInvariants(tl, profile.Default())

	assert.Len(t, got, 2)
	for _, v := range got {
		assert.Equal(t, RuleVolumeOverMRV, v.Rule)
		assert.Equal(t, "chest", v.Muscle)
	}
	assert.Equal(t, 1, got[0].Week)
	assert.Equal(t, 2, got[1].Week)
}

func TestCheckInvariants_FailureRules(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 8).Failing(), P("back", 8).Failing()).InPhase("deload"),
		Week(2, P("chest", 8).Failing()).Expecting("high"),
		Week(3, P("chest", 8).Failing()).InPhase("deload").Expecting("high"),
		Week(4, P("chest", 8)).InPhase("deload").Expecting("high"),
	)

	got := CheckInvariants(tl, profile.Default())

	want := []Violation{
		{Week: 1, Muscle: NoMuscle, Rule: RuleFailureInDeload, Severity: SeverityP0, Details: "2 exercises allow failure during deload"},
		{Week: 2, Muscle: NoMuscle, Rule: RuleFailureUnderHighFatigue, Severity: SeverityP0, Details: "1 exercises allow failure with high fatigue expectation"},
		{Week: 3, Muscle: NoMuscle, Rule: RuleFailureInDeload, Severity: SeverityP0, Details: "1 exercises allow failure during deload"},
		{Week: 3, Muscle: NoMuscle, Rule: RuleFailureUnderHighFatigue, Severity: SeverityP0, Details: "1 exercises allow failure with high fatigue expectation"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckInvariants_ProgressionAfterHighFatigue(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 10), P("back", 10)).WithFeedback(8.0, 0.9),
		Week(2, P("chest", 11), P("back", 12), P("quads", 4)),
	)

	got := CheckInvariants(tl, profile.Default())

	want := []Violation{
		{Week: 2, Muscle: "back", Rule: RuleProgressionAfterHighFatigue, Severity: SeverityP1, Details: "volume 10→12 after fatigue 8.0 in week 1"},
		{Week: 2, Muscle: "quads", Rule: RuleProgressionAfterHighFatigue, Severity: SeverityP1, Details: "volume 0→4 after fatigue 8.0 in week 1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckInvariants_ProgressionNeedsHighFatigueFeedback(t *testing.T) {
	tl := build(t,
		Week(1, P("chest", 10)).WithFeedback(7.9, 0.9),
		Week(2, P("chest", 20)),
		Week(3, P("chest", 10)),
		Week(4, P("chest", 20)),
	)

	assert.Empty(t, CheckInvariants(tl, profile.Default()))
}

func TestCheckInvariants_AdjacencyIsPositional(t *testing.T) {
	// Week numbers skip; the rule still compares with the previous record.
	tl := build(t,
		Week(2, P("chest", 10)).WithFeedback(9.0, 1.0),
		Week(5, P("chest", 14)),
	)

	got := CheckInvariants(tl, profile.Default())

	assert.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Week)
	assert.Equal(t, RuleProgressionAfterHighFatigue, got[0].Rule)
}

func TestCheckInvariants_UsesProfile(t *testing.T) {
	p := profile.Default()
	p.MRV["chest"] = 10
	p.HighFatigue = 6

	tl := build(t,
		Week(1, P("chest", 10)).WithFeedback(6.5, 1.0),
		Week(2, P("chest", 11)),
	)

	got := CheckInvariants(tl, p)

	assert.Len(t, got, 1)
	assert.Equal(t, RuleVolumeOverMRV, got[0].Rule)
	assert.Equal(t, 2, got[0].Week)
}

func TestRule(t *testing.T) {
	assert.Equal(t, SeverityP0, RuleVolumeOverMRV.Severity())
	assert.Equal(t, SeverityP0, RuleFailureInDeload.Severity())
	assert.Equal(t, SeverityP0, RuleFailureUnderHighFatigue.Severity())
	assert.Equal(t, SeverityP1, RuleProgressionAfterHighFatigue.Severity())
	assert.Equal(t, "Fallo en deload", RuleFailureInDeload.Label())

	r, err := ParseRule("Volumen > MRV")
	assert.NoError(t, err)
	assert.Equal(t, RuleVolumeOverMRV, r)

	r, err = ParseRule("failure_in_deload")
	assert.NoError(t, err)
	assert.Equal(t, RuleFailureInDeload, r)

	_, err = ParseRule("nope")
	assert.Error(t, err)
}
