package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trainaudit/internal/audit"
)

func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func sampleResult() *audit.Result {
	return &audit.Result{
		Violations: []audit.Violation{
			{Week: 1, Muscle: "chest", Rule: audit.RuleVolumeOverMRV, Severity: audit.SeverityP0, Details: "sets=25 > MRV=22"},
			{Week: 2, Muscle: "chest", Rule: audit.RuleProgressionAfterHighFatigue, Severity: audit.SeverityP1, Details: "volume 10→14 after fatigue 9.0 in week 1"},
			{Week: 2, Muscle: audit.NoMuscle, Rule: audit.RuleFailureInDeload, Severity: audit.SeverityP0, Details: "1 exercises allow failure during deload"},
		},
		Directionality: audit.Directionality{Incoherent: 1},
		Stability: audit.Stability{Chaotic: []audit.ChaoticWeek{
			{Week: 2, Muscle: "chest", From: 10, To: 14},
			{Week: 4, Muscle: "back", From: 10, To: 20},
		}},
		Reversibility: audit.Reversibility{Cycles: []audit.Cycle{{Weeks: [3]int{1, 2, 3}}}},
		FailureUsage:  audit.FailureUsage{Rate: 12.5, Tier: audit.FailureModerate},
		Scores:        audit.Scores{Scientific: 10, Clinical: 5, Robustness: 55},
		Verdict:       audit.VerdictIncorrect,
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertViolationCount, Count: intp(3)},
		{Type: AssertViolationCount, Severity: "P0", Count: intp(2)},
		{Type: AssertViolationCount, Rule: "Fallo en deload", Count: intp(1)},
		{Type: AssertViolationCount, Rule: "failure_under_high_fatigue", Count: intp(0)},
		{Type: AssertViolationPresent, Rule: "volume_over_mrv"},
		{Type: AssertViolationPresent, Rule: "progression_after_high_fatigue", Week: 2, Muscle: "chest"},
		{Type: AssertVerdict, Verdict: "fail"},
		{Type: AssertVerdict, Verdict: "incorrect or dangerous"},
		{Type: AssertScore, Kind: "robustness", Min: floatp(50), Max: floatp(60)},
		{Type: AssertScore, Kind: "clinical", Max: floatp(5)},
		{Type: AssertChaoticWeeks, Count: intp(2), Weeks: []int{2, 4}},
		{Type: AssertReversibleCycles, Count: intp(1)},
		{Type: AssertIncoherentTransitions, Count: intp(1)},
		{Type: AssertFailureRate, Min: floatp(10), Max: floatp(15), Tier: "moderate"},
	}

	assert.Empty(t, EvaluateAssertions(sampleResult(), assertions))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      []string
	}{
		{
			name:      "count",
			assertion: Assertion{Type: AssertViolationCount, Severity: "P1", Count: intp(0)},
			want:      []string{"violation_count", "Expected: 0 violations (severity P1)", "Actual: 1 violations (severity P1)", "sets=25 > MRV=22"},
		},
		{
			name:      "present wrong week",
			assertion: Assertion{Type: AssertViolationPresent, Rule: "volume_over_mrv", Week: 3},
			want:      []string{"violation_present", "Expected: violation of volume_over_mrv in week 3", "Actual: not found"},
		},
		{
			name:      "present wrong muscle",
			assertion: Assertion{Type: AssertViolationPresent, Rule: "volume_over_mrv", Muscle: "back"},
			want:      []string{"violation of volume_over_mrv for back"},
		},
		{
			name:      "verdict",
			assertion: Assertion{Type: AssertVerdict, Verdict: "caution"},
			want:      []string{"Expected: caution", "Actual: fail (incorrect or dangerous)"},
		},
		{
			name:      "score below",
			assertion: Assertion{Type: AssertScore, Kind: "scientific", Min: floatp(40)},
			want:      []string{"Expected: scientific score at least 40", "Actual: 10"},
		},
		{
			name:      "score outside range",
			assertion: Assertion{Type: AssertScore, Kind: "robustness", Min: floatp(60), Max: floatp(70)},
			want:      []string{"between 60 and 70"},
		},
		{
			name:      "chaotic count",
			assertion: Assertion{Type: AssertChaoticWeeks, Count: intp(1)},
			want:      []string{"Expected: 1 chaotic weeks", "Actual: 2 chaotic weeks [2 4]"},
		},
		{
			name:      "chaotic list",
			assertion: Assertion{Type: AssertChaoticWeeks, Weeks: []int{2}},
			want:      []string{"Expected: chaotic weeks [2]", "Actual: chaotic weeks [2 4]"},
		},
		{
			name:      "cycles",
			assertion: Assertion{Type: AssertReversibleCycles, Count: intp(0)},
			want:      []string{"reversible_cycles", "Expected: 0", "Actual: 1"},
		},
		{
			name:      "incoherent",
			assertion: Assertion{Type: AssertIncoherentTransitions, Count: intp(2)},
			want:      []string{"incoherent_transitions", "Expected: 2", "Actual: 1"},
		},
		{
			name:      "failure tier",
			assertion: Assertion{Type: AssertFailureRate, Tier: "dominant"},
			want:      []string{"Expected: tier dominant", "Actual: tier moderate (12.5%)"},
		},
		{
			name:      "failure rate bound",
			assertion: Assertion{Type: AssertFailureRate, Max: floatp(10)},
			want:      []string{"Expected: rate at most 10", "Actual: 12.5%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]")
			for _, w := range tt.want {
				assert.Contains(t, errs[0], w)
			}
		})
	}
}

func TestEvaluateAssertions_Independent(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertVerdict, Verdict: "pass"},
		{Type: AssertReversibleCycles, Count: intp(1)},
		{Type: AssertIncoherentTransitions, Count: intp(0)},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[0]")
	assert.Contains(t, errs[1], "assertions[2]")
}

func TestEvaluate_UnknownType(t *testing.T) {
	err := evaluate(sampleResult(), Assertion{Type: "final_state"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown assertion type "final_state"`)
}

func TestAssertionError_Format(t *testing.T) {
	err := assertVerdict(sampleResult(), Assertion{Type: AssertVerdict, Verdict: "pass"})

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, AssertVerdict, ae.Type)
	assert.Len(t, ae.Violations, 3)

	msg := ae.Error()
	assert.Contains(t, msg, "Assertion failed: verdict\n")
	assert.Contains(t, msg, "\nViolations:\n")
	assert.Contains(t, msg, "  [1] week 1 P0 volume_over_mrv (chest): sets=25 > MRV=22\n")
	assert.Contains(t, msg, "  [3] week 2 P0 failure_in_deload (N/A): 1 exercises allow failure during deload\n")
}

func TestAssertionError_NoViolations(t *testing.T) {
	err := &AssertionError{Type: AssertScore, Expected: "x", Actual: "y"}
	assert.NotContains(t, err.Error(), "Violations")
}
