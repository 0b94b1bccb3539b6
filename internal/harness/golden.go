package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/canon"
)

// Findings is the stable part of an audit result captured in golden files.
// Free-form score reasons are left out so rewording them does not churn
// every snapshot.
type Findings struct {
	ScenarioName string
	Result       *audit.Result
}

// toCanonicalMap converts findings to the generic shapes canon.Marshal accepts.
func (f *Findings) toCanonicalMap() map[string]any {
	res := f.Result

	violations := make([]any, len(res.Violations))
	for i, v := range res.Violations {
		violations[i] = map[string]any{
			"week":     v.Week,
			"muscle":   v.Muscle,
			"rule":     string(v.Rule),
			"severity": string(v.Severity),
			"details":  v.Details,
		}
	}

	chaotic := make([]any, len(res.Stability.Chaotic))
	for i, c := range res.Stability.Chaotic {
		chaotic[i] = map[string]any{
			"week":   c.Week,
			"muscle": c.Muscle,
			"from":   c.From,
			"to":     c.To,
		}
	}

	cycles := make([]any, len(res.Reversibility.Cycles))
	for i, c := range res.Reversibility.Cycles {
		cycles[i] = []any{c.Weeks[0], c.Weeks[1], c.Weeks[2]}
	}

	transitions := make([]any, len(res.Directionality.Transitions))
	for i, t := range res.Directionality.Transitions {
		transitions[i] = map[string]any{
			"from":     t.From,
			"to":       t.To,
			"signal":   string(t.Signal),
			"response": string(t.Response),
			"coherent": t.Coherent,
		}
	}

	return map[string]any{
		"scenario_name": f.ScenarioName,
		"violations":    violations,
		"transitions":   transitions,
		"chaotic":       chaotic,
		"cycles":        cycles,
		"failure_tier":  string(res.FailureUsage.Tier),
		"scores": map[string]any{
			"scientific": res.Scores.Scientific,
			"clinical":   res.Scores.Clinical,
			"robustness": res.Scores.Robustness,
		},
		"verdict": string(res.Verdict),
	}
}

// Marshal renders the findings as canonical JSON with a trailing newline.
func (f *Findings) Marshal() ([]byte, error) {
	data, err := canon.Marshal(f.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its findings against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's findings against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	findings := Findings{ScenarioName: scenarioName, Result: result.Audit}
	data, err := findings.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
