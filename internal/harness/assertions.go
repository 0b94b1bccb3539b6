package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/trainaudit/internal/audit"
)

// AssertionError is returned when an assertion fails.
// It includes the violations found to help debug the failure.
type AssertionError struct {
	Type       string            // Assertion type for categorization
	Expected   string            // Human-readable expected outcome
	Actual     string            // Human-readable actual outcome
	Violations []audit.Violation // All violations for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Violations) > 0 {
		fmt.Fprintf(&buf, "\nViolations:\n")
		for i, v := range e.Violations {
			fmt.Fprintf(&buf, "  [%d] week %d %s %s (%s): %s\n", i+1, v.Week, v.Severity, v.Rule, v.Muscle, v.Details)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. Assertions are independent: one failing does not stop the rest.
func EvaluateAssertions(res *audit.Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(res, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluate(res *audit.Result, a Assertion) error {
	switch a.Type {
	case AssertViolationCount:
		return assertViolationCount(res, a)
	case AssertViolationPresent:
		return assertViolationPresent(res, a)
	case AssertVerdict:
		return assertVerdict(res, a)
	case AssertScore:
		return assertScore(res, a)
	case AssertChaoticWeeks:
		return assertChaoticWeeks(res, a)
	case AssertReversibleCycles:
		return assertCount(res, a, len(res.Reversibility.Cycles))
	case AssertIncoherentTransitions:
		return assertCount(res, a, res.Directionality.Incoherent)
	case AssertFailureRate:
		return assertFailureRate(res, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// matchRule reports whether v matches the assertion's rule filter, if any.
func matchRule(v audit.Violation, a Assertion) bool {
	if a.Rule == "" {
		return true
	}
	rule, err := audit.ParseRule(a.Rule)
	return err == nil && v.Rule == rule
}

func assertViolationCount(res *audit.Result, a Assertion) error {
	count := 0
	for _, v := range res.Violations {
		if !matchRule(v, a) {
			continue
		}
		if a.Severity != "" && string(v.Severity) != a.Severity {
			continue
		}
		count++
	}

	if count != *a.Count {
		filter := describeFilter(a)
		return &AssertionError{
			Type:       AssertViolationCount,
			Expected:   fmt.Sprintf("%d violations%s", *a.Count, filter),
			Actual:     fmt.Sprintf("%d violations%s", count, filter),
			Violations: res.Violations,
		}
	}
	return nil
}

func describeFilter(a Assertion) string {
	var parts []string
	if a.Rule != "" {
		parts = append(parts, "rule "+a.Rule)
	}
	if a.Severity != "" {
		parts = append(parts, "severity "+a.Severity)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func assertViolationPresent(res *audit.Result, a Assertion) error {
	for _, v := range res.Violations {
		if !matchRule(v, a) {
			continue
		}
		if a.Week != 0 && v.Week != a.Week {
			continue
		}
		if a.Muscle != "" && v.Muscle != a.Muscle {
			continue
		}
		return nil
	}

	expected := "violation of " + a.Rule
	if a.Week != 0 {
		expected += fmt.Sprintf(" in week %d", a.Week)
	}
	if a.Muscle != "" {
		expected += " for " + a.Muscle
	}
	return &AssertionError{
		Type:       AssertViolationPresent,
		Expected:   expected,
		Actual:     "not found",
		Violations: res.Violations,
	}
}

func assertVerdict(res *audit.Result, a Assertion) error {
	want, _ := parseVerdict(a.Verdict)
	if res.Verdict.Level() != want {
		return &AssertionError{
			Type:       AssertVerdict,
			Expected:   want.String(),
			Actual:     fmt.Sprintf("%s (%s)", res.Verdict.Level(), res.Verdict),
			Violations: res.Violations,
		}
	}
	return nil
}

func withinBounds(value float64, a Assertion) bool {
	if a.Min != nil && value < *a.Min {
		return false
	}
	if a.Max != nil && value > *a.Max {
		return false
	}
	return true
}

func describeBounds(a Assertion) string {
	switch {
	case a.Min != nil && a.Max != nil:
		return fmt.Sprintf("between %g and %g", *a.Min, *a.Max)
	case a.Min != nil:
		return fmt.Sprintf("at least %g", *a.Min)
	default:
		return fmt.Sprintf("at most %g", *a.Max)
	}
}

func assertScore(res *audit.Result, a Assertion) error {
	got := res.Scores.Get(audit.ScoreKind(a.Kind))
	if !withinBounds(float64(got), a) {
		return &AssertionError{
			Type:     AssertScore,
			Expected: fmt.Sprintf("%s score %s", a.Kind, describeBounds(a)),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

func assertChaoticWeeks(res *audit.Result, a Assertion) error {
	weeks := make([]int, len(res.Stability.Chaotic))
	for i, c := range res.Stability.Chaotic {
		weeks[i] = c.Week
	}

	if a.Count != nil && len(weeks) != *a.Count {
		return &AssertionError{
			Type:     AssertChaoticWeeks,
			Expected: fmt.Sprintf("%d chaotic weeks", *a.Count),
			Actual:   fmt.Sprintf("%d chaotic weeks %v", len(weeks), weeks),
		}
	}
	if a.Weeks != nil && !slices.Equal(weeks, a.Weeks) {
		return &AssertionError{
			Type:     AssertChaoticWeeks,
			Expected: fmt.Sprintf("chaotic weeks %v", a.Weeks),
			Actual:   fmt.Sprintf("chaotic weeks %v", weeks),
		}
	}
	return nil
}

func assertCount(res *audit.Result, a Assertion, got int) error {
	if got != *a.Count {
		return &AssertionError{
			Type:       a.Type,
			Expected:   fmt.Sprintf("%d", *a.Count),
			Actual:     fmt.Sprintf("%d", got),
			Violations: res.Violations,
		}
	}
	return nil
}

func assertFailureRate(res *audit.Result, a Assertion) error {
	f := res.FailureUsage
	if a.Tier != "" && string(f.Tier) != a.Tier {
		return &AssertionError{
			Type:     AssertFailureRate,
			Expected: "tier " + a.Tier,
			Actual:   fmt.Sprintf("tier %s (%.1f%%)", f.Tier, f.Rate),
		}
	}
	if (a.Min != nil || a.Max != nil) && !withinBounds(f.Rate, a) {
		return &AssertionError{
			Type:     AssertFailureRate,
			Expected: "rate " + describeBounds(a),
			Actual:   fmt.Sprintf("%.1f%%", f.Rate),
		}
	}
	return nil
}
