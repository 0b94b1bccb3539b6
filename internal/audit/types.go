package audit

import "fmt"

// Severity of a rule violation.
type Severity string

const (
	SeverityP0 Severity = "P0"
	SeverityP1 Severity = "P1"
)

// Penalty is what one violation of this severity costs the scientific and
// clinical scores.
func (s Severity) Penalty() int {
	switch s {
	case SeverityP0:
		return 30
	case SeverityP1:
		return 15
	default:
		return 0
	}
}

// Rule identifies an invariant. Severity is fixed per rule.
type Rule string

const (
	RuleVolumeOverMRV               Rule = "volume_over_mrv"
	RuleFailureInDeload             Rule = "failure_in_deload"
	RuleFailureUnderHighFatigue     Rule = "failure_under_high_fatigue"
	RuleProgressionAfterHighFatigue Rule = "progression_after_high_fatigue"
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{
	RuleVolumeOverMRV,
	RuleFailureInDeload,
	RuleFailureUnderHighFatigue,
	RuleProgressionAfterHighFatigue,
}

// Label is the rule's display name.
func (r Rule) Label() string {
	switch r {
	case RuleVolumeOverMRV:
		return "Volumen > MRV"
	case RuleFailureInDeload:
		return "Fallo en deload"
	case RuleFailureUnderHighFatigue:
		return "Fallo en fatigue=high"
	case RuleProgressionAfterHighFatigue:
		return "Progresión tras fatiga alta"
	default:
		return string(r)
	}
}

// Severity returns the fixed severity of the rule.
func (r Rule) Severity() Severity {
	if r == RuleProgressionAfterHighFatigue {
		return SeverityP1
	}
	return SeverityP0
}

// ParseRule accepts a rule code or its label.
func ParseRule(s string) (Rule, error) {
	for _, r := range Rules {
		if s == string(r) || s == r.Label() {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown rule %q", s)
}

// NoMuscle is the muscle of violations that concern a whole week.
const NoMuscle = "N/A"

// Violation is one broken invariant.
type Violation struct {
	Week     int      `json:"week"`
	Muscle   string   `json:"muscle"`
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details"`
}

func newViolation(week int, muscle string, rule Rule, details string) Violation {
	return Violation{
		Week:     week,
		Muscle:   muscle,
		Rule:     rule,
		Severity: rule.Severity(),
		Details:  details,
	}
}

// CountSeverity counts violations of the given severity.
func CountSeverity(violations []Violation, sev Severity) int {
	n := 0
	for _, v := range violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// ScoreKind names one of the three scores.
type ScoreKind string

const (
	ScoreScientific ScoreKind = "scientific"
	ScoreClinical   ScoreKind = "clinical"
	ScoreRobustness ScoreKind = "robustness"
)

// ScoreDelta is an adjustment an analyzer requests.
type ScoreDelta struct {
	Kind   ScoreKind `json:"kind"`
	Amount int       `json:"amount"`
	Reason string    `json:"reason"`
}

// Scores holds the three scores.
type Scores struct {
	Scientific int `json:"scientific"`
	Clinical   int `json:"clinical"`
	Robustness int `json:"robustness"`
}

// Get returns the score of the given kind.
func (s Scores) Get(kind ScoreKind) int {
	switch kind {
	case ScoreScientific:
		return s.Scientific
	case ScoreClinical:
		return s.Clinical
	case ScoreRobustness:
		return s.Robustness
	default:
		return 0
	}
}

func (s *Scores) add(kind ScoreKind, amount int) {
	switch kind {
	case ScoreScientific:
		s.Scientific += amount
	case ScoreClinical:
		s.Clinical += amount
	case ScoreRobustness:
		s.Robustness += amount
	}
}

// Average is the mean of the three scores.
func (s Scores) Average() float64 {
	return float64(s.Scientific+s.Clinical+s.Robustness) / 3
}

// Verdict is the final classification of an audit.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct and safe"
	VerdictUsable    Verdict = "usable with controlled risk"
	VerdictIncorrect Verdict = "incorrect or dangerous"
)

// Level maps the verdict onto pass, caution or fail.
func (v Verdict) Level() Level {
	switch v {
	case VerdictCorrect:
		return LevelPass
	case VerdictUsable:
		return LevelCaution
	default:
		return LevelFail
	}
}

// Level orders verdicts for gating.
type Level int

const (
	LevelPass Level = iota
	LevelCaution
	LevelFail
)

func (l Level) String() string {
	switch l {
	case LevelPass:
		return "pass"
	case LevelCaution:
		return "caution"
	default:
		return "fail"
	}
}
