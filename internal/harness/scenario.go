package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/testutil"
)

// Scenario is a synthetic timeline and the findings expected from auditing it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile is optional CUE source unified with the default profile.
	Profile string `yaml:"profile,omitempty"`

	// Weeks are the synthetic snapshots, in timeline order.
	Weeks []testutil.WeekSpec `yaml:"weeks"`

	// Assertions validate the audit result.
	Assertions []Assertion `yaml:"assertions"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Assertion validates one aspect of an audit result. Which fields apply
// depends on Type.
type Assertion struct {
	Type string `yaml:"type"`

	// Rule filters violation assertions; a rule code or its label.
	Rule string `yaml:"rule,omitempty"`

	// Severity filters violation_count (P0 or P1).
	Severity string `yaml:"severity,omitempty"`

	// Week and Muscle narrow violation_present.
	Week   int    `yaml:"week,omitempty"`
	Muscle string `yaml:"muscle,omitempty"`

	// Count is the exact expected count for the counting assertions.
	Count *int `yaml:"count,omitempty"`

	// Weeks is the exact list of chaotic weeks (chaotic_weeks).
	Weeks []int `yaml:"weeks,omitempty"`

	// Verdict is a level (pass, caution, fail) or the verdict text.
	Verdict string `yaml:"verdict,omitempty"`

	// Kind is the score kind for score assertions.
	Kind string `yaml:"kind,omitempty"`

	// Min and Max bound score and failure_rate, inclusive.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`

	// Tier is the expected failure tier (failure_rate).
	Tier string `yaml:"tier,omitempty"`
}

// Assertion type constants.
const (
	AssertViolationCount        = "violation_count"
	AssertViolationPresent      = "violation_present"
	AssertVerdict               = "verdict"
	AssertScore                 = "score"
	AssertChaoticWeeks          = "chaotic_weeks"
	AssertReversibleCycles      = "reversible_cycles"
	AssertIncoherentTransitions = "incoherent_transitions"
	AssertFailureRate           = "failure_rate"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	scenario.Path = path
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
// Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("scenario directory: %w", err)
		}
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, path)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Weeks) == 0 {
		return fmt.Errorf("weeks list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, w := range s.Weeks {
		if w.Week <= 0 {
			return fmt.Errorf("weeks[%d]: week must be positive", i)
		}
		if i > 0 && w.Week <= s.Weeks[i-1].Week {
			return fmt.Errorf("weeks[%d]: week %d does not follow week %d", i, w.Week, s.Weeks[i-1].Week)
		}
		for j, p := range w.Prescriptions {
			if p.Muscle == "" {
				return fmt.Errorf("weeks[%d].prescriptions[%d]: muscle is required", i, j)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Rule != "" {
		if _, err := audit.ParseRule(a.Rule); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}
	if a.Count != nil && *a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
	}
	if a.Min != nil && a.Max != nil && *a.Min > *a.Max {
		return fmt.Errorf("assertions[%d]: min exceeds max", index)
	}

	switch a.Type {
	case AssertViolationCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for violation_count", index)
		}
		if a.Severity != "" && a.Severity != string(audit.SeverityP0) && a.Severity != string(audit.SeverityP1) {
			return fmt.Errorf("assertions[%d]: unknown severity %q", index, a.Severity)
		}
	case AssertViolationPresent:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for violation_present", index)
		}
	case AssertVerdict:
		if _, ok := parseVerdict(a.Verdict); !ok {
			return fmt.Errorf("assertions[%d]: unknown verdict %q", index, a.Verdict)
		}
	case AssertScore:
		switch audit.ScoreKind(a.Kind) {
		case audit.ScoreScientific, audit.ScoreClinical, audit.ScoreRobustness:
		default:
			return fmt.Errorf("assertions[%d]: unknown score kind %q", index, a.Kind)
		}
		if a.Min == nil && a.Max == nil {
			return fmt.Errorf("assertions[%d]: min or max is required for score", index)
		}
	case AssertChaoticWeeks:
		if a.Count == nil && a.Weeks == nil {
			return fmt.Errorf("assertions[%d]: count or weeks is required for chaotic_weeks", index)
		}
	case AssertReversibleCycles, AssertIncoherentTransitions:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
	case AssertFailureRate:
		if a.Min == nil && a.Max == nil && a.Tier == "" {
			return fmt.Errorf("assertions[%d]: min, max or tier is required for failure_rate", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// parseVerdict maps a level name or verdict text onto a level.
func parseVerdict(s string) (audit.Level, bool) {
	for _, v := range []audit.Verdict{audit.VerdictCorrect, audit.VerdictUsable, audit.VerdictIncorrect} {
		if s == string(v) || s == v.Level().String() {
			return v.Level(), true
		}
	}
	return 0, false
}
