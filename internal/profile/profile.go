// Package profile holds the thresholds an audit runs with. Profiles are CUE
// files unified with an embedded schema that carries every default.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/trainaudit/internal/snapshot"
)

//go:embed schema.cue
var schemaCUE string

// Profile is a fully resolved set of audit thresholds.
type Profile struct {
	DefaultMRV           int                 `json:"default_mrv"`
	MRV                  map[string]int      `json:"mrv"`
	HighFatigue          float64             `json:"high_fatigue"`
	ModerateFatigue      float64             `json:"moderate_fatigue"`
	ProgressionTolerance float64             `json:"progression_tolerance"`
	Signal               Signal              `json:"signal"`
	ResponseDelta        float64             `json:"response_delta"`
	ChaosThreshold       float64             `json:"chaos_threshold"`
	VarianceMuscles      []string            `json:"variance_muscles"`
	WatchMuscles         []string            `json:"watch_muscles"`
	Reversibility        Reversibility       `json:"reversibility"`
	FailureRate          FailureRate         `json:"failure_rate"`
	RequiredCategories   []string            `json:"required_categories"`
	MinDecisions         float64             `json:"min_decisions"`
	BlockScope           snapshot.BlockScope `json:"block_scope"`
}

// Signal holds the feedback thresholds beyond HighFatigue.
type Signal struct {
	NegativeAdherence float64 `json:"negative_adherence"`
	PositiveFatigue   float64 `json:"positive_fatigue"`
	PositiveAdherence float64 `json:"positive_adherence"`
}

// Reversibility holds the reduce/recover ratios of a deload cycle.
type Reversibility struct {
	ReduceRatio  float64 `json:"reduce_ratio"`
	RecoverRatio float64 `json:"recover_ratio"`
}

// FailureRate holds the failure-usage tiers in percent.
type FailureRate struct {
	Dominant float64 `json:"dominant"`
	Moderate float64 `json:"moderate"`
}

// Error is a profile that does not satisfy the schema.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid profile: %s", errors.Details(e.Err, nil))
	}
	return fmt.Sprintf("invalid profile %s: %s", e.Path, errors.Details(e.Err, nil))
}

func (e *Error) Unwrap() error {
	return e.Err
}

var defaultProfile = sync.OnceValues(func() (Profile, error) {
	return Parse(nil, "")
})

// Default returns the reference thresholds.
func Default() Profile {
	p, err := defaultProfile()
	if err != nil {
		panic(fmt.Sprintf("embedded profile schema: %v", err))
	}
	return p.clone()
}

// Load reads and resolves a profile file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data, path)
}

// Parse unifies CUE source with the schema and decodes the result. Empty data
// yields the defaults. Unknown fields are rejected.
func Parse(data []byte, filename string) (Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Profile{}, &Error{Path: "schema.cue", Err: err}
	}
	v := schema.LookupPath(cue.ParsePath("#Profile"))

	if len(data) > 0 {
		user := ctx.CompileBytes(data, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Profile{}, &Error{Path: filename, Err: err}
		}
		v = v.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Profile{}, &Error{Path: filename, Err: err}
	}

	var p Profile
	if err := v.Decode(&p); err != nil {
		return Profile{}, &Error{Path: filename, Err: err}
	}
	if p.ModerateFatigue > p.HighFatigue {
		return Profile{}, fmt.Errorf("invalid profile %s: moderate_fatigue (%.1f) exceeds high_fatigue (%.1f)",
			filename, p.ModerateFatigue, p.HighFatigue)
	}
	if p.FailureRate.Moderate > p.FailureRate.Dominant {
		return Profile{}, fmt.Errorf("invalid profile %s: failure_rate.moderate (%.1f) exceeds failure_rate.dominant (%.1f)",
			filename, p.FailureRate.Moderate, p.FailureRate.Dominant)
	}
	return p, nil
}

// MRVFor returns the maximum recoverable volume for a muscle.
func (p Profile) MRVFor(muscle string) int {
	if mrv, ok := p.MRV[muscle]; ok {
		return mrv
	}
	return p.DefaultMRV
}

func (p Profile) clone() Profile {
	out := p
	out.MRV = make(map[string]int, len(p.MRV))
	for k, v := range p.MRV {
		out.MRV[k] = v
	}
	out.VarianceMuscles = slices.Clone(p.VarianceMuscles)
	out.WatchMuscles = slices.Clone(p.WatchMuscles)
	out.RequiredCategories = slices.Clone(p.RequiredCategories)
	return out
}
