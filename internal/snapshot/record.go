package snapshot

import (
	"encoding/json"
	"slices"
)

// Phase is the periodization phase the engine planned for a week. The set is
// open; only the named constants carry rules.
type Phase string

const (
	PhaseUnknown         Phase = "unknown"
	PhaseDeload          Phase = "deload"
	PhaseIntensification Phase = "intensification"
)

// FatigueLevel is the engine's planned fatigue posture for a week.
type FatigueLevel string

const (
	FatigueNormal FatigueLevel = "normal"
	FatigueHigh   FatigueLevel = "high"
)

// Decision categories the auditor knows about.
const (
	CategoryWeekSetup          = "week_setup"
	CategoryFailurePolicy      = "failure_policy_applied"
	CategoryPhasePeriodization = "phase_periodization"
)

// Defaults applied when a snapshot does not say otherwise.
const (
	DefaultPhase              = PhaseUnknown
	DefaultFatigueExpectation = FatigueNormal
	DefaultRIRTarget          = 2.5
	DefaultFatigue            = 5.0
	DefaultAdherence          = 1.0
	UnknownName               = "unknown"
)

// Feedback is the normalised subjective feedback for a week.
type Feedback struct {
	Fatigue   float64 `json:"fatigue"`
	Adherence float64 `json:"adherence"`
}

// Decision is one decision-trace entry with its context decoded.
type Decision struct {
	Category string         `json:"category"`
	Context  map[string]any `json:"context,omitempty"`
}

// Record is the normalised view of one week. Treat it as read-only once built.
type Record struct {
	Week                  int             `json:"week"`
	Feedback              *Feedback       `json:"feedback,omitempty"`
	Phase                 Phase           `json:"phase"`
	FatigueExpectation    FatigueLevel    `json:"fatigue_expectation"`
	RIRTarget             float64         `json:"rir_target"`
	Volume                Volume          `json:"volume_by_muscle"`
	AllowFailureCount     int             `json:"allow_failure_count"`
	AllowFailureExercises []string        `json:"allow_failure_exercises,omitempty"`
	IntensificationCount  int             `json:"intensification_count"`
	PrescriptionCount     int             `json:"prescription_count"`
	BlockCount            int             `json:"block_count"`
	Decisions             []Decision      `json:"decisions"`
	Source                string          `json:"source,omitempty"`
	Digest                string          `json:"digest"`
	Raw                   json.RawMessage `json:"-"`
}

// HasFeedback reports whether the trainee reported feedback this week.
func (r *Record) HasFeedback() bool {
	return r.Feedback != nil
}

// Categories returns the distinct decision categories in first-seen order.
func (r *Record) Categories() []string {
	seen := make(map[string]bool, len(r.Decisions))
	var out []string
	for _, d := range r.Decisions {
		if !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}

// MuscleSets is one (muscle, sets) entry.
type MuscleSets struct {
	Muscle string `json:"muscle"`
	Sets   int    `json:"sets"`
}

// Volume is the weekly set count per muscle group, keeping the order in which
// muscles first appeared in the plan.
type Volume struct {
	order []string
	sets  map[string]int
}

// NewVolume builds a Volume. Repeated muscles are summed.
func NewVolume(entries ...MuscleSets) Volume {
	var v Volume
	for _, e := range entries {
		v.add(e.Muscle, e.Sets)
	}
	return v
}

func (v *Volume) add(muscle string, sets int) {
	if v.sets == nil {
		v.sets = make(map[string]int)
	}
	if _, ok := v.sets[muscle]; !ok {
		v.order = append(v.order, muscle)
	}
	v.sets[muscle] += sets
}

// Sets returns the sets for a muscle, zero when absent.
func (v Volume) Sets(muscle string) int {
	return v.sets[muscle]
}

// Has reports whether the muscle was prescribed at all.
func (v Volume) Has(muscle string) bool {
	_, ok := v.sets[muscle]
	return ok
}

// Muscles returns muscle names in first-seen order.
func (v Volume) Muscles() []string {
	return slices.Clone(v.order)
}

// Len is the number of distinct muscles.
func (v Volume) Len() int {
	return len(v.order)
}

// Total is the sum of sets across all muscles.
func (v Volume) Total() int {
	total := 0
	for _, s := range v.sets {
		total += s
	}
	return total
}

// Mean is the average sets per muscle. An empty volume has mean 0.
func (v Volume) Mean() float64 {
	return float64(v.Total()) / float64(max(v.Len(), 1))
}

// MarshalJSON encodes the volume as an object.
func (v Volume) MarshalJSON() ([]byte, error) {
	if v.sets == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.sets)
}
