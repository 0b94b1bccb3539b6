package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/trainaudit/internal/snapshot"
)

// FeedbackSpec is the subjective feedback reported for a synthetic week.
type FeedbackSpec struct {
	Fatigue   float64 `yaml:"fatigue"`
	Adherence float64 `yaml:"adherence"`
}

// PrescriptionSpec is one synthetic prescription.
type PrescriptionSpec struct {
	Muscle       string   `yaml:"muscle"`
	Exercise     string   `yaml:"exercise,omitempty"`
	Sets         int      `yaml:"sets"`
	AllowFailure bool     `yaml:"allow_failure,omitempty"`
	Techniques   []string `yaml:"techniques,omitempty"`
}

// P is shorthand for a plain prescription.
func P(muscle string, sets int) PrescriptionSpec {
	return PrescriptionSpec{Muscle: muscle, Sets: sets}
}

// Failing returns a copy that permits failure on the last set.
func (p PrescriptionSpec) Failing() PrescriptionSpec {
	p.AllowFailure = true
	return p
}

// WithTechniques returns a copy carrying intensification techniques.
func (p PrescriptionSpec) WithTechniques(techniques ...string) PrescriptionSpec {
	p.Techniques = techniques
	return p
}

// WeekSpec describes a synthetic weekly snapshot compactly. It is used by unit
// tests and decoded directly from scenario YAML.
type WeekSpec struct {
	Week               int                `yaml:"week"`
	Feedback           *FeedbackSpec      `yaml:"feedback,omitempty"`
	Phase              string             `yaml:"phase,omitempty"`
	FatigueExpectation string             `yaml:"fatigue_expectation,omitempty"`
	RIRTarget          *float64           `yaml:"rir_target,omitempty"`
	Prescriptions      []PrescriptionSpec `yaml:"prescriptions,omitempty"`
	// Lookahead becomes a second, redundant week block in plan.weeks.
	Lookahead []PrescriptionSpec `yaml:"lookahead,omitempty"`
	// Categories overrides the decision categories. Nil means week_setup,
	// phase_periodization and failure_policy_applied.
	Categories []string `yaml:"categories,omitempty"`
	// ExtraDecisions appends that many filler decisions.
	ExtraDecisions int `yaml:"extra_decisions,omitempty"`
}

// Week starts a WeekSpec with the given prescriptions.
func Week(n int, prescriptions ...PrescriptionSpec) WeekSpec {
	return WeekSpec{Week: n, Prescriptions: prescriptions}
}

// WithFeedback returns a copy with feedback set.
func (w WeekSpec) WithFeedback(fatigue, adherence float64) WeekSpec {
	w.Feedback = &FeedbackSpec{Fatigue: fatigue, Adherence: adherence}
	return w
}

// InPhase returns a copy with the week_setup phase set.
func (w WeekSpec) InPhase(phase string) WeekSpec {
	w.Phase = phase
	return w
}

// Expecting returns a copy with the planned fatigue expectation set.
func (w WeekSpec) Expecting(level string) WeekSpec {
	w.FatigueExpectation = level
	return w
}

// WithCategories returns a copy whose decision trace holds exactly these
// categories (plus any extra decisions).
func (w WeekSpec) WithCategories(categories ...string) WeekSpec {
	w.Categories = append([]string{}, categories...)
	return w
}

// WithExtraDecisions returns a copy with n filler decisions appended.
func (w WeekSpec) WithExtraDecisions(n int) WeekSpec {
	w.ExtraDecisions = n
	return w
}

// Document renders the spec as a snapshot wire document.
func (w WeekSpec) Document() snapshot.Document {
	week := w.Week
	doc := snapshot.Document{
		WeekNumber: &week,
		Plan:       &snapshot.Plan{Weeks: []snapshot.WeekBlock{block(w.Prescriptions)}},
		Decisions:  w.decisions(),
	}
	if len(w.Lookahead) > 0 {
		doc.Plan.Weeks = append(doc.Plan.Weeks, block(w.Lookahead))
	}
	if w.Feedback != nil {
		fatigue, adherence := w.Feedback.Fatigue, w.Feedback.Adherence
		doc.FeedbackInput = &snapshot.FeedbackInput{Fatigue: &fatigue, Adherence: &adherence}
	}
	return doc
}

func block(prescriptions []PrescriptionSpec) snapshot.WeekBlock {
	session := snapshot.Session{Prescriptions: make([]snapshot.Prescription, 0, len(prescriptions))}
	for _, p := range prescriptions {
		exercise := p.Exercise
		if exercise == "" {
			exercise = p.Muscle + " exercise"
		}
		sp := snapshot.Prescription{
			MuscleGroup:           &snapshot.NamedRef{Name: p.Muscle},
			Exercise:              &snapshot.NamedRef{Name: exercise},
			Sets:                  p.Sets,
			AllowFailureOnLastSet: p.AllowFailure,
		}
		for _, tech := range p.Techniques {
			raw, _ := json.Marshal(tech)
			sp.Techniques = append(sp.Techniques, raw)
		}
		session.Prescriptions = append(session.Prescriptions, sp)
	}
	return snapshot.WeekBlock{Sessions: []snapshot.Session{session}}
}

func (w WeekSpec) decisions() []snapshot.DecisionEntry {
	categories := w.Categories
	if categories == nil {
		categories = []string{
			snapshot.CategoryWeekSetup,
			snapshot.CategoryPhasePeriodization,
			snapshot.CategoryFailurePolicy,
		}
	}

	out := make([]snapshot.DecisionEntry, 0, len(categories)+w.ExtraDecisions)
	for _, c := range categories {
		entry := snapshot.DecisionEntry{Category: c}
		if c == snapshot.CategoryWeekSetup {
			entry.Context = w.setupContext()
		}
		out = append(out, entry)
	}
	for i := 0; i < w.ExtraDecisions; i++ {
		ctx, _ := json.Marshal(map[string]any{"index": i})
		out = append(out, snapshot.DecisionEntry{Category: "set_progression", Context: ctx})
	}
	return out
}

func (w WeekSpec) setupContext() json.RawMessage {
	ctx := map[string]any{}
	if w.Phase != "" {
		ctx["phase"] = w.Phase
	}
	if w.FatigueExpectation != "" {
		ctx["fatigueExpectation"] = w.FatigueExpectation
	}
	if w.RIRTarget != nil {
		ctx["rirTarget"] = *w.RIRTarget
	}
	raw, _ := json.Marshal(ctx)
	return raw
}

// JSON renders the spec as snapshot JSON.
func (w WeekSpec) JSON() ([]byte, error) {
	return json.MarshalIndent(w.Document(), "", "  ")
}

// FileName is the conventional snapshot file name for the week.
func (w WeekSpec) FileName() string {
	return fmt.Sprintf("week_%02d.json", w.Week)
}

// BuildRecords parses the specs into records in the given block scope.
func BuildRecords(scope snapshot.BlockScope, specs ...WeekSpec) ([]*snapshot.Record, error) {
	records := make([]*snapshot.Record, 0, len(specs))
	for _, spec := range specs {
		raw, err := spec.JSON()
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", spec.Week, err)
		}
		rec, err := snapshot.Parse(raw, snapshot.Options{Scope: scope, Source: spec.FileName()})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Records is BuildRecords with the default scope, failing the test on error.
func Records(t testing.TB, specs ...WeekSpec) []*snapshot.Record {
	t.Helper()
	records, err := BuildRecords(snapshot.BlockScopeAll, specs...)
	if err != nil {
		t.Fatalf("build records: %v", err)
	}
	return records
}

// WriteWeeks writes each spec to dir as week_NN.json.
func WriteWeeks(t testing.TB, dir string, specs ...WeekSpec) {
	t.Helper()
	for _, spec := range specs {
		raw, err := spec.JSON()
		if err != nil {
			t.Fatalf("render week %d: %v", spec.Week, err)
		}
		if err := os.WriteFile(filepath.Join(dir, spec.FileName()), raw, 0o644); err != nil {
			t.Fatalf("write week %d: %v", spec.Week, err)
		}
	}
}
