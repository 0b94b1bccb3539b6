package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/trainaudit/internal/canon"
)

// BlockScope selects which week blocks of plan.weeks are aggregated into a
// Record. Volume, failure counts and the prescription count always share the
// same scope.
type BlockScope string

const (
	// BlockScopeAll sums every block nested in the snapshot.
	BlockScopeAll BlockScope = "all"
	// BlockScopeFirst uses only the first block, the snapshot's own week.
	BlockScopeFirst BlockScope = "first"
)

// Valid reports whether s is a known scope.
func (s BlockScope) Valid() bool {
	return s == BlockScopeAll || s == BlockScopeFirst
}

// Options controls parsing.
type Options struct {
	Scope  BlockScope // defaults to BlockScopeAll
	Source string     // reported in errors and carried on the Record
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes, validates and normalises one raw weekly snapshot.
// Any structural problem yields a *MalformedSnapshotError.
func Parse(raw []byte, opts Options) (*Record, error) {
	if opts.Scope == "" {
		opts.Scope = BlockScopeAll
	}
	if !opts.Scope.Valid() {
		return nil, fmt.Errorf("unknown block scope %q", opts.Scope)
	}

	doc, err := decodeDocument(raw, opts.Source)
	if err != nil {
		return nil, err
	}

	digest, err := canon.SnapshotDigest(raw)
	if err != nil {
		return nil, &MalformedSnapshotError{Source: opts.Source, Reason: "cannot canonicalise", Err: err}
	}

	rec := &Record{
		Week:               *doc.WeekNumber,
		Phase:              DefaultPhase,
		FatigueExpectation: DefaultFatigueExpectation,
		RIRTarget:          DefaultRIRTarget,
		BlockCount:         len(doc.Plan.Weeks),
		Source:             opts.Source,
		Digest:             digest,
		Raw:                bytes.Clone(raw),
	}

	if doc.FeedbackInput != nil {
		rec.Feedback = normalizeFeedback(doc.FeedbackInput)
	}

	if err := applyDecisions(rec, doc.Decisions, opts.Source); err != nil {
		return nil, err
	}

	aggregatePlan(rec, doc.Plan, opts.Scope)
	return rec, nil
}

func decodeDocument(raw []byte, source string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "$"
			}
			return nil, &MalformedSnapshotError{
				Source: source,
				Field:  field,
				Reason: fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value),
			}
		}
		return nil, &MalformedSnapshotError{Source: source, Reason: "invalid JSON", Err: err}
	}

	if err := validate.Struct(&doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, &MalformedSnapshotError{
				Source: source,
				Field:  fieldPath(fe.Namespace()),
				Reason: describeTag(fe),
			}
		}
		return nil, &MalformedSnapshotError{Source: source, Reason: "validation failed", Err: err}
	}
	return &doc, nil
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required key missing"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func normalizeFeedback(in *FeedbackInput) *Feedback {
	fb := &Feedback{Fatigue: DefaultFatigue, Adherence: DefaultAdherence}
	if in.Fatigue != nil {
		fb.Fatigue = *in.Fatigue
	}
	if in.Adherence != nil {
		fb.Adherence = *in.Adherence
	}
	return fb
}

// applyDecisions decodes decision contexts and hoists the first week_setup
// entry's phase, fatigue expectation and RIR target.
func applyDecisions(rec *Record, entries []DecisionEntry, source string) error {
	rec.Decisions = make([]Decision, 0, len(entries))
	setupSeen := false

	for i, e := range entries {
		d := Decision{Category: norm.NFC.String(e.Category)}
		if hasValue(e.Context) {
			if err := json.Unmarshal(e.Context, &d.Context); err != nil {
				return &MalformedSnapshotError{
					Source: source,
					Field:  fmt.Sprintf("decisions[%d].context", i),
					Reason: "context must be an object",
					Err:    err,
				}
			}
		}
		rec.Decisions = append(rec.Decisions, d)

		if setupSeen || d.Category != CategoryWeekSetup {
			continue
		}
		setupSeen = true

		if !hasValue(e.Context) {
			continue
		}
		var ws weekSetup
		if err := json.Unmarshal(e.Context, &ws); err != nil {
			return &MalformedSnapshotError{
				Source: source,
				Field:  fmt.Sprintf("decisions[%d].context", i),
				Reason: "week_setup context has wrong shape",
				Err:    err,
			}
		}
		if ws.Phase != nil {
			rec.Phase = Phase(*ws.Phase)
		}
		if ws.FatigueExpectation != nil {
			rec.FatigueExpectation = FatigueLevel(*ws.FatigueExpectation)
		}
		if ws.RIRTarget != nil {
			rec.RIRTarget = *ws.RIRTarget
		}
	}
	return nil
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// aggregatePlan accumulates volume, failure and intensification counts over
// the blocks selected by scope.
func aggregatePlan(rec *Record, plan *Plan, scope BlockScope) {
	blocks := plan.Weeks
	if scope == BlockScopeFirst && len(blocks) > 1 {
		blocks = blocks[:1]
	}

	for _, block := range blocks {
		for _, session := range block.Sessions {
			for _, p := range session.Prescriptions {
				rec.PrescriptionCount++
				rec.Volume.add(refName(p.MuscleGroup), p.Sets)

				if p.AllowFailureOnLastSet {
					rec.AllowFailureCount++
					rec.AllowFailureExercises = append(rec.AllowFailureExercises, refName(p.Exercise))
				}
				if len(p.Techniques) > 0 {
					rec.IntensificationCount++
				}
			}
		}
	}
}

func refName(ref *NamedRef) string {
	if ref == nil || ref.Name == "" {
		return UnknownName
	}
	return norm.NFC.String(ref.Name)
}
