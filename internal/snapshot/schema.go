package snapshot

import "encoding/json"

// Document is the wire schema of a weekly snapshot. Pointer fields distinguish
// "absent" from zero values.
type Document struct {
	WeekNumber    *int            `json:"weekNumber" validate:"required,gt=0"`
	FeedbackInput *FeedbackInput  `json:"feedbackInput,omitempty"`
	Plan          *Plan           `json:"plan" validate:"required"`
	Decisions     []DecisionEntry `json:"decisions" validate:"required"`
}

// FeedbackInput is the trainee's subjective report for the week.
type FeedbackInput struct {
	Fatigue   *float64 `json:"fatigue,omitempty" validate:"omitempty,gte=0,lte=10"`
	Adherence *float64 `json:"adherence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Plan holds the prescribed training. The engine nests a list of week blocks
// inside every snapshot; the first block is the snapshot's own week.
type Plan struct {
	Weeks []WeekBlock `json:"weeks" validate:"dive"`
}

// WeekBlock is one week of sessions inside a plan.
type WeekBlock struct {
	Sessions []Session `json:"sessions" validate:"dive"`
}

// Session is one training day.
type Session struct {
	Prescriptions []Prescription `json:"prescriptions" validate:"dive"`
}

// Prescription is one exercise prescribed in a session.
type Prescription struct {
	MuscleGroup           *NamedRef         `json:"muscleGroup,omitempty"`
	Exercise              *NamedRef         `json:"exercise,omitempty"`
	Sets                  int               `json:"sets" validate:"gte=0"`
	AllowFailureOnLastSet bool              `json:"allowFailureOnLastSet,omitempty"`
	Techniques            []json.RawMessage `json:"techniques,omitempty"`
}

// NamedRef is an embedded reference carrying a display name.
type NamedRef struct {
	Name string `json:"name"`
}

// DecisionEntry is one entry of the engine's decision trace.
type DecisionEntry struct {
	Category string          `json:"category"`
	Context  json.RawMessage `json:"context,omitempty"`
}

// weekSetup is the context of the "week_setup" decision.
type weekSetup struct {
	Phase              *string  `json:"phase"`
	FatigueExpectation *string  `json:"fatigueExpectation"`
	RIRTarget          *float64 `json:"rirTarget"`
}
