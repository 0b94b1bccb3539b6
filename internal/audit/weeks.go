package audit

import (
	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/timeline"
)

// WeekState is the reconstructed condition of a week.
type WeekState string

const (
	StateHighFatigue     WeekState = "FATIGA ALTA"
	StateModerateFatigue WeekState = "FATIGA MODERADA"
	StateLowAdherence    WeekState = "ADHERENCIA BAJA"
	StateProgression     WeekState = "PROGRESIÓN"
	StateNoFeedback      WeekState = "SIN FEEDBACK"
)

// Risk is derived from reported fatigue alone.
type Risk string

const (
	RiskHigh   Risk = "ALTO"
	RiskMedium Risk = "MEDIO"
	RiskLow    Risk = "BAJO"
	RiskNone   Risk = "N/A"
)

// WeekSummary is one row of the reconstructed timeline.
type WeekSummary struct {
	Week            int                   `json:"week"`
	State           WeekState             `json:"state"`
	Risk            Risk                  `json:"risk"`
	Phase           snapshot.Phase        `json:"phase"`
	Fatigue         *float64              `json:"fatigue,omitempty"`
	Adherence       *float64              `json:"adherence,omitempty"`
	RIRTarget       float64               `json:"rir_target"`
	AllowFailure    int                   `json:"allow_failure"`
	Intensification int                   `json:"intensification"`
	TotalSets       int                   `json:"total_sets"`
	Watched         []snapshot.MuscleSets `json:"watched"`
	Decisions       int                   `json:"decisions"`
	Digest          string                `json:"digest"`
}

// ClassifyWeek derives state and risk from a week's feedback.
func ClassifyWeek(fb *snapshot.Feedback, p profile.Profile) (WeekState, Risk) {
	if fb == nil {
		return StateNoFeedback, RiskNone
	}

	risk := RiskLow
	switch {
	case fb.Fatigue >= p.HighFatigue:
		risk = RiskHigh
	case fb.Fatigue >= p.ModerateFatigue:
		risk = RiskMedium
	}

	switch {
	case fb.Fatigue >= p.HighFatigue:
		return StateHighFatigue, risk
	case fb.Fatigue >= p.ModerateFatigue:
		return StateModerateFatigue, risk
	case fb.Adherence < p.Signal.NegativeAdherence:
		return StateLowAdherence, risk
	default:
		return StateProgression, risk
	}
}

// SummarizeWeeks reconstructs the per-week timeline.
func SummarizeWeeks(tl *timeline.Timeline, p profile.Profile) []WeekSummary {
	out := make([]WeekSummary, 0, tl.Len())
	for i := range tl.Len() {
		w := tl.At(i)
		state, risk := ClassifyWeek(w.Feedback, p)

		s := WeekSummary{
			Week:            w.Week,
			State:           state,
			Risk:            risk,
			Phase:           w.Phase,
			RIRTarget:       w.RIRTarget,
			AllowFailure:    w.AllowFailureCount,
			Intensification: w.IntensificationCount,
			TotalSets:       w.Volume.Total(),
			Decisions:       len(w.Decisions),
			Digest:          w.Digest,
		}
		if w.HasFeedback() {
			fatigue, adherence := w.Feedback.Fatigue, w.Feedback.Adherence
			s.Fatigue, s.Adherence = &fatigue, &adherence
		}
		for _, m := range p.WatchMuscles {
			s.Watched = append(s.Watched, snapshot.MuscleSets{Muscle: m, Sets: w.Volume.Sets(m)})
		}
		out = append(out, s)
	}
	return out
}
