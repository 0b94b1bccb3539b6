package audit

import (
	"fmt"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/timeline"
)

// FailureTier classifies the overall failure rate.
type FailureTier string

const (
	FailureDominant     FailureTier = "dominant"
	FailureModerate     FailureTier = "moderate"
	FailureConservative FailureTier = "conservative"
	// FailureUnrated means the timeline had no prescriptions to rate.
	FailureUnrated FailureTier = "unrated"
)

// Score adjustments for failure usage.
const (
	dominantFailurePenalty = -20
	moderateFailurePenalty = -10
	conservativeBonus      = 20
	deloadFailurePenalty   = -30
)

// FailureUsage holds the failure-rate assessment.
type FailureUsage struct {
	AllowFailure  int          `json:"allow_failure"`
	Prescriptions int          `json:"prescriptions"`
	Rate          float64      `json:"rate"`
	Tier          FailureTier  `json:"tier"`
	DeloadWeeks   []int        `json:"deload_weeks,omitempty"`
	Deltas        []ScoreDelta `json:"deltas"`
}

// ClassifyFailureRate buckets a failure rate given in percent.
func ClassifyFailureRate(rate float64, p profile.Profile) FailureTier {
	switch {
	case rate > p.FailureRate.Dominant:
		return FailureDominant
	case rate > p.FailureRate.Moderate:
		return FailureModerate
	default:
		return FailureConservative
	}
}

// AnalyzeFailureUsage computes the share of prescriptions allowing failure
// across the timeline and penalises every deload week that allowed it. Both
// counts come from the same block scope.
func AnalyzeFailureUsage(tl *timeline.Timeline, p profile.Profile) FailureUsage {
	f := FailureUsage{Tier: FailureUnrated}
	for i := range tl.Len() {
		w := tl.At(i)
		f.AllowFailure += w.AllowFailureCount
		f.Prescriptions += w.PrescriptionCount
	}

	if f.Prescriptions > 0 {
		f.Rate = float64(f.AllowFailure) / float64(f.Prescriptions) * 100
		f.Tier = ClassifyFailureRate(f.Rate, p)
		switch f.Tier {
		case FailureDominant:
			f.Deltas = append(f.Deltas, ScoreDelta{ScoreScientific, dominantFailurePenalty,
				fmt.Sprintf("failure rate %.1f%% is dominant", f.Rate)})
		case FailureModerate:
			f.Deltas = append(f.Deltas, ScoreDelta{ScoreScientific, moderateFailurePenalty,
				fmt.Sprintf("failure rate %.1f%% is moderate", f.Rate)})
		default:
			f.Deltas = append(f.Deltas, ScoreDelta{ScoreScientific, conservativeBonus,
				fmt.Sprintf("failure rate %.1f%% is conservative", f.Rate)})
		}
	}

	for i := range tl.Len() {
		w := tl.At(i)
		if w.Phase == snapshot.PhaseDeload && w.AllowFailureCount > 0 {
			f.DeloadWeeks = append(f.DeloadWeeks, w.Week)
			f.Deltas = append(f.Deltas, ScoreDelta{ScoreScientific, deloadFailurePenalty,
				fmt.Sprintf("failure allowed during deload in week %d", w.Week)})
		}
	}
	return f
}
