package audit

import (
	"fmt"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/timeline"
)

// CheckInvariants evaluates every rule against every week and returns the
// violations in week order, rule order within a week, and muscle order
// within a rule.
func CheckInvariants(tl *timeline.Timeline, p profile.Profile) []Violation {
	var out []Violation
	for i := 0; i < tl.Len(); i++ {
		w := tl.At(i)
		out = append(out, volumeOverMRV(w, p)...)

		if w.Phase == snapshot.PhaseDeload && w.AllowFailureCount > 0 {
			out = append(out, newViolation(w.Week, NoMuscle, RuleFailureInDeload,
				fmt.Sprintf("%d exercises allow failure during deload", w.AllowFailureCount)))
		}

		if w.FatigueExpectation == snapshot.FatigueHigh && w.AllowFailureCount > 0 {
			out = append(out, newViolation(w.Week, NoMuscle, RuleFailureUnderHighFatigue,
				fmt.Sprintf("%d exercises allow failure with high fatigue expectation", w.AllowFailureCount)))
		}

		if i > 0 {
			out = append(out, progressionAfterHighFatigue(tl.At(i-1), w, p)...)
		}
	}
	return out
}

func volumeOverMRV(w *snapshot.Record, p profile.Profile) []Violation {
	var out []Violation
	for _, muscle := range w.Volume.Muscles() {
		sets, mrv := w.Volume.Sets(muscle), p.MRVFor(muscle)
		if sets > mrv {
			out = append(out, newViolation(w.Week, muscle, RuleVolumeOverMRV,
				fmt.Sprintf("sets=%d > MRV=%d", sets, mrv)))
		}
	}
	return out
}

// progressionAfterHighFatigue flags muscles whose volume grew beyond the
// tolerance right after a week reported as highly fatiguing. A muscle absent
// from the previous week counts as growth from zero.
func progressionAfterHighFatigue(prev, curr *snapshot.Record, p profile.Profile) []Violation {
	if !prev.HasFeedback() || prev.Feedback.Fatigue < p.HighFatigue {
		return nil
	}

	limit := 1 + p.ProgressionTolerance
	var out []Violation
	for _, muscle := range curr.Volume.Muscles() {
		before, after := prev.Volume.Sets(muscle), curr.Volume.Sets(muscle)
		if float64(after) > float64(before)*limit {
			out = append(out, newViolation(curr.Week, muscle, RuleProgressionAfterHighFatigue,
				fmt.Sprintf("volume %d→%d after fatigue %.1f in week %d", before, after, prev.Feedback.Fatigue, prev.Week)))
		}
	}
	return out
}
