package audit

import (
	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/timeline"
)

// Cycle is a reduce then recover sequence following a high-fatigue week.
type Cycle struct {
	Weeks  [3]int `json:"weeks"`
	Totals [3]int `json:"totals"`
}

// Reversibility lists detected cycles.
type Reversibility struct {
	// Triggers counts high-fatigue weeks that had two weeks after them.
	Triggers int     `json:"triggers"`
	Cycles   []Cycle `json:"cycles"`
	// Gap is set when the timeline was long enough to contain a cycle but
	// none was found.
	Gap bool `json:"gap"`
}

// AnalyzeReversibility scans consecutive triples (a, b, c) where a reported
// high fatigue. The triple is a cycle when b's total volume dropped below the
// reduce ratio of a's and c's total rose above the recover ratio of b's.
func AnalyzeReversibility(tl *timeline.Timeline, p profile.Profile) Reversibility {
	var r Reversibility
	for _, t := range tl.Triples() {
		if !t.A.HasFeedback() || t.A.Feedback.Fatigue < p.HighFatigue {
			continue
		}
		r.Triggers++

		before, reduced, after := t.A.Volume.Total(), t.B.Volume.Total(), t.C.Volume.Total()
		if float64(reduced) < float64(before)*p.Reversibility.ReduceRatio &&
			float64(after) > float64(reduced)*p.Reversibility.RecoverRatio {
			r.Cycles = append(r.Cycles, Cycle{
				Weeks:  [3]int{t.A.Week, t.B.Week, t.C.Week},
				Totals: [3]int{before, reduced, after},
			})
		}
	}
	r.Gap = tl.Len() >= 3 && len(r.Cycles) == 0
	return r
}
