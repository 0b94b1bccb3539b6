package audit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/timeline"
)

const (
	traceGapPenalty    = -5
	traceCompleteBonus = 20
)

// TraceGap is a week missing required decision categories.
type TraceGap struct {
	Week    int      `json:"week"`
	Missing []string `json:"missing"`
}

// Traceability holds decision-trace coverage.
type Traceability struct {
	Average  float64      `json:"average"`
	Gaps     []TraceGap   `json:"gaps,omitempty"`
	Complete bool         `json:"complete"`
	Deltas   []ScoreDelta `json:"deltas"`
}

// MissingCategories returns the required categories absent from present, in
// required order.
func MissingCategories(present, required []string) []string {
	var missing []string
	for _, c := range required {
		if !slices.Contains(present, c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// AnalyzeTraceability averages decisions per week and checks each week for
// the required categories. Each week with a gap costs robustness; a complete
// trace earns a bonus. An empty timeline averages zero.
func AnalyzeTraceability(tl *timeline.Timeline, p profile.Profile) Traceability {
	var t Traceability
	total := 0
	for i := range tl.Len() {
		w := tl.At(i)
		total += len(w.Decisions)

		if missing := MissingCategories(w.Categories(), p.RequiredCategories); len(missing) > 0 {
			t.Gaps = append(t.Gaps, TraceGap{Week: w.Week, Missing: missing})
			t.Deltas = append(t.Deltas, ScoreDelta{ScoreRobustness, traceGapPenalty,
				fmt.Sprintf("week %d missing %s", w.Week, strings.Join(missing, ", "))})
		}
	}

	if tl.Len() > 0 {
		t.Average = float64(total) / float64(tl.Len())
	}
	if t.Average >= p.MinDecisions {
		t.Complete = true
		t.Deltas = append(t.Deltas, ScoreDelta{ScoreRobustness, traceCompleteBonus,
			fmt.Sprintf("%.1f decisions per week", t.Average)})
	}
	return t
}
