package audit

// BaseScore is where every score starts.
const BaseScore = 50

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Aggregate folds violation penalties and analyzer deltas into the three
// scores. It returns the clamped scores and the raw values before clamping.
func Aggregate(violations []Violation, deltas ...[]ScoreDelta) (final, raw Scores) {
	raw = Scores{Scientific: BaseScore, Clinical: BaseScore, Robustness: BaseScore}

	for _, v := range violations {
		penalty := v.Severity.Penalty()
		raw.add(ScoreScientific, -penalty)
		raw.add(ScoreClinical, -penalty)
	}
	for _, group := range deltas {
		for _, d := range group {
			raw.add(d.Kind, d.Amount)
		}
	}

	final = Scores{
		Scientific: clamp(raw.Scientific),
		Clinical:   clamp(raw.Clinical),
		Robustness: clamp(raw.Robustness),
	}
	return final, raw
}

func clamp(v int) int {
	return min(max(v, MinScore), MaxScore)
}

// Thresholds on the average score.
const (
	correctAverage = 80
	usableAverage  = 60
)

// Decide picks the verdict. The top tier also requires that no P0 violation
// was found.
func Decide(scores Scores, p0 int) Verdict {
	avg := scores.Average()
	switch {
	case avg >= correctAverage && p0 == 0:
		return VerdictCorrect
	case avg >= usableAverage:
		return VerdictUsable
	default:
		return VerdictIncorrect
	}
}
