package audit

import (
	"math"

	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/timeline"
)

// MuscleVariance is the population variance of one muscle's weekly volume.
type MuscleVariance struct {
	Muscle   string  `json:"muscle"`
	Volumes  []int   `json:"volumes"`
	Variance float64 `json:"variance"`
}

// ChaoticWeek is a week whose volume for a watched muscle swung beyond the
// threshold relative to the previous week. Only the first offending muscle is
// recorded.
type ChaoticWeek struct {
	Week   int     `json:"week"`
	Muscle string  `json:"muscle"`
	From   int     `json:"from"`
	To     int     `json:"to"`
	Change float64 `json:"change"`
}

// Stability holds variance figures and chaotic weeks.
type Stability struct {
	Variances []MuscleVariance `json:"variances"`
	Chaotic   []ChaoticWeek    `json:"chaotic_weeks"`
}

// Variance is the population variance of values. Fewer than two samples
// yield zero.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}

// AnalyzeStability computes variances for the profile's variance muscles and
// scans adjacent weeks for swings in the watched muscles. Weeks where the
// previous volume was zero are skipped for that muscle.
func AnalyzeStability(tl *timeline.Timeline, p profile.Profile) Stability {
	var s Stability

	for _, muscle := range p.VarianceMuscles {
		volumes := make([]int, tl.Len())
		samples := make([]float64, tl.Len())
		for i := range tl.Len() {
			volumes[i] = tl.At(i).Volume.Sets(muscle)
			samples[i] = float64(volumes[i])
		}
		s.Variances = append(s.Variances, MuscleVariance{
			Muscle:   muscle,
			Volumes:  volumes,
			Variance: Variance(samples),
		})
	}

	for _, pair := range tl.Pairs() {
		for _, muscle := range p.WatchMuscles {
			before, after := pair.Prev.Volume.Sets(muscle), pair.Curr.Volume.Sets(muscle)
			if before <= 0 {
				continue
			}
			change := math.Abs(float64(after-before)) / float64(before)
			if change > p.ChaosThreshold {
				s.Chaotic = append(s.Chaotic, ChaoticWeek{
					Week:   pair.Curr.Week,
					Muscle: muscle,
					From:   before,
					To:     after,
					Change: change,
				})
				break
			}
		}
	}
	return s
}
