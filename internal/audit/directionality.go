package audit

import (
	"github.com/roach88/trainaudit/internal/profile"
	"github.com/roach88/trainaudit/internal/timeline"
)

// Signal is the physiological reading of a week's feedback.
type Signal string

const (
	SignalNegative  Signal = "NEGATIVA"
	SignalPositive  Signal = "POSITIVA"
	SignalAmbiguous Signal = "AMBIGUA"
)

// Response is how the plan's mean volume moved between two weeks.
type Response string

const (
	ResponseProgression Response = "PROGRESIÓN"
	ResponseReduction   Response = "REDUCCIÓN"
	ResponseMaintain    Response = "MANTIENE"
)

// ClassifySignal reads fatigue and adherence against the profile thresholds.
func ClassifySignal(fatigue, adherence float64, p profile.Profile) Signal {
	switch {
	case fatigue >= p.HighFatigue || adherence < p.Signal.NegativeAdherence:
		return SignalNegative
	case fatigue <= p.Signal.PositiveFatigue && adherence >= p.Signal.PositiveAdherence:
		return SignalPositive
	default:
		return SignalAmbiguous
	}
}

// ClassifyResponse buckets a mean-volume delta.
func ClassifyResponse(delta, threshold float64) Response {
	switch {
	case delta > threshold:
		return ResponseProgression
	case delta < -threshold:
		return ResponseReduction
	default:
		return ResponseMaintain
	}
}

// Coherent reports whether a response is acceptable for a signal. A negative
// signal forbids progression, a positive one forbids reduction, and an
// ambiguous one accepts anything.
func Coherent(s Signal, r Response) bool {
	switch s {
	case SignalNegative:
		return r != ResponseProgression
	case SignalPositive:
		return r != ResponseReduction
	default:
		return true
	}
}

// Transition is one evaluated week-to-week change.
type Transition struct {
	From     int      `json:"from"`
	To       int      `json:"to"`
	Signal   Signal   `json:"signal"`
	Response Response `json:"response"`
	Delta    float64  `json:"delta"`
	Coherent bool     `json:"coherent"`
}

// Directionality summarises every transition that followed a week with
// feedback.
type Directionality struct {
	Transitions  []Transition `json:"transitions"`
	Skipped      int          `json:"skipped"`
	Progressions int          `json:"progressions"`
	Maintains    int          `json:"maintains"`
	Reductions   int          `json:"reductions"`
	Incoherent   int          `json:"incoherent"`
}

// IncoherenceRate is the share of evaluated transitions that were incoherent,
// zero when none were evaluated.
func (d Directionality) IncoherenceRate() float64 {
	if len(d.Transitions) == 0 {
		return 0
	}
	return float64(d.Incoherent) / float64(len(d.Transitions))
}

// AnalyzeDirectionality classifies each adjacent pair whose earlier week
// carries feedback. It never produces violations or score deltas.
func AnalyzeDirectionality(tl *timeline.Timeline, p profile.Profile) Directionality {
	var d Directionality
	for _, pair := range tl.Pairs() {
		if !pair.Prev.HasFeedback() {
			d.Skipped++
			continue
		}

		fb := pair.Prev.Feedback
		signal := ClassifySignal(fb.Fatigue, fb.Adherence, p)
		delta := pair.Curr.Volume.Mean() - pair.Prev.Volume.Mean()
		response := ClassifyResponse(delta, p.ResponseDelta)
		coherent := Coherent(signal, response)

		switch response {
		case ResponseProgression:
			d.Progressions++
		case ResponseReduction:
			d.Reductions++
		default:
			d.Maintains++
		}
		if !coherent {
			d.Incoherent++
		}

		d.Transitions = append(d.Transitions, Transition{
			From:     pair.Prev.Week,
			To:       pair.Curr.Week,
			Signal:   signal,
			Response: response,
			Delta:    delta,
			Coherent: coherent,
		})
	}
	return d
}
