// Package metrics exports audit results in the Prometheus text format, for
// node_exporter's textfile collector or any scraper of static files.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/report"
)

const (
	namespace = "trainaudit"
	subsystem = "audit"
)

// Recorder holds the gauges for one audit run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	scores           *prometheus.GaugeVec
	violations       *prometheus.GaugeVec
	violationsByRule *prometheus.GaugeVec
	verdict          *prometheus.GaugeVec
	weeks            prometheus.Gauge
	failureRate      prometheus.Gauge
	transitions      prometheus.Gauge
	incoherent       prometheus.Gauge
	chaoticWeeks     prometheus.Gauge
	cycles           prometheus.Gauge
	traceGaps        prometheus.Gauge
	lastRun          prometheus.Gauge
}

// NewRecorder registers every gauge on a fresh registry.
func NewRecorder() *Recorder {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	gaugeVec := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		}, labels)
	}

	r := &Recorder{
		registry:         prometheus.NewRegistry(),
		scores:           gaugeVec("score", "Final score (0-100) by kind.", "kind"),
		violations:       gaugeVec("violations", "Invariant violations by severity.", "severity"),
		violationsByRule: gaugeVec("rule_violations", "Invariant violations by rule.", "rule"),
		verdict:          gaugeVec("verdict", "1 for the verdict reached, 0 otherwise.", "verdict"),
		weeks:            gauge("weeks", "Weeks in the audited timeline."),
		failureRate:      gauge("failure_rate_percent", "Share of prescriptions allowing failure, in percent."),
		transitions:      gauge("transitions_evaluated", "Week transitions classified for directionality."),
		incoherent:       gauge("transitions_incoherent", "Transitions whose response contradicts the signal."),
		chaoticWeeks:     gauge("chaotic_weeks", "Weeks with a volume swing above the chaos threshold."),
		cycles:           gauge("reversible_cycles", "Detected reduce-then-recover cycles."),
		traceGaps:        gauge("trace_gap_weeks", "Weeks missing required decision categories."),
		lastRun:          gauge("last_run_timestamp_seconds", "Unix timestamp of the audit run."),
	}

	r.registry.MustRegister(
		r.scores, r.violations, r.violationsByRule, r.verdict,
		r.weeks, r.failureRate, r.transitions, r.incoherent,
		r.chaoticWeeks, r.cycles, r.traceGaps, r.lastRun,
	)
	return r
}

// Registry exposes the registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe sets every gauge from a report. Labels for rules, severities and
// verdicts are always present, at zero when not reached.
func (r *Recorder) Observe(rep *report.Report) {
	res := rep.Result

	r.scores.WithLabelValues(string(audit.ScoreScientific)).Set(float64(res.Scores.Scientific))
	r.scores.WithLabelValues(string(audit.ScoreClinical)).Set(float64(res.Scores.Clinical))
	r.scores.WithLabelValues(string(audit.ScoreRobustness)).Set(float64(res.Scores.Robustness))

	r.violations.WithLabelValues(string(audit.SeverityP0)).Set(float64(res.P0))
	r.violations.WithLabelValues(string(audit.SeverityP1)).Set(float64(res.P1))

	byRule := make(map[audit.Rule]int, len(audit.Rules))
	for _, v := range res.Violations {
		byRule[v.Rule]++
	}
	for _, rule := range audit.Rules {
		r.violationsByRule.WithLabelValues(string(rule)).Set(float64(byRule[rule]))
	}

	for _, v := range []audit.Verdict{audit.VerdictCorrect, audit.VerdictUsable, audit.VerdictIncorrect} {
		value := 0.0
		if v == res.Verdict {
			value = 1
		}
		r.verdict.WithLabelValues(v.Level().String()).Set(value)
	}

	r.weeks.Set(float64(rep.WeekCount))
	r.failureRate.Set(res.FailureUsage.Rate)
	r.transitions.Set(float64(len(res.Directionality.Transitions)))
	r.incoherent.Set(float64(res.Directionality.Incoherent))
	r.chaoticWeeks.Set(float64(len(res.Stability.Chaotic)))
	r.cycles.Set(float64(len(res.Reversibility.Cycles)))
	r.traceGaps.Set(float64(len(res.Traceability.Gaps)))
	r.lastRun.Set(float64(rep.GeneratedAt.Unix()))
}

// WriteTextfile writes the gathered metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
