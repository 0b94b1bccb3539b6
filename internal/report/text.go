package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/trainaudit/internal/audit"
)

const narrativeWidth = 76

// WriteText renders the human-readable report. Sections always appear in the
// same order and the output depends only on the report's contents.
func WriteText(w io.Writer, r *Report) error {
	p := &printer{w: w}
	res := r.Result

	p.section("Longitudinal Audit")
	p.line("  Run:          %s", r.RunID)
	p.line("  Generated:    %s", r.GeneratedAt.Format(time.RFC3339))
	if r.SourceDir != "" {
		p.line("  Source:       %s", r.SourceDir)
	}
	p.line("  Weeks:        %d", r.WeekCount)
	p.line("  Block scope:  %s", r.BlockScope)
	p.line("  Timeline:     %s", r.TimelineDigest)

	p.section("1. Timeline")
	writeWeeks(p, res.Weeks)

	p.section("2. Invariants")
	writeViolations(p, res.Violations)

	p.section("3. Directionality")
	writeDirectionality(p, res.Directionality)

	p.section("4. Stability")
	writeStability(p, res.Stability)

	p.section("5. Reversibility")
	writeReversibility(p, res.Reversibility)

	p.section("6. Failure Usage")
	writeFailureUsage(p, res.FailureUsage)

	p.section("7. Traceability")
	writeTraceability(p, res.Traceability)

	p.section("8. Scores")
	p.line("  Scientific:   %d/100", res.Scores.Scientific)
	p.line("  Clinical:     %d/100", res.Scores.Clinical)
	p.line("  Robustness:   %d/100", res.Scores.Robustness)
	p.line("  Average:      %.1f", res.Average)

	p.section("9. Verdict")
	p.line("  %s", strings.ToUpper(string(res.Verdict)))

	p.section("10. Justification")
	for _, l := range wrap(r.Narrative, narrativeWidth) {
		p.line("  %s", l)
	}
	return p.err
}

func writeWeeks(p *printer, weeks []audit.WeekSummary) {
	if len(weeks) == 0 {
		p.line("  (no weeks)")
		return
	}
	for _, w := range weeks {
		fields := []string{
			fmt.Sprintf("  Week %2d: %-15s", w.Week, w.State),
			fmt.Sprintf("risk=%-5s", w.Risk),
			fmt.Sprintf("phase=%-15s", w.Phase),
			fmt.Sprintf("RIR=%.1f", w.RIRTarget),
			fmt.Sprintf("failure=%d", w.AllowFailure),
			fmt.Sprintf("techniques=%d", w.Intensification),
			fmt.Sprintf("sets=%d", w.TotalSets),
		}
		for _, m := range w.Watched {
			fields = append(fields, fmt.Sprintf("%s=%d", m.Muscle, m.Sets))
		}
		p.line("%s", strings.Join(fields, " "))
	}
}

func writeViolations(p *printer, violations []audit.Violation) {
	if len(violations) == 0 {
		p.line("  No violations")
		return
	}
	for _, v := range violations {
		p.line("  Week %2d | %-12s | %-28s | %s | %s", v.Week, v.Muscle, v.Rule.Label(), v.Severity, v.Details)
	}
	p.line("  Total: %d (P0=%d, P1=%d)",
		len(violations), audit.CountSeverity(violations, audit.SeverityP0), audit.CountSeverity(violations, audit.SeverityP1))
}

func writeDirectionality(p *printer, d audit.Directionality) {
	if len(d.Transitions) == 0 {
		p.line("  No transitions evaluated")
	}
	for _, t := range d.Transitions {
		mark := "coherent"
		if !t.Coherent {
			mark = "INCOHERENT"
		}
		p.line("  Week %d→%d: signal=%-9s response=%-11s Δvol=%+.1f  %s", t.From, t.To, t.Signal, t.Response, t.Delta, mark)
	}
	if d.Skipped > 0 {
		p.line("  Skipped %d transitions without feedback", d.Skipped)
	}
	p.line("  Summary: %d progressions, %d maintains, %d reductions; %d of %d incoherent (%.1f%%)",
		d.Progressions, d.Maintains, d.Reductions, d.Incoherent, len(d.Transitions), d.IncoherenceRate()*100)
}

func writeStability(p *printer, s audit.Stability) {
	for _, v := range s.Variances {
		p.line("  Variance %s: %.2f (%s)", v.Muscle, v.Variance, joinInts(v.Volumes, ", "))
	}
	if len(s.Chaotic) == 0 {
		p.line("  No chaotic oscillations")
		return
	}
	for _, c := range s.Chaotic {
		p.line("  Chaotic week %d: %s changed %.0f%% (%d→%d)", c.Week, c.Muscle, c.Change*100, c.From, c.To)
	}
	p.line("  Chaotic weeks: %d", len(s.Chaotic))
}

func writeReversibility(p *printer, r audit.Reversibility) {
	for _, c := range r.Cycles {
		p.line("  Weeks %d-%d-%d: reversible cycle (%d → %d → %d)",
			c.Weeks[0], c.Weeks[1], c.Weeks[2], c.Totals[0], c.Totals[1], c.Totals[2])
	}
	p.line("  High-fatigue triggers: %d", r.Triggers)
	if r.Gap {
		p.line("  Gap: no reversible cycle detected")
	}
}

func writeFailureUsage(p *printer, f audit.FailureUsage) {
	if f.Tier == audit.FailureUnrated {
		p.line("  Rate: no prescriptions")
	} else {
		p.line("  Rate: %d/%d (%.1f%%) %s", f.AllowFailure, f.Prescriptions, f.Rate, f.Tier)
	}
	for _, week := range f.DeloadWeeks {
		p.line("  Week %d: failure allowed during deload", week)
	}
	writeDeltas(p, f.Deltas)
}

func writeTraceability(p *printer, t audit.Traceability) {
	p.line("  Average decisions per week: %.1f", t.Average)
	for _, g := range t.Gaps {
		p.line("  Week %d missing: %s", g.Week, strings.Join(g.Missing, ", "))
	}
	if t.Complete {
		p.line("  Trace complete")
	} else {
		p.line("  Trace limited")
	}
	writeDeltas(p, t.Deltas)
}

func writeDeltas(p *printer, deltas []audit.ScoreDelta) {
	for _, d := range deltas {
		p.line("  %s %+d: %s", d.Kind, d.Amount, d.Reason)
	}
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

// wrap breaks text into lines of at most width bytes, never splitting words.
func wrap(text string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// printer stops writing after the first error.
type printer struct {
	w     io.Writer
	err   error
	wrote bool
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
	p.wrote = true
}

func (p *printer) section(title string) {
	if p.wrote {
		p.line("")
	}
	p.line("=== %s ===", title)
}
