package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/snapshot"
)

// Run is the headline of one archived audit.
type Run struct {
	Seq            int64               `json:"seq"`
	ID             string              `json:"id"`
	GeneratedAt    time.Time           `json:"generated_at"`
	SourceDir      string              `json:"source_dir"`
	BlockScope     snapshot.BlockScope `json:"block_scope"`
	TimelineDigest string              `json:"timeline_digest"`
	WeekCount      int                 `json:"week_count"`
	Scores         audit.Scores        `json:"scores"`
	Verdict        audit.Verdict       `json:"verdict"`
	P0             int                 `json:"p0"`
	P1             int                 `json:"p1"`
}

const runColumns = `seq, id, generated_at, source_dir, block_scope, timeline_digest, week_count,
	scientific, clinical, robustness, verdict, p0, p1`

// ListRuns returns the most recent runs first. A non-positive limit returns
// every run.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// RunsForTimeline returns every run over the given timeline digest, oldest
// first.
func (a *Archive) RunsForTimeline(ctx context.Context, digest string) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE timeline_digest = ?
		ORDER BY seq ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// Run returns one archived run. Returns ErrRunNotFound when absent.
func (a *Archive) Run(ctx context.Context, id string) (Run, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ReportJSON returns the canonical JSON of an archived report.
func (a *Archive) ReportJSON(ctx context.Context, id string) ([]byte, error) {
	var data string
	err := a.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return []byte(data), nil
}

// Violations returns a run's violations in their original order.
func (a *Archive) Violations(ctx context.Context, runID string) ([]audit.Violation, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT week, muscle, rule, severity, details
		FROM violations
		WHERE run_id = ?
		ORDER BY ord ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	violations := []audit.Violation{}
	for rows.Next() {
		var v audit.Violation
		var rule, severity string
		if err := rows.Scan(&v.Week, &v.Muscle, &rule, &severity, &v.Details); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Rule, v.Severity = audit.Rule(rule), audit.Severity(severity)
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return violations, nil
}

// Transitions returns a run's evaluated transitions in order.
func (a *Archive) Transitions(ctx context.Context, runID string) ([]audit.Transition, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT from_week, to_week, signal, response, delta, coherent
		FROM transitions
		WHERE run_id = ?
		ORDER BY ord ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	transitions := []audit.Transition{}
	for rows.Next() {
		var t audit.Transition
		var signal, response string
		var coherent int
		if err := rows.Scan(&t.From, &t.To, &signal, &response, &t.Delta, &coherent); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.Signal, t.Response, t.Coherent = audit.Signal(signal), audit.Response(response), coherent != 0
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return transitions, nil
}

// WeekDigests returns the snapshot digest of every week in a run.
func (a *Archive) WeekDigests(ctx context.Context, runID string) (map[int]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT week, digest FROM weeks WHERE run_id = ? ORDER BY week ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query weeks: %w", err)
	}
	defer rows.Close()

	out := map[int]string{}
	for rows.Next() {
		var week int
		var digest string
		if err := rows.Scan(&week, &digest); err != nil {
			return nil, fmt.Errorf("scan week: %w", err)
		}
		out[week] = digest
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weeks: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var generatedAt, scope, verdict string
	err := s.Scan(&r.Seq, &r.ID, &generatedAt, &r.SourceDir, &scope, &r.TimelineDigest, &r.WeekCount,
		&r.Scores.Scientific, &r.Scores.Clinical, &r.Scores.Robustness, &verdict, &r.P0, &r.P1)
	if err != nil {
		return Run{}, err
	}
	r.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse generated_at: %w", err)
	}
	r.BlockScope, r.Verdict = snapshot.BlockScope(scope), audit.Verdict(verdict)
	return r, nil
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
