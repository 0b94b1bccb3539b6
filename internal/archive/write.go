package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/trainaudit/internal/report"
)

// SaveRun stores a report and its findings in one transaction. Saving a run
// ID that is already archived is a no-op, so retries are safe.
func (a *Archive) SaveRun(ctx context.Context, r *report.Report) error {
	reportJSON, err := marshalReport(r)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res := r.Result
	inserted, err := insertRun(ctx, tx, r, reportJSON)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if !inserted {
		return nil
	}

	for _, w := range res.Weeks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weeks
			(run_id, week, digest, state, risk, phase, total_sets, allow_failure, decisions)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.RunID, w.Week, w.Digest, string(w.State), string(w.Risk), string(w.Phase),
			w.TotalSets, w.AllowFailure, w.Decisions); err != nil {
			return fmt.Errorf("save run: week %d: %w", w.Week, err)
		}
	}

	for i, v := range res.Violations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO violations
			(run_id, ord, week, muscle, rule, severity, details)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.RunID, i, v.Week, v.Muscle, string(v.Rule), string(v.Severity), v.Details); err != nil {
			return fmt.Errorf("save run: violation %d: %w", i, err)
		}
	}

	for i, t := range res.Directionality.Transitions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transitions
			(run_id, ord, from_week, to_week, signal, response, delta, coherent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.RunID, i, t.From, t.To, string(t.Signal), string(t.Response), t.Delta, boolToInt(t.Coherent)); err != nil {
			return fmt.Errorf("save run: transition %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: commit: %w", err)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, r *report.Report, reportJSON string) (bool, error) {
	res := r.Result
	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, generated_at, source_dir, block_scope, timeline_digest, week_count,
		 scientific, clinical, robustness, verdict, p0, p1, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		r.GeneratedAt.UTC().Format(time.RFC3339Nano),
		r.SourceDir,
		string(r.BlockScope),
		r.TimelineDigest,
		r.WeekCount,
		res.Scores.Scientific,
		res.Scores.Clinical,
		res.Scores.Robustness,
		string(res.Verdict),
		res.P0,
		res.P1,
		reportJSON,
	)
	if err != nil {
		return false, fmt.Errorf("insert run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert run: %w", err)
	}
	return n == 1, nil
}
