package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/trainaudit/internal/archive"
	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/metrics"
	"github.com/roach88/trainaudit/internal/report"
	"github.com/roach88/trainaudit/internal/snapshot"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	loadOptions
	Archive     string // SQLite archive path (optional)
	MetricsFile string // Prometheus textfile path (optional)
	FailOn      string // never | caution | fail
}

// ValidFailOn lists the accepted --fail-on values.
var ValidFailOn = []string{"never", "caution", "fail"}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit <snapshots-dir>",
		Short: "Audit a directory of weekly snapshots",
		Long: `Audit every weekly snapshot in a directory as one timeline.

Prints the audit report: per-week states, invariant violations,
directionality, stability, reversibility, failure usage, traceability,
the three scores and the verdict. With --format json the report is
written as a single JSON document.

Exit codes:
  0 - Audit completed (and the verdict is below --fail-on)
  1 - Verdict reached the --fail-on level
  2 - Command error (missing directory, malformed snapshot, bad profile, etc.)

Examples:
  trainaudit audit ./snapshots
  trainaudit audit ./snapshots --profile strict.cue --fail-on caution
  trainaudit audit ./snapshots --archive audits.db --metrics-file /var/lib/node_exporter/trainaudit.prom
  trainaudit audit ./snapshots --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", DefaultPattern, "glob for snapshot files")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE profile overriding audit thresholds")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "SQLite database to archive the run in")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "never", "exit 1 when the verdict reaches this level (never|caution|fail)")

	return cmd
}

// failOnLevel parses --fail-on. ok is false for "never".
func failOnLevel(s string) (level audit.Level, ok bool, err error) {
	switch s {
	case "never":
		return 0, false, nil
	case "caution":
		return audit.LevelCaution, true, nil
	case "fail":
		return audit.LevelFail, true, nil
	default:
		return 0, false, fmt.Errorf("invalid --fail-on %q: must be one of %v", s, ValidFailOn)
	}
}

func runAudit(opts *AuditOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	gate, gated, err := failOnLevel(opts.FailOn)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	p, tl, err := loadInputs(formatter, dir, opts.loadOptions, logger)
	if err != nil {
		return err
	}

	res := audit.New(p, audit.WithLogger(logger)).Run(tl)
	rep := report.New(tl, res, opts.reportOptions(dir, p.BlockScope)...)

	if opts.Format == "json" {
		err = report.WriteJSON(cmd.OutOrStdout(), rep)
	} else {
		err = report.WriteText(cmd.OutOrStdout(), rep)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if opts.Archive != "" {
		if err := archiveReport(cmd, opts.Archive, rep, logger); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeArchive+": failed to archive run", err)
		}
	}

	if opts.MetricsFile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(rep)
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeMetrics+": failed to write metrics", err)
		}
		logger.Info("metrics written", "path", opts.MetricsFile)
	}

	if gated && res.Verdict.Level() >= gate {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%s: verdict %q reaches --fail-on %s", ErrCodeGate, res.Verdict, opts.FailOn))
	}
	return nil
}

// reportOptions records the source and scope, plus any fixed run identity.
func (o *AuditOptions) reportOptions(dir string, scope snapshot.BlockScope) []report.Option {
	opts := []report.Option{report.WithSource(dir), report.WithBlockScope(scope)}
	if o.IDGenerator != nil {
		opts = append(opts, report.WithIDGenerator(o.IDGenerator))
	}
	if o.Clock != nil {
		opts = append(opts, report.WithClock(o.Clock))
	}
	return opts
}

func archiveReport(cmd *cobra.Command, path string, rep *report.Report, logger *slog.Logger) error {
	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.SaveRun(cmd.Context(), rep); err != nil {
		return err
	}
	logger.Info("run archived", "path", path, "run_id", rep.RunID)
	return nil
}
