package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trainaudit/internal/archive"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Archive  string
	Limit    int
	Timeline string // filter by timeline digest
	RunID    string // print one archived report
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history --archive <db>",
		Short: "List archived audit runs",
		Long: `List audit runs stored with audit --archive, newest first.

With --timeline only runs over the same snapshots (same timeline digest) are
listed. With --run the stored JSON report of one run is printed as is.

Examples:
  trainaudit history --archive audits.db
  trainaudit history --archive audits.db --limit 5 --format json
  trainaudit history --archive audits.db --run 0190c1f2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "SQLite archive written by audit --archive (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Timeline, "timeline", "", "only runs over this timeline digest")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "print the archived report of this run")
	_ = cmd.MarkFlagRequired("archive")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	// Open creates missing files; history only reads existing archives.
	if _, err := os.Stat(opts.Archive); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArchive,
			fmt.Sprintf("archive not found: %s", opts.Archive), nil, err)
	}

	a, err := archive.Open(opts.Archive)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArchive, "failed to open archive", nil, err)
	}
	defer a.Close()

	if opts.RunID != "" {
		data, err := a.ReportJSON(ctx, opts.RunID)
		if errors.Is(err, archive.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeArchive,
				fmt.Sprintf("run not found: %s", opts.RunID), nil, err)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeArchive, "failed to read run", nil, err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	var runs []archive.Run
	if opts.Timeline != "" {
		runs, err = a.RunsForTimeline(ctx, opts.Timeline)
		slices.Reverse(runs)
		if opts.Limit > 0 && len(runs) > opts.Limit {
			runs = runs[:opts.Limit]
		}
	} else {
		runs, err = a.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArchive, "failed to list runs", nil, err)
	}
	if runs == nil {
		runs = []archive.Run{}
	}

	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	return outputHistoryText(cmd.OutOrStdout(), runs)
}

func outputHistoryText(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No archived runs.")
		return err
	}

	fmt.Fprintf(w, "%-36s  %-20s  %5s  %3s %3s %3s  %s\n", "RUN", "GENERATED", "WEEKS", "SCI", "CLI", "ROB", "VERDICT")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %5d  %3d %3d %3d  %s\n",
			r.ID, r.GeneratedAt.UTC().Format(time.RFC3339), r.WeekCount,
			r.Scores.Scientific, r.Scores.Clinical, r.Scores.Robustness, r.Verdict)
	}
	_, err := fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return err
}
