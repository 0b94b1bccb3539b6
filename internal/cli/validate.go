package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/trainaudit/internal/timeline"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	loadOptions
}

// WeekInfo describes one parsed snapshot.
type WeekInfo struct {
	Week          int    `json:"week"`
	Source        string `json:"source"`
	Digest        string `json:"digest"`
	Blocks        int    `json:"blocks"`
	Prescriptions int    `json:"prescriptions"`
	Decisions     int    `json:"decisions"`
	HasFeedback   bool   `json:"has_feedback"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid          bool       `json:"valid"`
	BlockScope     string     `json:"block_scope"`
	TimelineDigest string     `json:"timeline_digest"`
	Weeks          []WeekInfo `json:"weeks"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <snapshots-dir>",
		Short: "Parse snapshots without auditing",
		Long: `Parse every weekly snapshot and check week ordering without running the audit.

Lists each week with its content digest, or reports the first malformed
snapshot. Faster than audit for checking an export.

Exit codes:
  0 - All snapshots parsed
  1 - A snapshot is malformed or weeks are out of order
  2 - Command error (missing directory, no files, bad profile)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", DefaultPattern, "glob for snapshot files")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE profile (block scope)")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	p, tl, err := loadInputs(formatter, dir, opts.loadOptions, logger)
	if err != nil {
		// Bad input content is a validation failure, not a command error.
		var loadErr *timeline.LoadError
		if errors.As(err, &loadErr) && (loadErr.Code == timeline.ErrCodeMalformed || loadErr.Code == timeline.ErrCodeWeekOrder) {
			return WrapExitError(ExitFailure, "validation failed", err)
		}
		return err
	}

	result := ValidationResult{
		Valid:          true,
		BlockScope:     string(p.BlockScope),
		TimelineDigest: tl.Digest(),
		Weeks:          make([]WeekInfo, 0, tl.Len()),
	}
	for _, w := range tl.Records() {
		result.Weeks = append(result.Weeks, WeekInfo{
			Week:          w.Week,
			Source:        w.Source,
			Digest:        w.Digest,
			Blocks:        w.BlockCount,
			Prescriptions: w.PrescriptionCount,
			Decisions:     len(w.Decisions),
			HasFeedback:   w.HasFeedback(),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputValidateText(cmd.OutOrStdout(), result)
}

func outputValidateText(w io.Writer, result ValidationResult) error {
	fmt.Fprintf(w, "Timeline: %d weeks (block scope %s)\n", len(result.Weeks), result.BlockScope)
	fmt.Fprintf(w, "Digest: %s\n\n", result.TimelineDigest)
	for _, week := range result.Weeks {
		feedback := "-"
		if week.HasFeedback {
			feedback = "feedback"
		}
		fmt.Fprintf(w, "  Week %-3d %-16s %s  blocks=%d prescriptions=%d decisions=%d %s\n",
			week.Week, week.Source, shortDigest(week.Digest), week.Blocks, week.Prescriptions, week.Decisions, feedback)
	}
	_, err := fmt.Fprintln(w, "\n✓ All snapshots valid")
	return err
}

// shortDigest abbreviates a hex digest for text output.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
