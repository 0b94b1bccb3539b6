package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trainaudit/internal/audit"
	"github.com/roach88/trainaudit/internal/snapshot"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	loadOptions
	Week int
}

// CategoryCount is the number of decisions recorded under one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Required bool   `json:"required"`
}

// TraceResult holds a week's decision trace.
type TraceResult struct {
	Week       int                 `json:"week"`
	Source     string              `json:"source"`
	Total      int                 `json:"total"`
	Categories []CategoryCount     `json:"categories"`
	Missing    []string            `json:"missing"`
	Decisions  []snapshot.Decision `json:"decisions,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <snapshots-dir> --week N",
		Short: "Show a week's decision trace",
		Long: `Show the decision trace recorded for one week.

Decisions are grouped by category in the order they first appear, with the
required categories the week is missing. With --verbose every decision's
context is printed.

Examples:
  trainaudit trace ./snapshots --week 3
  trainaudit trace ./snapshots --week 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Week, "week", 0, "week number to trace (required)")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", DefaultPattern, "glob for snapshot files")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE profile (required categories, block scope)")
	_ = cmd.MarkFlagRequired("week")

	return cmd
}

func runTrace(opts *TraceOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	p, tl, err := loadInputs(formatter, dir, opts.loadOptions, logger)
	if err != nil {
		return err
	}

	week, ok := tl.Week(opts.Week)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeWeekNotFound,
			fmt.Sprintf("week %d not in timeline (%d weeks)", opts.Week, tl.Len()), nil, nil)
	}

	result := buildTrace(week, p.RequiredCategories)
	if opts.Verbose || opts.Format == "json" {
		result.Decisions = week.Decisions
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(cmd.OutOrStdout(), result)
}

// buildTrace groups a week's decisions by category.
func buildTrace(w *snapshot.Record, required []string) TraceResult {
	counts := make(map[string]int, len(w.Decisions))
	for _, d := range w.Decisions {
		counts[d.Category]++
	}

	result := TraceResult{
		Week:    w.Week,
		Source:  w.Source,
		Total:   len(w.Decisions),
		Missing: audit.MissingCategories(w.Categories(), required),
	}
	if result.Missing == nil {
		result.Missing = []string{}
	}
	for _, c := range w.Categories() {
		result.Categories = append(result.Categories, CategoryCount{
			Category: c,
			Count:    counts[c],
			Required: slices.Contains(required, c),
		})
	}
	return result
}

func outputTraceText(w io.Writer, result TraceResult) error {
	fmt.Fprintf(w, "=== Week %d decision trace ===\n", result.Week)
	if result.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", result.Source)
	}
	fmt.Fprintf(w, "Decisions: %d\n\n", result.Total)

	for _, c := range result.Categories {
		marker := " "
		if c.Required {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-32s %d\n", marker, c.Category, c.Count)
	}

	if len(result.Missing) == 0 {
		fmt.Fprintln(w, "\nRequired categories: complete")
	} else {
		fmt.Fprintf(w, "\nMissing required categories: %s\n", strings.Join(result.Missing, ", "))
	}

	if len(result.Decisions) > 0 {
		fmt.Fprintln(w, "\n=== Decisions ===")
		for i, d := range result.Decisions {
			ctx := "{}"
			if len(d.Context) > 0 {
				data, err := json.Marshal(d.Context)
				if err != nil {
					return err
				}
				ctx = string(data)
			}
			fmt.Fprintf(w, "  [%d] %s %s\n", i+1, d.Category, ctx)
		}
	}
	return nil
}
