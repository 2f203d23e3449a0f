// Package main provides an offline CLI that loads and cleans a survey file and
// prints the cleaning report, a filtered summary, or a filtered export.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/airsat/internal/core"
	"github.com/JonMunkholm/airsat/internal/export"
	"github.com/JonMunkholm/airsat/internal/logging"
	"github.com/JonMunkholm/airsat/internal/source"
	"github.com/JonMunkholm/airsat/internal/web/templates"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 1
	ExitDataError    = 2
	ExitRuntimeError = 3
)

// Build information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}

	var usageErr *usageError
	var schemaErr *core.SchemaError
	var emptyErr *core.EmptyDatasetError
	var rangeErr *core.InvalidRangeError
	switch {
	case errors.As(err, &usageErr), errors.As(err, &rangeErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsageError
	case errors.As(err, &schemaErr), errors.As(err, &emptyErr), core.IsUserFacing(err):
		fmt.Fprintf(stderr, "Error: %s\n", core.FormatUserError(err))
		fmt.Fprintf(stderr, "  detail: %v\n", err)
		return ExitDataError
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}
}

// usageError marks invalid flags or arguments.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// options holds the flags shared by every command.
type options struct {
	sheet     string
	delimiter string
	timeout   time.Duration
	verbose   bool
	jsonOut   bool
}

// filterFlags mirrors the dashboard filters. Only flags set on the command
// line override the default selection.
type filterFlags struct {
	sets   map[core.Column]*[]string
	ranges map[core.Column]*[2]int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "airsat-report",
		Short: "Inspect an airline passenger satisfaction survey offline",
		Long: `airsat-report loads a survey file (.csv or .xlsx), runs the same cleaning
pass as the dashboard, and prints what it found.

Examples:
  # Show what cleaning did
  airsat-report clean data/airline_passenger_satisfaction.csv

  # Summary for business-class travellers aged 30-50
  airsat-report summary data/survey.csv --class Business --age-min 30 --age-max 50

  # Export the filtered rows
  airsat-report export data/survey.csv --gender Female --out female.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	pf.StringVar(&opts.delimiter, "delimiter", ",", "Field delimiter for text files")
	pf.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Maximum time to read the file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log cleaning progress to stderr")
	pf.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of text")

	root.AddCommand(
		newCleanCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <file>",
		Short: "Print the cleaning report",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, report, err := load(cmd, opts, args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), args[0], report)
			return nil
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	filters := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print satisfaction counts and mean ratings for a filter",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := load(cmd, opts, args[0])
			if err != nil {
				return err
			}
			view, err := core.Render(data, filters.apply(cmd, core.DefaultSpec(data, core.StandardDefaults)))
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"showing": view.Filtered.Len(),
					"total":   view.Total,
					"filters": view.Spec,
					"summary": view.Summary,
				})
			}
			printSummary(cmd.OutOrStdout(), view)
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var out string
	filters := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the filtered rows to a .csv or .xlsx file",
		Args:  oneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return &usageError{msg: "--out is required"}
			}
			format := export.FormatCSV
			if strings.HasSuffix(strings.ToLower(out), ".xlsx") {
				format = export.FormatXLSX
			}

			data, _, err := load(cmd, opts, args[0])
			if err != nil {
				return err
			}
			view, err := core.Render(data, filters.apply(cmd, core.DefaultSpec(data, core.StandardDefaults)))
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := export.Write(f, view.Filtered, format); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d of %d rows to %s\n", view.Filtered.Len(), view.Total, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; .xlsx writes a workbook, anything else CSV")
	filters.register(cmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nCommit: %s\n", version, commit)
		},
	}
}

func oneFile(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &usageError{msg: fmt.Sprintf("expected exactly one input file, got %d arguments", len(args))}
	}
	return nil
}

// load reads and cleans path.
func load(cmd *cobra.Command, opts *options, path string) (*core.Dataset, core.CleanReport, error) {
	delim := []rune(opts.delimiter)
	if len(delim) != 1 {
		return nil, core.CleanReport{}, &usageError{msg: fmt.Sprintf("--delimiter must be a single character, got %q", opts.delimiter)}
	}

	loader, err := source.New(source.Options{Path: path, Sheet: opts.sheet, Delimiter: delim[0]})
	if err != nil {
		return nil, core.CleanReport{}, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	raw, err := loader.Load(ctx)
	if err != nil {
		return nil, core.CleanReport{}, err
	}

	level := "warn"
	if opts.verbose {
		level = "info"
	}
	logger := logging.New(cmd.ErrOrStderr(), level, "text")
	return core.NewCleaner(logger).Clean(raw)
}

var setFlags = []struct {
	column core.Column
	name   string
}{
	{core.ColSatisfaction, "satisfaction"},
	{core.ColGender, "gender"},
	{core.ColCustomerType, "customer-type"},
	{core.ColClass, "class"},
	{core.ColTypeOfTravel, "travel-type"},
}

var rangeFlags = []struct {
	column core.Column
	name   string
}{
	{core.ColAge, "age"},
	{core.ColFlightDistance, "distance"},
	{core.ColSeatComfort, "seat-comfort"},
}

func (f *filterFlags) register(cmd *cobra.Command) {
	f.sets = make(map[core.Column]*[]string)
	f.ranges = make(map[core.Column]*[2]int)

	for _, s := range setFlags {
		v := new([]string)
		f.sets[s.column] = v
		cmd.Flags().StringSliceVar(v, s.name, nil, "Allowed "+core.LabelFor(s.column)+" values (repeat or comma-separate; empty selects none)")
	}
	for _, r := range rangeFlags {
		v := new([2]int)
		f.ranges[r.column] = v
		cmd.Flags().IntVar(&v[0], r.name+"-min", 0, "Minimum "+core.LabelFor(r.column))
		cmd.Flags().IntVar(&v[1], r.name+"-max", 0, "Maximum "+core.LabelFor(r.column))
	}
}

// apply overrides spec with the filter flags set on cmd.
func (f *filterFlags) apply(cmd *cobra.Command, spec core.FilterSpec) core.FilterSpec {
	for _, s := range setFlags {
		if cmd.Flags().Changed(s.name) {
			spec = spec.WithSet(s.column, core.NewValueSet(*f.sets[s.column]...))
		}
	}
	for _, r := range rangeFlags {
		cur, _ := spec.Range(r.column)
		v := f.ranges[r.column]
		if cmd.Flags().Changed(r.name + "-min") {
			cur.Min = v[0]
		}
		if cmd.Flags().Changed(r.name + "-max") {
			cur.Max = v[1]
		}
		spec = spec.WithRange(r.column, cur)
	}
	return spec
}

func printReport(w io.Writer, path string, r core.CleanReport) {
	fmt.Fprintf(w, "Source: %s\n", path)
	fmt.Fprintf(w, "Rows read: %d\n", r.RowsIn)
	fmt.Fprintf(w, "Rows dropped (missing arrival delay): %d\n", r.RowsDropped)
	fmt.Fprintf(w, "Rows kept: %d\n", r.RowsOut)
	fmt.Fprintf(w, "Departure delay cap (p99): %.2f\n", r.DepartureCap)
	fmt.Fprintf(w, "Arrival delay cap (p99): %.2f\n", r.ArrivalCap)
	for _, col := range core.CategoricalColumns {
		fmt.Fprintf(w, "%s values: %d\n", core.LabelFor(col), r.DomainSizes[col])
	}
}

func printSummary(w io.Writer, view *core.View) {
	fmt.Fprintf(w, "Showing %d entries out of %d total.\n\n", view.Filtered.Len(), view.Total)

	fmt.Fprintln(w, "Customer Satisfaction Statistics")
	for _, c := range view.Summary.SatisfactionCounts {
		fmt.Fprintf(w, "  %-20s %d\n", c.Value, c.Count)
	}

	fmt.Fprintln(w, "\nAverage Service Ratings")
	for _, m := range view.Summary.RatingMeans {
		fmt.Fprintf(w, "  %-24s %s\n", m.Label, templates.FormatMean(m.Mean))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Average Departure Delay: %s minutes\n", templates.FormatMean(view.Summary.DelayMeans.Departure))
	fmt.Fprintf(w, "Average Arrival Delay: %s minutes\n", templates.FormatMean(view.Summary.DelayMeans.Arrival))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
