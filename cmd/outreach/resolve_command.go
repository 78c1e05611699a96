package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"outreach/internal"
	"outreach/internal/directory"
	"outreach/internal/pipeline"
	"outreach/internal/sources"
)

type resolveOptions struct {
	csvOut      string
	xlsxOut     string
	sheet       string
	noDirectory bool
	review      bool
	sortCourse  bool
	keepAll     bool
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var opts resolveOptions
	cmd := &cobra.Command{
		Use:   "resolve <input>...",
		Short: "Read course listings, resolve instructor emails and write the stacked output table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, ctx, args, opts, true)
		},
	}
	addResolveFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.noDirectory, "no-directory", false, "Skip directory lookups and rely on prediction")
	cmd.Flags().BoolVar(&opts.review, "review", false, "Print the per-name review table")
	return cmd
}

// newStackCommand aggregates inputs that already carry emails; nothing is
// looked up or predicted.
func newStackCommand(ctx *commandContext) *cobra.Command {
	var opts resolveOptions
	cmd := &cobra.Command{
		Use:   "stack <input>...",
		Short: "Group name,email,course rows by person without any lookups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, ctx, args, opts, false)
		},
	}
	addResolveFlags(cmd, &opts)
	return cmd
}

func addResolveFlags(cmd *cobra.Command, opts *resolveOptions) {
	cmd.Flags().StringVarP(&opts.csvOut, "out", "o", "", "Output CSV path (default OUTPUT_DIR/output.csv)")
	cmd.Flags().StringVar(&opts.xlsxOut, "xlsx", "", "Also write an XLSX workbook with output and review sheets")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Read only this worksheet from XLSX inputs")
	cmd.Flags().BoolVar(&opts.sortCourse, "sort-by-course", false, "Order people by their first course")
	cmd.Flags().BoolVar(&opts.keepAll, "keep-all", false, "Disable the placeholder, email and course filters")
}

func runResolve(cmd *cobra.Command, ctx *commandContext, paths []string, opts resolveOptions, lookup bool) error {
	cfg := ctx.config
	logger := ctx.logger

	records, err := sources.ReadAll(cmd.Context(), paths, sources.Options{Rules: ctx.rules, Logger: logger, Sheet: opts.sheet})
	if err != nil {
		return err
	}

	resolverOpts := pipeline.ResolverOptions{Logger: logger}
	if lookup {
		t, err := ctx.target()
		if err != nil {
			return err
		}
		resolverOpts.Pattern = t.pattern
		resolverOpts.Domain = t.domain
		resolverOpts.Strategy = t.strategy
		if !opts.noDirectory {
			dir, err := directory.Open(cfg, t.inst, logger)
			if err != nil {
				return err
			}
			defer directory.Close(dir)
			resolverOpts.Directory = dir
		}
	}

	resolver := pipeline.NewResolver(cfg, ctx.rules, resolverOpts)
	result, err := resolver.Run(cmd.Context(), records)
	if err != nil {
		return err
	}

	filters := pipeline.FiltersFromConfig(cfg, ctx.rules)
	if opts.keepAll {
		filters = pipeline.FilterSet{}
	}
	if opts.sortCourse {
		filters.SortByCourse = true
	}
	rows := pipeline.Assemble(result.Contacts, filters)

	csvOut := opts.csvOut
	if csvOut == "" {
		csvOut = filepath.Join(cfg.OutputDir, "output.csv")
	}
	if err := pipeline.WriteCSVFile(csvOut, rows); err != nil {
		return err
	}
	if opts.xlsxOut != "" {
		if err := pipeline.ExportRowsToXLSX(rows, result.Resolutions, opts.xlsxOut); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	printStats(out, result, len(rows), csvOut)
	if opts.review {
		printReview(out, result.Resolutions)
	}
	if result.Stats.Interrupted {
		return fmt.Errorf("resolve interrupted after %d records: %w", result.Stats.Records, cmd.Context().Err())
	}
	return nil
}

func printStats(out io.Writer, result pipeline.RunResult, rows int, path string) {
	s := result.Stats
	data := [][]string{
		{"records", strconv.Itoa(s.Records)},
		{"rejected names", strconv.Itoa(s.Rejected)},
		{"skipped rows", strconv.Itoa(s.Skipped)},
		{"directory lookups", strconv.Itoa(s.Lookups)},
		{"resolved", strconv.Itoa(s.Resolved)},
		{"predicted", strconv.Itoa(s.Predicted)},
		{"ambiguous", strconv.Itoa(s.Ambiguous)},
		{"no email", strconv.Itoa(s.NoEmail)},
		{"not found", strconv.Itoa(s.NotFound)},
		{"lookup errors", strconv.Itoa(s.LookupErrors)},
		{"contacts", strconv.Itoa(len(result.Contacts))},
		{"output rows", strconv.Itoa(rows)},
		{"duration", s.Duration.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Run " + result.RunID, "Count"}, data, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "wrote %s\n", path)
}

func printReview(out io.Writer, review []internal.Resolution) {
	if len(review) == 0 {
		fmt.Fprintln(out, "No directory lookups.")
		return
	}
	data := make([][]string, 0, len(review))
	for _, r := range review {
		dist := ""
		if r.Alternative != "" {
			dist = strconv.Itoa(r.AlternativeDist)
		}
		data = append(data, []string{r.Display, string(r.Status), string(r.Reason), r.Email, strconv.Itoa(r.Candidates), r.Chosen, r.Alternative, dist})
	}
	headers := []string{"Name", "Status", "Reason", "Email", "Candidates", "Chosen", "Nearest other", "Dist"}
	fmt.Fprintln(out, renderTable(headers, data, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight}))
}
