package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/pipeline"
	"go-sales-analytics/internal/report"
)

type analyzeOptions struct {
	specFile       string
	years          []string
	categories     []string
	regions        []string
	exportFile     string
	dbFile         string
	outputDir      string
	top            int
	workers        int
	timeout        time.Duration
	skipInvalid    bool
	keepDuplicates bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [file-or-url]",
		Short: "Run the sales report on a CSV or XLSX source",
		Long: `Runs the full report: load, derive calendar features, drop duplicates, filter,
aggregate and print. Without --spec the standard query set is used: sales and
profit by year, monthly sales, sales by category and region, top products by
sales and profit and worst products by profit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := opts.reportSpec(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			rep, err := pipeline.Run(ctx, spec, pipeline.RunOptions{})
			if err != nil {
				return err
			}
			if err := report.Console(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			for _, e := range rep.Summary.Exports {
				if !e.Success {
					return fmt.Errorf("%s export to %s failed: %s", e.Type, e.Path, e.Error)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.specFile, "spec", "", "report spec file (.yaml, .yml or .json)")
	f.StringSliceVar(&opts.years, "year", nil, "only these order years, e.g. 2016,2017")
	f.StringSliceVar(&opts.categories, "category", nil, "only these categories")
	f.StringSliceVar(&opts.regions, "region", nil, "only these regions")
	f.StringVar(&opts.exportFile, "export", "", "export results to a .csv, .json or .xlsx file")
	f.StringVar(&opts.dbFile, "db", "", "export results to a SQLite database")
	f.StringVar(&opts.outputDir, "output-dir", "", "write the export file under <dir>/<run-id>/")
	f.IntVar(&opts.top, "top", pipeline.DefaultTopN, "number of top and worst products")
	f.IntVar(&opts.workers, "workers", pipeline.DefaultWorkers, "queries computed concurrently")
	f.DurationVar(&opts.timeout, "timeout", 0, "abort the run after this duration, e.g. 2m")
	f.BoolVar(&opts.skipInvalid, "skip-invalid", false, "skip rows with unparseable dates or numbers")
	f.BoolVar(&opts.keepDuplicates, "keep-duplicates", false, "report duplicates but keep them")
	return cmd
}

// reportSpec merges the spec file (if any) with the positional source and flags.
// Flags win over the spec file; filter flags only replace their own dimension.
func (o *analyzeOptions) reportSpec(cmd *cobra.Command, args []string) (model.ReportSpec, error) {
	var spec model.ReportSpec
	if o.specFile != "" {
		var err error
		if spec, err = LoadSpec(o.specFile); err != nil {
			return spec, err
		}
	}
	if len(args) == 1 {
		spec.Source = model.Source{URL: args[0]}
	}
	if spec.Source.URL == "" {
		return spec, errors.New("no source given: pass a file or URL, or a --spec with a source")
	}

	filter, err := filterFlags(cmd.Flags(), spec.Filter, o.years, o.categories, o.regions)
	if err != nil {
		return spec, err
	}
	spec.Filter = filter

	if len(spec.Queries) == 0 {
		spec.Queries = pipeline.StandardQueries(o.top)
	}
	if cmd.Flags().Changed("workers") || spec.Workers == 0 {
		spec.Workers = o.workers
	}
	spec.SkipInvalidRows = spec.SkipInvalidRows || o.skipInvalid
	spec.KeepDuplicates = spec.KeepDuplicates || o.keepDuplicates

	if o.exportFile != "" || o.dbFile != "" || o.outputDir != "" {
		if spec.Export == nil {
			spec.Export = &model.Export{}
		}
		if o.exportFile != "" {
			spec.Export.File = o.exportFile
		}
		if o.dbFile != "" {
			spec.Export.DB = o.dbFile
		}
		if o.outputDir != "" {
			spec.Export.Dir = o.outputDir
		}
	}
	return spec, nil
}
