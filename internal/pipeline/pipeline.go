package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
)

// Report is everything a run produced
type Report struct {
	Summary  model.RunSummary
	Prepared Prepared
	// Analyzed is the cleaned table after the report filter
	Analyzed model.Table
}

// RunOptions tunes Run
type RunOptions struct {
	LoadOptions
	// RunID overrides the generated run id
	RunID string
}

// ------------------- Report Runner -------------------

// Run loads spec.Source, derives features, cleans, filters, computes the queries
// (StandardQueries when none are given) and exports the results.
// On error the returned report holds the stages completed so far.
func Run(ctx context.Context, spec model.ReportSpec, opts RunOptions) (*Report, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	tracker := NewRunTracker(runID)
	report := &Report{Summary: model.RunSummary{
		RunID:     runID,
		Source:    spec.Source.URL,
		StartTime: time.Now(),
		Status:    "running",
	}}
	slog.InfoContext(ctx, "starting report run", slog.String("run_id", runID), slog.String("source", spec.Source.URL))

	fail := func(err error) (*Report, error) {
		report.Summary.Status = "failed"
		report.Summary.EndTime = time.Now()
		report.Summary.Stages = tracker.Stages()
		slog.ErrorContext(ctx, "report run failed", slog.String("run_id", runID), slog.String("error", err.Error()))
		return report, err
	}

	// --- INGESTION STAGE ---
	loadOpts := opts.LoadOptions
	loadOpts.SkipInvalidRows = loadOpts.SkipInvalidRows || spec.SkipInvalidRows
	idx := tracker.StartStage(StageIngest, 0, 1)
	table, loadReport, err := Load(ctx, spec.Source, loadOpts)
	tracker.EndStage(idx, table.Len(), err)
	report.Summary.Load = loadReport
	if err != nil {
		return fail(fmt.Errorf("load %s: %w", spec.Source.URL, err))
	}

	// --- DERIVE + CLEAN STAGES ---
	prepared, err := Prepare(ctx, table, spec.KeepDuplicates, tracker)
	if err != nil {
		return fail(err)
	}
	report.Prepared = prepared
	report.Summary.DuplicatesRemoved = prepared.DuplicatesRemoved
	report.Summary.NegativeProfit = prepared.NegativeProfit

	// --- FILTER STAGE ---
	idx = tracker.StartStage(StageFilter, prepared.Clean.Len(), 1)
	report.Analyzed = prepared.Clean
	if !spec.Filter.IsZero() {
		report.Analyzed = analytics.Filter(prepared.Clean, analytics.CriteriaFor(prepared.Clean, spec.Filter))
	}
	tracker.EndStage(idx, report.Analyzed.Len(), nil)
	report.Summary.RowsAnalyzed = report.Analyzed.Len()

	// --- AGGREGATION STAGE ---
	queries := spec.Queries
	if len(queries) == 0 {
		queries = StandardQueries(DefaultTopN)
	}
	workers := spec.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	idx = tracker.StartStage(StageAggregate, report.Analyzed.Len(), workers)
	results, err := RunQueries(ctx, report.Analyzed, queries, workers)
	tracker.EndStage(idx, len(results), err)
	if err != nil {
		return fail(err)
	}
	report.Summary.Results = results
	report.Summary.Status = "completed"
	report.Summary.Stages = tracker.Stages()

	// --- EXPORT STAGE ---
	if spec.Export != nil {
		idx = tracker.StartStage(StageExport, len(results), 1)
		exports := NewExportManager(runID, *spec.Export).Export(ctx, report.Summary)
		var exportErr error
		for _, e := range exports {
			if !e.Success {
				exportErr = fmt.Errorf("%s export failed: %s", e.Type, e.Error)
				break
			}
		}
		tracker.EndStage(idx, len(exports), exportErr)
		report.Summary.Exports = exports
	}

	report.Summary.EndTime = time.Now()
	report.Summary.Stages = tracker.Stages()
	slog.InfoContext(ctx, "report run completed",
		slog.String("run_id", runID),
		slog.Int("rows_analyzed", report.Summary.RowsAnalyzed),
		slog.Int("queries", len(results)),
		slog.Duration("duration", report.Summary.EndTime.Sub(report.Summary.StartTime)))
	return report, nil
}
