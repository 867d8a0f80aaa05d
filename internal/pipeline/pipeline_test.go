package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/store"
)

func resultByName(t *testing.T, results []model.AggregationResult, name string) model.AggregationResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result named %q", name)
	return model.AggregationResult{}
}

func TestRunStandardReport(t *testing.T) {
	path := writeFile(t, "superstore.csv", fixtureCSV)

	report, err := Run(context.Background(), model.ReportSpec{Source: model.Source{URL: path}}, RunOptions{RunID: "run-1"})
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "completed", s.Status)
	assert.Equal(t, 7, s.Load.RowsRead)
	assert.Equal(t, 1, s.DuplicatesRemoved)
	assert.Equal(t, 1, s.NegativeProfit)
	assert.Equal(t, 6, s.RowsAnalyzed)
	assert.Len(t, s.Results, len(StandardQueries(DefaultTopN)))
	assert.Equal(t, 7, report.Prepared.Derived.Len())
	assert.Equal(t, 2016, report.Prepared.Derived.Rows[0].Year)

	byYear := resultByName(t, s.Results, "Sales by Year")
	assert.Equal(t, []interface{}{2015, 2016, 2017}, byYear.Keys())
	assert.InDeltaSlice(t, []float64{979.9455, 1008.52, 907.152}, byYear.Values(), 1e-6)

	top := resultByName(t, s.Results, "Top 10 Products by Sales")
	assert.Equal(t, []interface{}{"Bretford Table", "Apple Phone", "Hon Chair", "Bush Bookcase", "Eldon Base", "Avery Labels"}, top.Keys())

	worst := resultByName(t, s.Results, "Worst 10 Products by Profit")
	assert.Equal(t, "Bretford Table", worst.Entries[0].Key)

	var names []string
	for _, st := range s.Stages {
		names = append(names, st.StageName)
		assert.Equal(t, "completed", st.Status)
	}
	assert.Equal(t, []string{StageIngest, StageDerive, StageClean, StageFilter, StageAggregate}, names)
}

func TestRunWithFilterAndQueries(t *testing.T) {
	path := writeFile(t, "superstore.csv", fixtureCSV)
	spec := model.ReportSpec{
		Source:         model.Source{URL: path},
		KeepDuplicates: true,
		Filter:         &model.Filter{Regions: []string{"South"}},
		Queries: []model.Query{
			{Name: "Orders by Category", GroupBy: model.ColCategory, Metric: model.ColOrderID, Reducer: "count"},
			{GroupBy: model.ColYear, Metric: model.ColProfit, Reducer: "mean"},
		},
	}

	report, err := Run(context.Background(), spec, RunOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Summary.RunID)
	assert.Zero(t, report.Summary.DuplicatesRemoved)
	assert.Equal(t, 5, report.Summary.RowsAnalyzed, "South rows, duplicate kept")

	counts := report.Summary.Results[0]
	assert.Equal(t, []interface{}{"Furniture", "Office Supplies"}, counts.Keys())
	assert.Equal(t, []float64{3, 2}, counts.Values())

	mean := report.Summary.Results[1]
	assert.Equal(t, "mean(Profit) by Year", mean.Name)
	assert.Equal(t, []interface{}{2015, 2016}, mean.Keys())
}

func TestRunEmptyFilterRejectsAll(t *testing.T) {
	path := writeFile(t, "superstore.csv", fixtureCSV)
	spec := model.ReportSpec{Source: model.Source{URL: path}, Filter: &model.Filter{Years: []int{}}}

	report, err := Run(context.Background(), spec, RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.Summary.RowsAnalyzed)
	for _, r := range report.Summary.Results {
		assert.Empty(t, r.Entries, r.Name)
	}
}

func TestRunFailures(t *testing.T) {
	report, err := Run(context.Background(), model.ReportSpec{Source: model.Source{URL: "missing.csv"}}, RunOptions{})
	require.Error(t, err)
	assert.Equal(t, "failed", report.Summary.Status)
	require.Len(t, report.Summary.Stages, 1)
	assert.Equal(t, "failed", report.Summary.Stages[0].Status)

	path := writeFile(t, "superstore.csv", fixtureCSV)
	spec := model.ReportSpec{
		Source:  model.Source{URL: path},
		Queries: []model.Query{{GroupBy: "Colour", Metric: model.ColSales}},
	}
	report, err = Run(context.Background(), spec, RunOptions{})
	var colErr *analytics.UnknownColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "failed", report.Summary.Status)
}

func TestRunExports(t *testing.T) {
	path := writeFile(t, "superstore.csv", fixtureCSV)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "results.db")
	spec := model.ReportSpec{
		Source: model.Source{URL: path},
		Export: &model.Export{Dir: dir, File: "report.xlsx", DB: dbPath},
	}

	report, err := Run(context.Background(), spec, RunOptions{RunID: "run-x"})
	require.NoError(t, err)
	require.Len(t, report.Summary.Exports, 2)
	for _, e := range report.Summary.Exports {
		assert.True(t, e.Success, e.Error)
	}

	total := 0
	for _, r := range report.Summary.Results {
		total += r.Len()
	}

	xlsxPath := filepath.Join(dir, "run-x", "report.xlsx")
	assert.Equal(t, xlsxPath, report.Summary.Exports[0].Path)
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), len(report.Summary.Results))
	rows, err := f.GetRows("Sales by Year")
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "sum(Sales)", "Count"}, rows[0])
	assert.Len(t, rows, 4)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()
	stored, err := s.GetResults(context.Background(), "run-x")
	require.NoError(t, err)
	assert.Len(t, stored, total)
	assert.Equal(t, total, report.Summary.Exports[1].RecordCount)
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 6, runs[0].RowsAnalyzed)
}

func TestWriteResultsCSVAndJSON(t *testing.T) {
	results := []model.AggregationResult{{
		Name: "Sales by Region", GroupBy: model.ColRegion, Metric: model.ColSales, Reducer: "sum",
		Entries: []model.Entry{{Key: "East", Value: 300, Count: 2}, {Key: "West", Value: 100.5, Count: 1}},
	}}
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "nested", "out.csv")
	n, err := WriteResultsCSV(csvPath, results)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"Sales by Region", "Region", "Sales", "sum", "key_asc", "1", "East", "300", "2"}, records[1])

	em := NewExportManager("run-j", model.Export{File: filepath.Join(dir, "out.json")})
	exports := em.Export(context.Background(), model.RunSummary{RunID: "run-j", Results: results})
	require.Len(t, exports, 1)
	assert.True(t, exports[0].Success)
	assert.Equal(t, "json", exports[0].Type)

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	var doc struct {
		ExportInfo map[string]interface{}     `json:"export_info"`
		Results    []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-j", doc.ExportInfo["run_id"])
	assert.Equal(t, float64(2), doc.ExportInfo["record_count"])
	require.Len(t, doc.Results, 1)
}

func TestExportUnsupportedFile(t *testing.T) {
	em := NewExportManager("run-u", model.Export{File: filepath.Join(t.TempDir(), "out.parquet")})
	exports := em.Export(context.Background(), model.RunSummary{})
	require.Len(t, exports, 1)
	assert.False(t, exports[0].Success)
	assert.Contains(t, exports[0].Error, "unsupported")
}

func TestSheetName(t *testing.T) {
	used := make(map[string]bool)
	assert.Equal(t, "Sales by Year", sheetName("Sales by Year", used))
	assert.Equal(t, "Sales by Year (2)", sheetName("Sales by Year", used))
	assert.Equal(t, "sum(Sales) by Product Name, val", sheetName("sum(Sales) by Product Name, value_desc 10", used))
	assert.Equal(t, "a-b-c", sheetName("a/b:c", used))
	assert.Equal(t, "Query", sheetName("  ", used))
}

func TestRunQueriesKeepsOrder(t *testing.T) {
	path := writeFile(t, "superstore.csv", fixtureCSV)
	table, _, err := Load(context.Background(), model.Source{URL: path}, LoadOptions{})
	require.NoError(t, err)
	prepared, err := Prepare(context.Background(), table, false, nil)
	require.NoError(t, err)

	queries := StandardQueries(3)
	results, err := RunQueries(context.Background(), prepared.Clean, queries, 2)
	require.NoError(t, err)
	require.Len(t, results, len(queries))
	for i, q := range queries {
		assert.Equal(t, q.Name, results[i].Name)
	}
	assert.Len(t, results[5].Entries, 3)

	_, err = RunQueries(context.Background(), prepared.Clean, []model.Query{{GroupBy: model.ColRegion, Metric: model.ColSales, Reducer: "median"}}, 0)
	var redErr *analytics.UnknownReducerError
	assert.True(t, errors.As(err, &redErr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunQueries(ctx, prepared.Clean, queries, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTracker(t *testing.T) {
	rt := NewRunTracker("run-t")
	idx := rt.StartStage(StageIngest, 0, 1)
	rt.EndStage(idx, 10, nil)
	idx = rt.StartStage(StageAggregate, 10, 4)
	rt.EndStage(idx, 0, errors.New("boom"))
	rt.EndStage(99, 0, nil)

	stages := rt.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "completed", stages[0].Status)
	assert.Equal(t, 10, stages[0].RowsOut)
	assert.Equal(t, "failed", stages[1].Status)
	assert.Equal(t, "boom", stages[1].Error)
	assert.Equal(t, 4, stages[1].WorkerCount)

	var nilTracker *RunTracker
	assert.Equal(t, -1, nilTracker.StartStage(StageIngest, 0, 1))
	assert.Nil(t, nilTracker.Stages())
}
