package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sales-analytics/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := model.RunSummary{RunID: "run-1", Source: "a.csv", Status: "completed", RowsAnalyzed: 10,
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := model.RunSummary{RunID: "run-2", Source: "b.csv", Status: "completed", RowsAnalyzed: 20, DuplicatesRemoved: 2,
		StartTime: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.SaveRun(ctx, older))
	require.NoError(t, s.SaveRun(ctx, newer))

	older.Status = "failed"
	require.NoError(t, s.SaveRun(ctx, older), "saving the same id replaces the row")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 2, runs[0].DuplicatesRemoved)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "failed", runs[1].Status)
}

func TestSaveAndGetResults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []model.AggregationResult{
		{
			Name: "Sales by Year", GroupBy: model.ColYear, Metric: model.ColSales, Reducer: "sum",
			Entries: []model.Entry{{Key: 2022, Value: 150, Count: 2}, {Key: 2023, Value: 200, Count: 1}},
		},
		{
			Name: "Mean Profit by Region", GroupBy: model.ColRegion, Metric: model.ColProfit, Reducer: "mean",
			Entries: []model.Entry{{Key: "East", Value: math.NaN(), Count: 1}},
		},
	}

	n, err := s.SaveResults(ctx, "run-1", results)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := s.GetResults(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Sales by Year", rows[0].Query)
	assert.Equal(t, "2022", rows[0].GroupKey)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 150.0, rows[0].Value)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "Year", rows[1].GroupBy)

	assert.Equal(t, "East", rows[2].GroupKey)
	assert.True(t, math.IsNaN(rows[2].Value), "NaN is stored as NULL and read back as NaN")

	other, err := s.GetResults(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, other)
}
