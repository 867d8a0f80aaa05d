package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/pipeline"
)

const sampleCSV = "Order ID,Order Date,Ship Date,Region,Category,Product Name,Sales,Quantity,Discount,Profit\n" +
	"CA-1,11/8/2016,11/11/2016,South,Furniture,Bookcase,261.96,2,0,41.9136\n" +
	"CA-2,6/12/2016,6/16/2016,West,Office Supplies,Labels,14.62,2,0,6.8714\n" +
	"CA-2,6/12/2016,6/16/2016,West,Office Supplies,Labels,14.62,2,0,6.8714\n" +
	"CA-3,10/11/2015,10/18/2015,South,Furniture,Table,1957.5775,5,0.45,-383.031\n"

func TestConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	rep, err := pipeline.Run(context.Background(), model.ReportSpec{Source: model.Source{URL: path}}, pipeline.RunOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Console(&buf, rep))
	out := buf.String()

	for _, want := range []string{
		"Data Loading",
		"Loaded 4 rows",
		"Derived Features",
		"November",
		"Found 1 duplicate rows",
		"Removed 1 duplicate rows, 3 remain",
		"Descriptive Statistics",
		"1 rows have negative profit",
		"Sales by Year",
		"Top 10 Products by Sales",
		"$1,957.58",
		"-$383.03",
		"Column Info",
		"Month Name",
		"Missing Values",
	} {
		assert.Contains(t, out, want)
	}
}

func TestConsoleFilteredKeyFigures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	spec := model.ReportSpec{
		Source: model.Source{URL: path},
		Filter: &model.Filter{Regions: []string{"West"}},
	}
	rep, err := pipeline.Run(context.Background(), spec, pipeline.RunOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Console(&buf, rep))
	out := buf.String()

	// the only loss-making row is in the South
	assert.Contains(t, out, "No rows with negative profit")
	assert.NotContains(t, out, "rows have negative profit")
}

func TestPrinterResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Result(model.AggregationResult{
		Name: "Orders by Region", GroupBy: model.ColRegion, Metric: model.ColOrderID, Reducer: "count",
		Entries: []model.Entry{{Key: "East", Value: 1234, Count: 1234}},
	})
	assert.Contains(t, buf.String(), "count(Order ID)")
	assert.Contains(t, buf.String(), "1,234.00")
	assert.NotContains(t, buf.String(), "$")

	buf.Reset()
	p.Result(model.AggregationResult{Name: "Empty", GroupBy: model.ColRegion, Metric: model.ColSales, Reducer: "sum"})
	assert.Contains(t, buf.String(), "no rows")
}

func TestPrinterExportsAndKPIs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Exports([]model.ExportResult{
		{Type: "csv", Path: "out.csv", RecordCount: 3, Success: true},
		{Type: "database", Path: "out.db", Error: "disk full"},
	})
	p.KPIs(analytics.KPIs{Rows: 2, TotalSales: 1500, TotalProfit: -20, TotalOrders: 1})

	out := buf.String()
	assert.Contains(t, out, "Exported 3 records to out.csv (csv)")
	assert.Contains(t, out, "Export to out.db failed: disk full")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "-$20.00")
}
