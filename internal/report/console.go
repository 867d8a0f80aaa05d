package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/pipeline"
	"go-sales-analytics/pkg/utils"
)

// PreviewRows is how many rows the head previews print
const PreviewRows = 5

// Printer renders report sections to a writer
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Section prints a styled section header
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w, titleStyle.Render(title))
}

// Success prints a success line
func (p *Printer) Success(format string, args ...interface{}) {
	successColor.Fprintf(p.w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error line
func (p *Printer) Error(format string, args ...interface{}) {
	errorColor.Fprintf(p.w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning line
func (p *Printer) Warning(format string, args ...interface{}) {
	warningColor.Fprintf(p.w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info line
func (p *Printer) Info(format string, args ...interface{}) {
	infoColor.Fprintf(p.w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Table prints a bordered table; numeric marks right-aligned columns.
func (p *Printer) Table(headers []string, rows [][]string, numeric ...int) {
	right := analytics.NewSet(numeric...)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right.Has(col):
				if row >= 0 && row < len(rows) && strings.HasPrefix(rows[row][col], "-") {
					return lossStyle
				}
				return numberStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(p.w, t.String())
}

// LoadSummary prints what the loader read
func (p *Printer) LoadSummary(r model.LoadReport) {
	p.Success("Loaded %d rows from %s (%s, %s)", r.RowsRead, r.Source, r.Format, r.Encoding)
	if r.RowsSkipped > 0 {
		p.Warning("Skipped %d invalid rows", r.RowsSkipped)
	}
}

// Records prints the first n rows of table restricted to cols
func (p *Printer) Records(t model.Table, n int, cols []model.Column) {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = string(c)
	}
	head := t.Head(n)
	rows := make([][]string, 0, head.Len())
	for i := range head.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			v, err := analytics.Value(&head.Rows[i], c)
			if err != nil {
				continue
			}
			row[j] = analytics.FormatValue(v)
		}
		rows = append(rows, row)
	}
	p.Table(headers, rows)
}

// Describe prints describe() statistics, one row per statistic
func (p *Printer) Describe(summaries []analytics.Summary) {
	headers := []string{""}
	for _, s := range summaries {
		headers = append(headers, string(s.Column))
	}
	stats := []struct {
		name string
		get  func(analytics.Summary) string
	}{
		{"count", func(s analytics.Summary) string { return strconv.Itoa(s.Count) }},
		{"mean", func(s analytics.Summary) string { return utils.FormatNumber(s.Mean) }},
		{"std", func(s analytics.Summary) string { return utils.FormatNumber(s.Std) }},
		{"min", func(s analytics.Summary) string { return utils.FormatNumber(s.Min) }},
		{"25%", func(s analytics.Summary) string { return utils.FormatNumber(s.P25) }},
		{"50%", func(s analytics.Summary) string { return utils.FormatNumber(s.P50) }},
		{"75%", func(s analytics.Summary) string { return utils.FormatNumber(s.P75) }},
		{"max", func(s analytics.Summary) string { return utils.FormatNumber(s.Max) }},
	}
	rows := make([][]string, len(stats))
	numeric := make([]int, len(summaries))
	for i, st := range stats {
		rows[i] = []string{st.name}
		for j, s := range summaries {
			rows[i] = append(rows[i], st.get(s))
			numeric[j] = j + 1
		}
	}
	p.Table(headers, rows, numeric...)
}

// Result prints one aggregation result. Sales and profit amounts are shown as money.
func (p *Printer) Result(res model.AggregationResult) {
	p.Section(res.Name)
	if res.Len() == 0 {
		p.Warning("no rows")
		return
	}
	rows := make([][]string, res.Len())
	for i, e := range res.Entries {
		rows[i] = []string{analytics.FormatValue(e.Key), formatMetric(res, e.Value), strconv.Itoa(e.Count)}
	}
	p.Table([]string{string(res.GroupBy), fmt.Sprintf("%s(%s)", res.Reducer, res.Metric), "rows"}, rows, 1, 2)
}

func formatMetric(res model.AggregationResult, v float64) string {
	if res.Reducer == analytics.Count.Name {
		return utils.FormatNumber(v)
	}
	switch res.Metric {
	case model.ColSales, model.ColProfit:
		return utils.FormatMoney(v)
	}
	return utils.FormatNumber(v)
}

// ColumnInfo prints non-null counts and value types
func (p *Printer) ColumnInfo(info []analytics.ColumnInfo, rows int) {
	p.Info("%d entries, %d columns", rows, len(info))
	out := make([][]string, len(info))
	for i, c := range info {
		out[i] = []string{strconv.Itoa(i), string(c.Column), strconv.Itoa(c.NonNull), c.Kind}
	}
	p.Table([]string{"#", "Column", "Non-Null", "Dtype"}, out, 0, 2)
}

// Missing prints per-column null counts
func (p *Printer) Missing(missing []model.MissingCount) {
	out := make([][]string, len(missing))
	for i, m := range missing {
		out[i] = []string{string(m.Column), strconv.Itoa(m.Missing)}
	}
	p.Table([]string{"Column", "Missing"}, out, 1)
}

// KPIs prints the headline numbers
func (p *Printer) KPIs(k analytics.KPIs) {
	p.Table([]string{"Rows", "Total Sales", "Total Profit", "Orders"}, [][]string{{
		strconv.Itoa(k.Rows), utils.FormatMoney(k.TotalSales), utils.FormatMoney(k.TotalProfit), strconv.Itoa(k.TotalOrders),
	}}, 0, 1, 2, 3)
}

// Exports prints the outcome of every export target
func (p *Printer) Exports(exports []model.ExportResult) {
	for _, e := range exports {
		if e.Success {
			p.Success("Exported %d records to %s (%s)", e.RecordCount, e.Path, e.Type)
		} else {
			p.Error("Export to %s failed: %s", e.Path, e.Error)
		}
	}
}

var featureColumns = []model.Column{model.ColOrderDate, model.ColYear, model.ColMonth, model.ColMonthName, model.ColQuarter}

// Console prints a full report run in reading order: load summary, derived
// features, duplicates, statistics, negative profit, query results, column info,
// first rows and missing values.
func Console(w io.Writer, rep *pipeline.Report) error {
	p := NewPrinter(w)
	s := rep.Summary

	p.Section("Data Loading")
	p.LoadSummary(s.Load)

	p.Section("Derived Features")
	p.Records(rep.Prepared.Derived, PreviewRows, featureColumns)

	p.Section("Duplicates")
	if rep.Prepared.DuplicatesFound == 0 {
		p.Success("No duplicate rows")
	} else {
		p.Warning("Found %d duplicate rows", rep.Prepared.DuplicatesFound)
		if rep.Prepared.DuplicatesRemoved > 0 {
			p.Success("Removed %d duplicate rows, %d remain", rep.Prepared.DuplicatesRemoved, rep.Prepared.Clean.Len())
		}
	}

	p.Section("Descriptive Statistics")
	summaries, err := analytics.Describe(rep.Analyzed)
	if err != nil {
		return err
	}
	p.Describe(summaries)

	p.Section("Key Figures")
	kpis := analytics.ComputeKPIs(rep.Analyzed)
	p.KPIs(kpis)
	if kpis.NegativeProfitRows > 0 {
		p.Warning("%d rows have negative profit", kpis.NegativeProfitRows)
	} else {
		p.Success("No rows with negative profit")
	}

	for _, res := range s.Results {
		p.Result(res)
	}

	p.Section("Column Info")
	infoCols := append(append([]model.Column(nil), s.Load.Columns...), featureColumns[1:]...)
	p.ColumnInfo(analytics.Info(rep.Analyzed, infoCols...), rep.Analyzed.Len())

	p.Section("First Rows")
	p.Records(rep.Analyzed, PreviewRows, s.Load.Columns)

	p.Section("Missing Values")
	p.Missing(s.Load.Missing)

	if len(s.Exports) > 0 {
		p.Section("Exports")
		p.Exports(s.Exports)
	}
	return nil
}
