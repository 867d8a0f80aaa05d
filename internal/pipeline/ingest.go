package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/metrics"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/pkg/utils"
)

// LoadOptions tunes the loader
type LoadOptions struct {
	// SkipInvalidRows drops rows with unparseable dates or numbers instead of failing the load
	SkipInvalidRows bool
	// HTTPClient fetches http(s) sources; http.DefaultClient when nil
	HTTPClient *http.Client
	// Retry governs http(s) downloads; DefaultRetryConfigs[StageIngest] when zero
	Retry RetryConfig
}

// dateLayouts are tried in order; Superstore exports use month/day/year.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1-2-2006",
	"01-02-2006",
	"2006/01/02",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	time.RFC3339,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ------------------- Ingestion -------------------

// Load reads a source (local path or http(s) URL, csv or xlsx) into a Table.
func Load(ctx context.Context, source model.Source, opts LoadOptions) (model.Table, model.LoadReport, error) {
	slog.InfoContext(ctx, "starting ingestion", slog.String("source", source.URL))

	data, err := readSource(ctx, source.URL, opts)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues(sourceFormat(source), "failed").Inc()
		return model.Table{}, model.LoadReport{}, err
	}
	return LoadBytes(ctx, data, source, opts)
}

// LoadReader reads an already opened source, e.g. an uploaded file. name supplies
// the extension used to pick the format.
func LoadReader(ctx context.Context, r io.Reader, name string, opts LoadOptions) (model.Table, model.LoadReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, model.LoadReport{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return LoadBytes(ctx, data, model.Source{URL: name}, opts)
}

// LoadBytes parses raw source bytes.
func LoadBytes(ctx context.Context, data []byte, source model.Source, opts LoadOptions) (model.Table, model.LoadReport, error) {
	format := sourceFormat(source)
	report := model.LoadReport{Source: source.URL, Format: format}

	var (
		rows [][]string
		err  error
	)
	switch format {
	case "xlsx":
		report.Encoding = "xlsx"
		rows, err = readXLSXRows(data, source.Sheet)
	case "csv":
		var text []byte
		text, report.Encoding = decodeText(data)
		rows, err = readCSVRows(text)
	default:
		err = fmt.Errorf("unknown source type: %s", format)
	}
	if err != nil {
		metrics.LoadsTotal.WithLabelValues(format, "failed").Inc()
		return model.Table{}, report, err
	}

	table, err := parseRows(rows, &report, opts)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues(format, "failed").Inc()
		return model.Table{}, report, err
	}

	metrics.LoadsTotal.WithLabelValues(format, "ok").Inc()
	metrics.RowsLoaded.Add(float64(table.Len()))
	slog.InfoContext(ctx, "ingestion done",
		slog.String("source", source.URL),
		slog.String("format", format),
		slog.String("encoding", report.Encoding),
		slog.Int("rows", report.RowsRead),
		slog.Int("skipped", report.RowsSkipped))
	return table, report, nil
}

func sourceFormat(source model.Source) string {
	if source.Type != "" {
		return strings.ToLower(source.Type)
	}
	if utils.GetFileType(stripQuery(source.URL)) == "xlsx" {
		return "xlsx"
	}
	return "csv"
}

func stripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

func readSource(ctx context.Context, pathOrURL string, opts LoadOptions) ([]byte, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		var data []byte
		err := retry(ctx, StageIngest, opts.Retry, func(int) error {
			var err error
			data, err = download(ctx, pathOrURL, opts.HTTPClient)
			return err
		})
		return data, err
	}

	data, err := os.ReadFile(filepath.Clean(pathOrURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	return data, nil
}

// download GETs a source once. 5xx and 429 responses and transport errors are
// retryable; other statuses are not.
func download(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to build request: %w", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, permanent(err)
		}
		return nil, fmt.Errorf("failed to GET source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("failed to GET source: %s", resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, err
		}
		return nil, permanent(err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read source body: %w", err)
	}
	return data, nil
}

// decodeText strips a UTF-8 BOM and falls back to Latin-1 when the bytes are not
// valid UTF-8.
func decodeText(data []byte) ([]byte, string) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, "utf-8"
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data, "utf-8"
	}
	return decoded, "latin1"
}

// ------------------- CSV / XLSX rows -------------------

func readCSVRows(text []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV read error: %w", err)
	}
	return rows, nil
}

func readXLSXRows(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	// raw values keep date cells as serials instead of their display text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// ------------------- Record parsing -------------------

// derivedColumns are recomputed from the order date, never read from a source
var derivedColumns = analytics.NewSet(model.ColYear, model.ColMonth, model.ColMonthName, model.ColQuarter)

func parseRows(rows [][]string, report *model.LoadReport, opts LoadOptions) (model.Table, error) {
	if len(rows) == 0 {
		return model.Table{}, errors.New("source is empty: missing header row")
	}

	index := make(map[model.Column]int)
	for i, h := range rows[0] {
		// Clean header names: trim whitespace and remove quotes
		clean := strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
		col, _, err := analytics.LookupColumn(clean)
		if err != nil || derivedColumns.Has(col) {
			continue
		}
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
		report.Columns = append(report.Columns, col)
	}
	if err := checkRequiredColumns(index); err != nil {
		return model.Table{}, err
	}

	data := rows[1:]
	report.Missing = countMissing(report.Columns, index, data)

	records := make([]model.Record, 0, len(data))
	for i, cells := range data {
		if blankRow(cells) {
			continue
		}
		rec, err := parseRecord(index, cells, i+1)
		if err != nil {
			if opts.SkipInvalidRows {
				report.RowsSkipped++
				slog.Warn("skipping invalid row", slog.Int("row", i+1), slog.String("error", err.Error()))
				continue
			}
			return model.Table{}, err
		}
		records = append(records, rec)
	}
	report.RowsRead = len(records)
	return model.NewTable(records), nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRecord(index map[model.Column]int, cells []string, row int) (model.Record, error) {
	cell := func(col model.Column) string {
		i, ok := index[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	rec := model.Record{
		RowID:        cell(model.ColRowID),
		OrderID:      cell(model.ColOrderID),
		ShipMode:     cell(model.ColShipMode),
		CustomerID:   cell(model.ColCustomerID),
		CustomerName: cell(model.ColCustomerName),
		Segment:      cell(model.ColSegment),
		Country:      cell(model.ColCountry),
		City:         cell(model.ColCity),
		State:        cell(model.ColState),
		PostalCode:   cell(model.ColPostalCode),
		Region:       cell(model.ColRegion),
		ProductID:    cell(model.ColProductID),
		Category:     cell(model.ColCategory),
		SubCategory:  cell(model.ColSubCategory),
		ProductName:  cell(model.ColProductName),
	}

	var err error
	if rec.OrderDate, err = parseDate(cell(model.ColOrderDate)); err != nil || rec.OrderDate.IsZero() {
		return rec, &analytics.InvalidDateError{Row: row, Column: model.ColOrderDate, Value: cell(model.ColOrderDate)}
	}
	if rec.ShipDate, err = parseDate(cell(model.ColShipDate)); err != nil {
		return rec, &analytics.InvalidDateError{Row: row, Column: model.ColShipDate, Value: cell(model.ColShipDate)}
	}

	floats := []struct {
		col model.Column
		dst *float64
	}{
		{model.ColSales, &rec.Sales},
		{model.ColDiscount, &rec.Discount},
		{model.ColProfit, &rec.Profit},
	}
	for _, f := range floats {
		raw := cell(f.col)
		if raw == "" {
			*f.dst = math.NaN()
			continue
		}
		v, err := utils.ParseNumber(raw)
		if err != nil {
			return rec, fmt.Errorf("row %d: %s %q is not a number", row, f.col, raw)
		}
		*f.dst = v
	}

	if raw := cell(model.ColQuantity); raw != "" {
		q, err := utils.ParseInt(raw)
		if err != nil {
			return rec, fmt.Errorf("row %d: %s %q is not an integer", row, model.ColQuantity, raw)
		}
		rec.Quantity = q
	}

	return rec, nil
}

// parseDate returns the zero time for an empty cell. Bare numbers are
// read as Excel serial days, which is how workbook date cells are stored.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
