package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/store"
	"go-sales-analytics/pkg/utils"
)

// defaultExportFile is written into the run directory when only Export.Dir is set
const defaultExportFile = "results.csv"

// ExportManager writes the results of one run to its export targets
type ExportManager struct {
	RunID string
	Spec  model.Export
	// Retry governs locked-database retries; DefaultRetryConfigs[StageExport] when zero
	Retry  RetryConfig
	output *utils.OutputManager
}

// NewExportManager creates an export manager for a run
func NewExportManager(runID string, spec model.Export) *ExportManager {
	em := &ExportManager{RunID: runID, Spec: spec}
	if spec.Dir != "" {
		em.output = utils.NewOutputManager(spec.Dir)
	}
	return em
}

// Export writes summary.Results to every configured target. A failing target does
// not stop the others; each outcome is reported in the returned slice.
func (em *ExportManager) Export(ctx context.Context, summary model.RunSummary) []model.ExportResult {
	var out []model.ExportResult

	if path, err := em.filePath(); err != nil {
		out = append(out, em.result("file", em.Spec.File, 0, err))
	} else if path != "" {
		out = append(out, em.exportToFile(path, summary.Results))
	}

	if em.Spec.DB != "" {
		out = append(out, em.exportToDatabase(ctx, summary))
	}
	return out
}

// filePath resolves the export file; with Dir set it lands in the run directory.
func (em *ExportManager) filePath() (string, error) {
	file := em.Spec.File
	if em.output == nil {
		return file, nil
	}
	if file == "" {
		file = defaultExportFile
	}
	return em.output.GetOutputFilePath(em.RunID, filepath.Base(file))
}

func (em *ExportManager) exportToFile(path string, results []model.AggregationResult) model.ExportResult {
	fileType := utils.GetFileType(path)

	var (
		count int
		err   error
	)
	switch fileType {
	case "csv":
		count, err = WriteResultsCSV(path, results)
	case "json":
		count, err = em.writeJSON(path, results)
	case "xlsx":
		count, err = WriteResultsXLSX(path, results)
	default:
		err = fmt.Errorf("unsupported export file type: %s", filepath.Ext(path))
	}
	return em.result(fileType, path, count, err)
}

func (em *ExportManager) exportToDatabase(ctx context.Context, summary model.RunSummary) model.ExportResult {
	var count int
	err := retry(ctx, StageExport, em.Retry, func(int) error {
		var err error
		count, err = em.saveToDatabase(ctx, summary)
		if err != nil && !isSQLiteBusy(err) {
			return permanent(err)
		}
		return err
	})
	return em.result("database", em.Spec.DB, count, err)
}

func (em *ExportManager) saveToDatabase(ctx context.Context, summary model.RunSummary) (int, error) {
	s, err := store.Open(em.Spec.DB)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	if err := s.SaveRun(ctx, summary); err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return s.SaveResults(ctx, em.RunID, summary.Results)
}

func (em *ExportManager) result(kind, path string, count int, err error) model.ExportResult {
	res := model.ExportResult{
		Type:        kind,
		Path:        path,
		RecordCount: count,
		Success:     err == nil,
		ExportedAt:  time.Now(),
	}
	if err != nil {
		res.Error = err.Error()
		slog.Error("export failed", slog.String("run_id", em.RunID), slog.String("type", kind), slog.String("path", path), slog.String("error", err.Error()))
	} else {
		slog.Info("export done", slog.String("run_id", em.RunID), slog.String("type", kind), slog.String("path", path), slog.Int("records", count))
	}
	return res
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// csvHeader is the long format shared by all queries of a run
var csvHeader = []string{"query", "group_by", "metric", "reducer", "order", "rank", "key", "value", "count"}

// WriteResultsCSV writes results in long format, one row per entry, and returns the row count.
func WriteResultsCSV(path string, results []model.AggregationResult) (int, error) {
	file, err := createFile(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for _, res := range results {
		for i, e := range res.Entries {
			row := []string{
				res.Name,
				string(res.GroupBy),
				string(res.Metric),
				res.Reducer,
				res.Order.String(),
				strconv.Itoa(i + 1),
				analytics.FormatValue(e.Key),
				analytics.FormatValue(e.Value),
				strconv.Itoa(e.Count),
			}
			if err := writer.Write(row); err != nil {
				return count, fmt.Errorf("failed to write row: %w", err)
			}
			count++
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, err
	}
	return count, file.Close()
}

func (em *ExportManager) writeJSON(path string, results []model.AggregationResult) (int, error) {
	file, err := createFile(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	count := 0
	for _, res := range results {
		count += res.Len()
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":       em.RunID,
			"exported_at":  time.Now().UTC(),
			"query_count":  len(results),
			"record_count": count,
		},
		"results": results,
	}
	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return count, file.Close()
}

// WriteResultsXLSX writes one sheet per query and returns the entry count.
func WriteResultsXLSX(path string, results []model.AggregationResult) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	used := make(map[string]bool)
	count := 0
	for i, res := range results {
		sheet := sheetName(res.Name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return 0, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return 0, err
		}

		header := []interface{}{string(res.GroupBy), fmt.Sprintf("%s(%s)", res.Reducer, res.Metric), "Count"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return 0, err
		}
		for j, e := range res.Entries {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return 0, err
			}
			var value interface{} = e.Value
			if analytics.FormatValue(e.Value) == "" {
				value = ""
			}
			row := []interface{}{analytics.FormatValue(e.Key), value, e.Count}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return 0, err
			}
			count++
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save workbook: %w", err)
	}
	return count, nil
}

// sheetName makes a valid, unique Excel sheet name (at most 31 characters).
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		clean = "Query"
	}
	base := truncateRunes(clean, 31)
	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
