package model

import "time"

// StageMetrics represents metrics for a specific pipeline stage
type StageMetrics struct {
	StageName   string        `json:"stage_name"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	RowsIn      int           `json:"rows_in"`
	RowsOut     int           `json:"rows_out"`
	WorkerCount int           `json:"worker_count,omitempty"`
	Status      string        `json:"status"` // running, completed, failed
	Error       string        `json:"error,omitempty"`
}

// MissingCount is the number of null cells in one column
type MissingCount struct {
	Column  Column `json:"column"`
	Missing int    `json:"missing"`
}

// LoadReport describes what the loader read from a source
type LoadReport struct {
	Source      string         `json:"source"`
	Format      string         `json:"format"`   // csv, xlsx
	Encoding    string         `json:"encoding"` // utf-8, latin1
	Columns     []Column       `json:"columns"`
	RowsRead    int            `json:"rows_read"`
	RowsSkipped int            `json:"rows_skipped"`
	Missing     []MissingCount `json:"missing"`
}

// RunSummary describes a completed report run
type RunSummary struct {
	RunID             string              `json:"run_id"`
	Source            string              `json:"source"`
	StartTime         time.Time           `json:"start_time"`
	EndTime           time.Time           `json:"end_time"`
	Status            string              `json:"status"`
	Load              LoadReport          `json:"load"`
	DuplicatesRemoved int                 `json:"duplicates_removed"`
	NegativeProfit    int                 `json:"negative_profit_rows"`
	RowsAnalyzed      int                 `json:"rows_analyzed"`
	Stages            []StageMetrics      `json:"stages"`
	Results           []AggregationResult `json:"results"`
	Exports           []ExportResult      `json:"exports,omitempty"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "database", "csv", "json", "xlsx"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}
