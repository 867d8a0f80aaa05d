package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
)

// Store persists report runs and their aggregation results in SQLite
type Store struct {
	db *sql.DB
}

// RunRow is a stored report run
type RunRow struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	Status            string    `json:"status"`
	RowsAnalyzed      int       `json:"rows_analyzed"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	CreatedAt         time.Time `json:"created_at"`
}

// ResultRow is one stored aggregation entry
type ResultRow struct {
	RunID    string  `json:"run_id"`
	Query    string  `json:"query"`
	GroupBy  string  `json:"group_by"`
	Metric   string  `json:"metric"`
	Reducer  string  `json:"reducer"`
	Rank     int     `json:"rank"`
	GroupKey string  `json:"group_key"`
	Value    float64 `json:"value"` // NaN when the group had no numeric values
	RowCount int     `json:"row_count"`
}

// Open connects to dbPath and creates tables if not exists
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		source TEXT,
		status TEXT,
		rows_analyzed INTEGER,
		duplicates_removed INTEGER,
		summary TEXT,
		created_at DATETIME
	);
	`
	resultTable := `
	CREATE TABLE IF NOT EXISTS aggregation_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		query_name TEXT,
		group_by TEXT,
		metric TEXT,
		reducer TEXT,
		rank INTEGER,
		group_key TEXT,
		value REAL,
		row_count INTEGER,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, resultTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{db: db}, nil
}

// Close releases the connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run summary, replacing an earlier row with the same id
func (s *Store) SaveRun(ctx context.Context, summary model.RunSummary) error {
	summaryJSON, err := json.Marshal(sanitizeSummary(summary))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO report_runs
		(id, source, status, rows_analyzed, duplicates_removed, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.Source, summary.Status, summary.RowsAnalyzed,
		summary.DuplicatesRemoved, string(summaryJSON), summary.StartTime.UTC())
	return err
}

// SaveResults stores every entry of results in one transaction and returns the row count
func (s *Store) SaveResults(ctx context.Context, runID string, results []model.AggregationResult) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO aggregation_results
		(run_id, query_name, group_by, metric, reducer, rank, group_key, value, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
	for _, res := range results {
		for i, e := range res.Entries {
			var value sql.NullFloat64
			if !math.IsNaN(e.Value) {
				value = sql.NullFloat64{Float64: e.Value, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, runID, res.Name, string(res.GroupBy), string(res.Metric),
				res.Reducer, i+1, analytics.FormatValue(e.Key), value, e.Count, now); err != nil {
				return count, fmt.Errorf("failed to save %s entry %d: %w", res.Name, i+1, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// ListRuns returns stored runs, newest first
func (s *Store) ListRuns(ctx context.Context) ([]RunRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, status, rows_analyzed, duplicates_removed, created_at
		FROM report_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.Source, &r.Status, &r.RowsAnalyzed, &r.DuplicatesRemoved, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetResults returns the stored entries of a run in query then rank order
func (s *Store) GetResults(ctx context.Context, runID string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, query_name, group_by, metric, reducer, rank, group_key, value, row_count
		FROM aggregation_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var (
			r     ResultRow
			value sql.NullFloat64
		)
		if err := rows.Scan(&r.RunID, &r.Query, &r.GroupBy, &r.Metric, &r.Reducer, &r.Rank, &r.GroupKey, &value, &r.RowCount); err != nil {
			return nil, err
		}
		r.Value = math.NaN()
		if value.Valid {
			r.Value = value.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// sanitizeSummary drops results from the summary column; they are stored row by row
// in aggregation_results.
func sanitizeSummary(summary model.RunSummary) model.RunSummary {
	summary.Results = nil
	return summary
}
