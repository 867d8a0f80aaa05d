package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"go-sales-analytics/internal/metrics"
	"go-sales-analytics/internal/model"
)

// Stage names
const (
	StageIngest    = "ingest"
	StageDerive    = "derive"
	StageClean     = "clean"
	StageFilter    = "filter"
	StageAggregate = "aggregate"
	StageExport    = "export"
)

// RunTracker records per-stage metrics of a report run
type RunTracker struct {
	RunID  string
	mu     sync.Mutex
	stages []model.StageMetrics
	now    func() time.Time
}

// NewRunTracker creates a tracker for one run
func NewRunTracker(runID string) *RunTracker {
	return &RunTracker{RunID: runID, now: time.Now}
}

// StartStage marks a stage as running and returns its index for EndStage.
// A nil tracker records nothing.
func (rt *RunTracker) StartStage(stage string, rowsIn, workerCount int) int {
	if rt == nil {
		return -1
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.stages = append(rt.stages, model.StageMetrics{
		StageName:   stage,
		StartTime:   rt.now(),
		RowsIn:      rowsIn,
		WorkerCount: workerCount,
		Status:      "running",
	})
	slog.Debug("stage started", slog.String("run_id", rt.RunID), slog.String("stage", stage), slog.Int("rows_in", rowsIn))
	return len(rt.stages) - 1
}

// EndStage completes (err == nil) or fails a stage started with StartStage
func (rt *RunTracker) EndStage(idx, rowsOut int, err error) {
	if rt == nil {
		return
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if idx < 0 || idx >= len(rt.stages) {
		return
	}
	s := &rt.stages[idx]
	s.EndTime = rt.now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	s.RowsOut = rowsOut
	s.Status = "completed"
	if err != nil {
		s.Status = "failed"
		s.Error = err.Error()
	}

	metrics.ObserveStage(s.StageName, s.Duration)
	slog.Info("stage finished",
		slog.String("run_id", rt.RunID),
		slog.String("stage", s.StageName),
		slog.String("status", s.Status),
		slog.Int("rows_in", s.RowsIn),
		slog.Int("rows_out", s.RowsOut),
		slog.Duration("duration", s.Duration))
}

// Stages returns a copy of the recorded stages in start order
func (rt *RunTracker) Stages() []model.StageMetrics {
	if rt == nil {
		return nil
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]model.StageMetrics, len(rt.stages))
	copy(out, rt.stages)
	return out
}
