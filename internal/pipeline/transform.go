package pipeline

import (
	"context"
	"log/slog"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
)

// Prepared is a loaded table after feature derivation and cleaning
type Prepared struct {
	// Derived holds every loaded row with calendar features, duplicates included
	Derived model.Table
	// Clean is Derived without exact duplicate rows (or Derived itself when duplicates are kept)
	Clean             model.Table
	DuplicatesFound   int
	DuplicatesRemoved int
	NegativeProfit    int
}

// Prepare derives calendar features and removes exact duplicate rows.
// tracker may be nil.
func Prepare(ctx context.Context, table model.Table, keepDuplicates bool, tracker *RunTracker) (Prepared, error) {
	var p Prepared

	idx := tracker.StartStage(StageDerive, table.Len(), 1)
	derived, err := analytics.DeriveFeatures(table)
	tracker.EndStage(idx, derived.Len(), err)
	if err != nil {
		return p, err
	}
	if err := ctx.Err(); err != nil {
		return p, err
	}
	p.Derived = derived

	idx = tracker.StartStage(StageClean, derived.Len(), 1)
	p.DuplicatesFound = analytics.CountDuplicates(derived)
	p.Clean = derived
	if !keepDuplicates && p.DuplicatesFound > 0 {
		p.Clean = analytics.DropDuplicates(derived)
		p.DuplicatesRemoved = derived.Len() - p.Clean.Len()
	}
	p.NegativeProfit = analytics.CountNegativeProfit(p.Clean)
	tracker.EndStage(idx, p.Clean.Len(), nil)

	slog.InfoContext(ctx, "table prepared",
		slog.Int("rows", p.Clean.Len()),
		slog.Int("duplicates_found", p.DuplicatesFound),
		slog.Int("duplicates_removed", p.DuplicatesRemoved),
		slog.Int("negative_profit_rows", p.NegativeProfit))
	return p, nil
}
