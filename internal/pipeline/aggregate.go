package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/metrics"
	"go-sales-analytics/internal/model"
)

// DefaultWorkers bounds concurrent queries when a report spec leaves it unset
const DefaultWorkers = 4

// DefaultTopN is the size of the top/worst product lists
const DefaultTopN = 10

// StandardQueries is the console report query set: yearly, monthly, category and
// region totals plus top and worst products.
func StandardQueries(topN int) []model.Query {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return []model.Query{
		{Name: "Sales by Year", GroupBy: model.ColYear, Metric: model.ColSales},
		{Name: "Profit by Year", GroupBy: model.ColYear, Metric: model.ColProfit},
		{Name: "Monthly Sales", GroupBy: model.ColMonth, Metric: model.ColSales},
		{Name: "Sales by Category", GroupBy: model.ColCategory, Metric: model.ColSales},
		{Name: "Sales by Region", GroupBy: model.ColRegion, Metric: model.ColSales},
		{Name: fmt.Sprintf("Top %d Products by Sales", topN), GroupBy: model.ColProductName, Metric: model.ColSales, Order: model.OrderByValueDesc, Limit: topN},
		{Name: fmt.Sprintf("Top %d Products by Profit", topN), GroupBy: model.ColProductName, Metric: model.ColProfit, Order: model.OrderByValueDesc, Limit: topN},
		{Name: fmt.Sprintf("Worst %d Products by Profit", topN), GroupBy: model.ColProductName, Metric: model.ColProfit, Order: model.OrderByValueAsc, Limit: topN},
	}
}

// DashboardQueries are the dashboard charts: daily trend, category and region
// totals and the top products.
func DashboardQueries() []model.Query {
	return []model.Query{
		{Name: "Daily Sales", GroupBy: model.ColOrderDate, Metric: model.ColSales},
		{Name: "Sales by Category", GroupBy: model.ColCategory, Metric: model.ColSales},
		{Name: "Sales by Region", GroupBy: model.ColRegion, Metric: model.ColSales},
		{Name: fmt.Sprintf("Top %d Products by Sales", DefaultTopN), GroupBy: model.ColProductName, Metric: model.ColSales, Order: model.OrderByValueDesc, Limit: DefaultTopN},
	}
}

// RunQueries computes every query against the same table with at most workers
// queries in flight. Results keep the order of queries. The first failing query
// cancels the rest.
func RunQueries(ctx context.Context, table model.Table, queries []model.Query, workers int) ([]model.AggregationResult, error) {
	if workers < 1 {
		workers = DefaultWorkers
	}
	results := make([]model.AggregationResult, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			label := reducerLabel(q.Reducer)
			res, err := analytics.Aggregate(table, q)
			if err != nil {
				metrics.AggregationsTotal.WithLabelValues(label, "failed").Inc()
				return fmt.Errorf("query %q: %w", q.Title(), err)
			}
			metrics.AggregationsTotal.WithLabelValues(label, "ok").Inc()
			res.Name = q.Title()
			results[i] = res
			slog.DebugContext(ctx, "query done", slog.String("query", res.Name), slog.Int("groups", res.Len()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func reducerLabel(name string) string {
	r, err := analytics.LookupReducer(name)
	if err != nil {
		return "unknown"
	}
	return r.Name
}
