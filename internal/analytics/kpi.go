package analytics

import (
	"math"

	"go-sales-analytics/internal/model"
)

// KPIs are the headline dashboard numbers of a table
type KPIs struct {
	Rows               int     `json:"rows"`
	TotalSales         float64 `json:"total_sales"`
	TotalProfit        float64 `json:"total_profit"`
	TotalOrders        int     `json:"total_orders"`
	NegativeProfitRows int     `json:"negative_profit_rows"`
}

// ComputeKPIs sums sales and profit (nulls skipped), counts distinct order ids and
// negative-profit rows.
func ComputeKPIs(table model.Table) KPIs {
	k := KPIs{Rows: table.Len()}
	orders := make(map[string]struct{})
	for _, r := range table.Rows {
		if !math.IsNaN(r.Sales) {
			k.TotalSales += r.Sales
		}
		if !math.IsNaN(r.Profit) {
			k.TotalProfit += r.Profit
		}
		if r.OrderID != "" {
			orders[r.OrderID] = struct{}{}
		}
	}
	k.TotalOrders = len(orders)
	k.NegativeProfitRows = CountNegativeProfit(table)
	return k
}

// DistinctCount returns the number of distinct non-null values in a column.
func DistinctCount(table model.Table, column model.Column) (int, error) {
	def, err := lookup(string(column))
	if err != nil {
		return 0, err
	}
	seen := make(map[interface{}]struct{})
	for i := range table.Rows {
		v := def.get(&table.Rows[i])
		if isNull(v) {
			continue
		}
		seen[groupKey(v)] = struct{}{}
	}
	return len(seen), nil
}
