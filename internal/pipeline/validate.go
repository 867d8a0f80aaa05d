package pipeline

import (
	"fmt"
	"strings"

	"go-sales-analytics/internal/model"
)

// RequiredColumns must be present in every source
var RequiredColumns = []model.Column{
	model.ColOrderDate,
	model.ColShipDate,
	model.ColSales,
	model.ColQuantity,
	model.ColDiscount,
	model.ColProfit,
	model.ColCategory,
	model.ColRegion,
	model.ColProductName,
	model.ColOrderID,
}

// MissingColumnsError lists required columns absent from a source header
type MissingColumnsError struct {
	Columns []model.Column
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = string(c)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(names, ", "))
}

func checkRequiredColumns(index map[model.Column]int) error {
	var missing []model.Column
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// countMissing counts blank raw cells per column, in header order.
// Short rows count as missing for the columns they lack.
func countMissing(cols []model.Column, index map[model.Column]int, rows [][]string) []model.MissingCount {
	counts := make([]model.MissingCount, len(cols))
	for i, col := range cols {
		counts[i].Column = col
		pos := index[col]
		for _, cells := range rows {
			if blankRow(cells) {
				continue
			}
			if pos >= len(cells) || strings.TrimSpace(cells[pos]) == "" {
				counts[i].Missing++
			}
		}
	}
	return counts
}
