package analytics

import (
	"strconv"
	"strings"

	"go-sales-analytics/internal/model"
)

// rowKey encodes every column of a record. Two rows are duplicates iff their keys match;
// NaN encodes as "NaN" so missing numbers compare equal, like pandas.
func rowKey(r *model.Record) string {
	var b strings.Builder
	for _, c := range columns {
		switch v := c.get(r).(type) {
		case string:
			b.WriteString(strconv.Quote(v))
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		default:
			b.WriteString(FormatValue(v))
		}
		b.WriteByte('|')
	}
	return b.String()
}

// duplicateMask marks each row that repeats an earlier row.
func duplicateMask(table model.Table) []bool {
	seen := make(map[string]struct{}, len(table.Rows))
	mask := make([]bool, len(table.Rows))
	for i := range table.Rows {
		key := rowKey(&table.Rows[i])
		if _, ok := seen[key]; ok {
			mask[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return mask
}

// CountDuplicates returns the number of rows that exactly repeat an earlier row.
func CountDuplicates(table model.Table) int {
	n := 0
	for _, dup := range duplicateMask(table) {
		if dup {
			n++
		}
	}
	return n
}

// DropDuplicates returns a new table keeping the first occurrence of every row.
func DropDuplicates(table model.Table) model.Table {
	mask := duplicateMask(table)
	rows := make([]model.Record, 0, len(table.Rows))
	for i, dup := range mask {
		if !dup {
			rows = append(rows, table.Rows[i])
		}
	}
	return model.NewTable(rows)
}

// CountNegativeProfit returns the number of rows with profit below zero.
func CountNegativeProfit(table model.Table) int {
	n := 0
	for _, r := range table.Rows {
		if r.Profit < 0 {
			n++
		}
	}
	return n
}
