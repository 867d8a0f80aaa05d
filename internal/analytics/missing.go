package analytics

import "go-sales-analytics/internal/model"

// ColumnInfo is one line of a table's info(): name, non-null count and type
type ColumnInfo struct {
	Column  model.Column `json:"column"`
	NonNull int          `json:"non_null"`
	Kind    string       `json:"dtype"`
}

// MissingValues counts null cells per column, in column order.
func MissingValues(table model.Table) []model.MissingCount {
	out := make([]model.MissingCount, len(columns))
	for c, def := range columns {
		out[c].Column = def.name
		for i := range table.Rows {
			if isNull(def.get(&table.Rows[i])) {
				out[c].Missing++
			}
		}
	}
	return out
}

// Info describes each column's non-null count and value type.
// Restrict to a subset (e.g. the columns a source actually had) with only.
func Info(table model.Table, only ...model.Column) []ColumnInfo {
	keep := NewSet(only...)
	missing := MissingValues(table)
	out := make([]ColumnInfo, 0, len(columns))
	for c, def := range columns {
		if len(only) > 0 && !keep.Has(def.name) {
			continue
		}
		out = append(out, ColumnInfo{
			Column:  def.name,
			NonNull: table.Len() - missing[c].Missing,
			Kind:    def.kind.String(),
		})
	}
	return out
}
