package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go-sales-analytics/internal/model"
)

type columnDef struct {
	name model.Column
	kind model.Kind
	get  func(r *model.Record) interface{}
}

// columns lists every Table column in Superstore header order, derived columns last.
var columns = []columnDef{
	{model.ColRowID, model.KindString, func(r *model.Record) interface{} { return r.RowID }},
	{model.ColOrderID, model.KindString, func(r *model.Record) interface{} { return r.OrderID }},
	{model.ColOrderDate, model.KindDate, func(r *model.Record) interface{} { return r.OrderDate }},
	{model.ColShipDate, model.KindDate, func(r *model.Record) interface{} { return r.ShipDate }},
	{model.ColShipMode, model.KindString, func(r *model.Record) interface{} { return r.ShipMode }},
	{model.ColCustomerID, model.KindString, func(r *model.Record) interface{} { return r.CustomerID }},
	{model.ColCustomerName, model.KindString, func(r *model.Record) interface{} { return r.CustomerName }},
	{model.ColSegment, model.KindString, func(r *model.Record) interface{} { return r.Segment }},
	{model.ColCountry, model.KindString, func(r *model.Record) interface{} { return r.Country }},
	{model.ColCity, model.KindString, func(r *model.Record) interface{} { return r.City }},
	{model.ColState, model.KindString, func(r *model.Record) interface{} { return r.State }},
	{model.ColPostalCode, model.KindString, func(r *model.Record) interface{} { return r.PostalCode }},
	{model.ColRegion, model.KindString, func(r *model.Record) interface{} { return r.Region }},
	{model.ColProductID, model.KindString, func(r *model.Record) interface{} { return r.ProductID }},
	{model.ColCategory, model.KindString, func(r *model.Record) interface{} { return r.Category }},
	{model.ColSubCategory, model.KindString, func(r *model.Record) interface{} { return r.SubCategory }},
	{model.ColProductName, model.KindString, func(r *model.Record) interface{} { return r.ProductName }},
	{model.ColSales, model.KindFloat, func(r *model.Record) interface{} { return r.Sales }},
	{model.ColQuantity, model.KindInt, func(r *model.Record) interface{} { return r.Quantity }},
	{model.ColDiscount, model.KindFloat, func(r *model.Record) interface{} { return r.Discount }},
	{model.ColProfit, model.KindFloat, func(r *model.Record) interface{} { return r.Profit }},
	{model.ColYear, model.KindInt, func(r *model.Record) interface{} { return r.Year }},
	{model.ColMonth, model.KindInt, func(r *model.Record) interface{} { return r.Month }},
	{model.ColMonthName, model.KindString, func(r *model.Record) interface{} { return r.MonthName }},
	{model.ColQuarter, model.KindInt, func(r *model.Record) interface{} { return r.Quarter }},
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(columns)*2)
	for i, c := range columns {
		idx[string(c.name)] = i
		idx[normalizeColumnName(string(c.name))] = i
	}
	return idx
}()

// normalizeColumnName folds case, spaces, dashes and underscores: "product_name" finds "Product Name".
func normalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

// Columns returns every Table column in display order.
func Columns() []model.Column {
	out := make([]model.Column, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// LookupColumn resolves a column name, exact match first, then case/punctuation insensitive.
func LookupColumn(name string) (model.Column, model.Kind, error) {
	def, err := lookup(name)
	if err != nil {
		return "", model.KindString, err
	}
	return def.name, def.kind, nil
}

func lookup(name string) (columnDef, error) {
	if i, ok := columnIndex[name]; ok {
		return columns[i], nil
	}
	if i, ok := columnIndex[normalizeColumnName(name)]; ok {
		return columns[i], nil
	}
	return columnDef{}, &UnknownColumnError{Column: name}
}

// Value returns a record's value for a column.
func Value(r *model.Record, column model.Column) (interface{}, error) {
	def, err := lookup(string(column))
	if err != nil {
		return nil, err
	}
	return def.get(r), nil
}

// isNull reports whether v is a missing cell: empty string, NaN or zero time.
func isNull(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return math.IsNaN(x)
	case time.Time:
		return x.IsZero()
	}
	return false
}

// toFloat converts a numeric cell; ok is false for null or non-numeric values.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

// groupKey normalises a cell into a comparable map key.
func groupKey(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

// CompareKeys orders two group keys: numbers numerically, times chronologically,
// everything else by its formatted string.
func CompareKeys(a, b interface{}) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

// FormatValue renders a cell the way filters and exports compare it.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	}
	return ""
}
