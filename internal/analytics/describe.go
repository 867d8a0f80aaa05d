package analytics

import (
	"encoding/json"
	"math"
	"sort"

	"go-sales-analytics/internal/model"
)

// DefaultDescribeColumns are the numeric columns summarised when none are named.
var DefaultDescribeColumns = []model.Column{model.ColSales, model.ColQuantity, model.ColDiscount, model.ColProfit}

// Summary is the describe() statistics of one numeric column
type Summary struct {
	Column model.Column `json:"column"`
	Count  int          `json:"count"`
	Mean   float64      `json:"mean"`
	Std    float64      `json:"std"`
	Min    float64      `json:"min"`
	P25    float64      `json:"p25"`
	P50    float64      `json:"p50"`
	P75    float64      `json:"p75"`
	Max    float64      `json:"max"`
}

// MarshalJSON writes the statistics of an all-null column as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column model.Column    `json:"column"`
		Count  int             `json:"count"`
		Mean   model.JSONFloat `json:"mean"`
		Std    model.JSONFloat `json:"std"`
		Min    model.JSONFloat `json:"min"`
		P25    model.JSONFloat `json:"p25"`
		P50    model.JSONFloat `json:"p50"`
		P75    model.JSONFloat `json:"p75"`
		Max    model.JSONFloat `json:"max"`
	}{s.Column, s.Count, model.JSONFloat(s.Mean), model.JSONFloat(s.Std), model.JSONFloat(s.Min),
		model.JSONFloat(s.P25), model.JSONFloat(s.P50), model.JSONFloat(s.P75), model.JSONFloat(s.Max)})
}

// Describe summarises numeric columns, skipping null cells. Std is the sample
// standard deviation (n-1); percentiles interpolate linearly between ranks.
func Describe(table model.Table, cols ...model.Column) ([]Summary, error) {
	if len(cols) == 0 {
		cols = DefaultDescribeColumns
	}
	out := make([]Summary, 0, len(cols))
	for _, col := range cols {
		def, err := lookup(string(col))
		if err != nil {
			return nil, err
		}
		if !def.kind.Numeric() {
			return nil, &NonNumericColumnError{Column: def.name, Kind: def.kind}
		}
		values := make([]float64, 0, len(table.Rows))
		for i := range table.Rows {
			if v, ok := toFloat(def.get(&table.Rows[i])); ok {
				values = append(values, v)
			}
		}
		out = append(out, summarize(def.name, values))
	}
	return out, nil
}

func summarize(col model.Column, values []float64) Summary {
	s := Summary{Column: col, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(len(sorted)-1))
	} else {
		s.Std = math.NaN()
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.50)
	s.P75 = quantile(sorted, 0.75)
	return s
}

// quantile expects sorted, non-empty input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
