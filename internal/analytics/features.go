package analytics

import (
	"time"

	"go-sales-analytics/internal/model"
)

// Features computes the calendar features of an order date.
func Features(date time.Time) model.DerivedFeatures {
	month := int(date.Month())
	return model.DerivedFeatures{
		Year:      date.Year(),
		Month:     month,
		MonthName: date.Month().String(),
		Quarter:   (month + 2) / 3,
	}
}

// DeriveRecord returns r with its derived features recomputed from r.OrderDate.
func DeriveRecord(r model.Record) (model.Record, error) {
	if r.OrderDate.IsZero() {
		return r, &InvalidDateError{Column: model.ColOrderDate}
	}
	r.DerivedFeatures = Features(r.OrderDate)
	return r, nil
}

// DeriveFeatures returns a copy of table with year, month, month name and quarter
// recomputed for every row. The input table is left untouched.
func DeriveFeatures(table model.Table) (model.Table, error) {
	rows := make([]model.Record, len(table.Rows))
	for i, r := range table.Rows {
		derived, err := DeriveRecord(r)
		if err != nil {
			if de, ok := err.(*InvalidDateError); ok {
				de.Row = i + 1
			}
			return model.Table{}, err
		}
		rows[i] = derived
	}
	return model.NewTable(rows), nil
}
