package analytics

import (
	"math"
	"time"

	"go-sales-analytics/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sale builds a derived record for the given year, category, region and sales amount.
func sale(year int, category, region string, sales float64) model.Record {
	r := model.Record{
		OrderID:     "CA-" + category + region,
		OrderDate:   date(year, time.March, 10),
		ShipDate:    date(year, time.March, 14),
		Category:    category,
		Region:      region,
		ProductName: "Widget " + category,
		Sales:       sales,
		Quantity:    1,
		Discount:    0,
		Profit:      sales / 10,
	}
	r.DerivedFeatures = Features(r.OrderDate)
	return r
}

// scenarioTable is the three-row example table.
func scenarioTable() model.Table {
	return model.NewTable([]model.Record{
		sale(2021, "A", "East", 100),
		sale(2021, "B", "West", 50),
		sale(2022, "A", "East", 200),
	})
}

func withProfit(r model.Record, profit float64) model.Record {
	r.Profit = profit
	return r
}

func product(name string, sales, profit float64) model.Record {
	r := sale(2020, "Furniture", "South", sales)
	r.ProductName = name
	r.Profit = profit
	return r
}

var nan = math.NaN()
