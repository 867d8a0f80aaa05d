package model

import "time"

// Column names a column of a sales Table. Values follow the Superstore CSV headers.
type Column string

// Core columns every loaded Table carries
const (
	ColOrderDate   Column = "Order Date"
	ColShipDate    Column = "Ship Date"
	ColSales       Column = "Sales"
	ColQuantity    Column = "Quantity"
	ColDiscount    Column = "Discount"
	ColProfit      Column = "Profit"
	ColCategory    Column = "Category"
	ColRegion      Column = "Region"
	ColProductName Column = "Product Name"
	ColOrderID     Column = "Order ID"
)

// Derived calendar columns
const (
	ColYear      Column = "Year"
	ColMonth     Column = "Month"
	ColMonthName Column = "Month Name"
	ColQuarter   Column = "Quarter"
)

// Optional Superstore columns, kept when the source has them
const (
	ColRowID        Column = "Row ID"
	ColShipMode     Column = "Ship Mode"
	ColCustomerID   Column = "Customer ID"
	ColCustomerName Column = "Customer Name"
	ColSegment      Column = "Segment"
	ColCountry      Column = "Country"
	ColCity         Column = "City"
	ColState        Column = "State"
	ColPostalCode   Column = "Postal Code"
	ColSubCategory  Column = "Sub-Category"
	ColProductID    Column = "Product ID"
)

// Kind is the value type of a column
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindDate:
		return "datetime"
	default:
		return "object"
	}
}

// Numeric reports whether values of this kind can be reduced by a metric reducer.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// DerivedFeatures holds calendar fields computed from the order date.
type DerivedFeatures struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Quarter   int    `json:"quarter"`
}

// Record is one sales line item.
// Missing float cells are NaN, missing strings are empty and missing dates are zero.
type Record struct {
	RowID        string    `json:"row_id,omitempty"`
	OrderID      string    `json:"order_id"`
	OrderDate    time.Time `json:"order_date"`
	ShipDate     time.Time `json:"ship_date"`
	ShipMode     string    `json:"ship_mode,omitempty"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	Segment      string    `json:"segment,omitempty"`
	Country      string    `json:"country,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Region       string    `json:"region"`
	ProductID    string    `json:"product_id,omitempty"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category,omitempty"`
	ProductName  string    `json:"product_name"`
	Sales        float64   `json:"sales"`
	Quantity     int       `json:"quantity"`
	Discount     float64   `json:"discount"`
	Profit       float64   `json:"profit"`

	DerivedFeatures
}

// Table is an ordered sequence of records.
// Analytics operations never modify a Table's rows; they return new tables.
type Table struct {
	Rows []Record `json:"rows"`
}

// NewTable wraps rows in a Table.
func NewTable(rows []Record) Table {
	return Table{Rows: rows}
}

// Len returns the row count.
func (t Table) Len() int {
	return len(t.Rows)
}

// Head returns a table holding the first n rows.
func (t Table) Head(n int) Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return Table{Rows: t.Rows[:n:n]}
}
