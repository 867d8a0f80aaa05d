package analytics

import (
	"fmt"

	"go-sales-analytics/internal/model"
)

// InvalidDateError reports a row whose date field is not a calendar date.
// Row is the 1-based data row (header excluded).
type InvalidDateError struct {
	Row    int
	Column model.Column
	Value  string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("row %d: %s %q is not a valid calendar date", e.Row, e.Column, e.Value)
}

// UnknownColumnError reports a column name that the table does not have.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column: %q", e.Column)
}

// NonNumericColumnError reports a metric column that cannot be reduced.
type NonNumericColumnError struct {
	Column model.Column
	Kind   model.Kind
}

func (e *NonNumericColumnError) Error() string {
	return fmt.Sprintf("column %q is %s, not numeric", e.Column, e.Kind)
}

// UnknownReducerError reports a reducer name with no registered Reducer.
type UnknownReducerError struct {
	Reducer string
}

func (e *UnknownReducerError) Error() string {
	return fmt.Sprintf("unknown reducer: %q", e.Reducer)
}
