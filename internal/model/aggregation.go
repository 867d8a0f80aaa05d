package model

import (
	"fmt"
	"strings"
)

// Order controls how aggregation entries are sorted
type Order int

const (
	// OrderByKeyAsc sorts ascending by group key. It is the zero value.
	OrderByKeyAsc Order = iota
	// OrderByValueDesc sorts by reduced value, largest first
	OrderByValueDesc
	// OrderByValueAsc sorts by reduced value, smallest first
	OrderByValueAsc
)

func (o Order) String() string {
	switch o {
	case OrderByValueDesc:
		return "value_desc"
	case OrderByValueAsc:
		return "value_asc"
	default:
		return "key_asc"
	}
}

// ParseOrder accepts the String forms plus a few aliases ("desc", "top", "asc", "worst", "key").
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "key", "key_asc", "by_key_asc":
		return OrderByKeyAsc, nil
	case "value_desc", "by_value_desc", "desc", "top":
		return OrderByValueDesc, nil
	case "value_asc", "by_value_asc", "asc", "worst", "bottom":
		return OrderByValueAsc, nil
	}
	return OrderByKeyAsc, fmt.Errorf("unknown order: %q", s)
}

// MarshalText lets report specs and JSON responses carry the order by name.
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an order name.
func (o *Order) UnmarshalText(b []byte) error {
	parsed, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// UnmarshalYAML parses an order name from a report spec file.
func (o *Order) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return o.UnmarshalText([]byte(s))
}

// Query describes one group/reduce/sort/limit aggregation
type Query struct {
	Name    string `json:"name" yaml:"name"`
	GroupBy Column `json:"groupBy" yaml:"groupBy"`
	Metric  Column `json:"metric" yaml:"metric"`
	Reducer string `json:"reducer,omitempty" yaml:"reducer,omitempty"` // sum (default), count, mean, min, max
	Order   Order  `json:"order" yaml:"order"`
	Limit   int    `json:"limit,omitempty" yaml:"limit,omitempty"` // <= 0 means no limit
}

// Title returns the query name, or a generated one when unnamed.
func (q Query) Title() string {
	if q.Name != "" {
		return q.Name
	}
	reducer := q.Reducer
	if reducer == "" {
		reducer = "sum"
	}
	title := fmt.Sprintf("%s(%s) by %s", reducer, q.Metric, q.GroupBy)
	if q.Limit > 0 {
		title = fmt.Sprintf("%s, %s %d", title, q.Order, q.Limit)
	}
	return title
}

// Entry is one group of an aggregation result
type Entry struct {
	Key   interface{} `json:"key"`
	Value float64     `json:"value"`
	Count int         `json:"count"`
}

// AggregationResult is an ordered mapping from group key to reduced metric
type AggregationResult struct {
	Name    string  `json:"name,omitempty"`
	GroupBy Column  `json:"group_by"`
	Metric  Column  `json:"metric"`
	Reducer string  `json:"reducer"`
	Order   Order   `json:"order"`
	Entries []Entry `json:"entries"`
}

// Len returns the number of groups.
func (r AggregationResult) Len() int {
	return len(r.Entries)
}

// Keys returns the group keys in result order.
func (r AggregationResult) Keys() []interface{} {
	keys := make([]interface{}, len(r.Entries))
	for i, e := range r.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the reduced values in result order.
func (r AggregationResult) Values() []float64 {
	values := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		values[i] = e.Value
	}
	return values
}
