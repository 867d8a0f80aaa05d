package analytics

import (
	"math"
	"sort"
	"strings"
)

// State is the monoid every reducer accumulates into. Zero() is its identity and
// Merge is associative, so groups can be reduced in shards and combined.
type State struct {
	Sum   float64
	Count int
	Min   float64
	Max   float64
}

// Zero returns the identity state.
func Zero() State {
	return State{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Add folds one value into s.
func (s State) Add(v float64) State {
	s.Sum += v
	s.Count++
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	return s
}

// Merge combines two partial states.
func (s State) Merge(o State) State {
	s.Sum += o.Sum
	s.Count += o.Count
	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
	return s
}

// Reducer turns an accumulated State into a group's metric value
type Reducer struct {
	Name   string
	Result func(State) float64
}

var (
	// Sum adds the values; an all-null group sums to 0
	Sum = Reducer{Name: "sum", Result: func(s State) float64 { return s.Sum }}
	// Count counts non-null values
	Count = Reducer{Name: "count", Result: func(s State) float64 { return float64(s.Count) }}
	// Mean averages non-null values; NaN for an all-null group
	Mean = Reducer{Name: "mean", Result: func(s State) float64 {
		if s.Count == 0 {
			return math.NaN()
		}
		return s.Sum / float64(s.Count)
	}}
	// Min is the smallest value; NaN for an all-null group
	Min = Reducer{Name: "min", Result: func(s State) float64 {
		if s.Count == 0 {
			return math.NaN()
		}
		return s.Min
	}}
	// Max is the largest value; NaN for an all-null group
	Max = Reducer{Name: "max", Result: func(s State) float64 {
		if s.Count == 0 {
			return math.NaN()
		}
		return s.Max
	}}
)

var reducers = map[string]Reducer{
	"sum":     Sum,
	"count":   Count,
	"mean":    Mean,
	"avg":     Mean,
	"average": Mean,
	"min":     Min,
	"max":     Max,
}

// LookupReducer finds a reducer by name; the empty name means sum.
func LookupReducer(name string) (Reducer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Sum, nil
	}
	r, ok := reducers[name]
	if !ok {
		return Reducer{}, &UnknownReducerError{Reducer: name}
	}
	return r, nil
}

// ReducerNames lists the accepted reducer names.
func ReducerNames() []string {
	names := make([]string, 0, len(reducers))
	for name := range reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
