package analytics

import (
	"math"
	"sort"
	"sync"

	"go-sales-analytics/internal/model"
)

// plan is a validated query
type plan struct {
	query   model.Query
	groupBy columnDef
	metric  columnDef
	reducer Reducer
}

func newPlan(q model.Query) (plan, error) {
	groupBy, err := lookup(string(q.GroupBy))
	if err != nil {
		return plan{}, err
	}
	metric, err := lookup(string(q.Metric))
	if err != nil {
		return plan{}, err
	}
	reducer, err := LookupReducer(q.Reducer)
	if err != nil {
		return plan{}, err
	}
	// count works on any column; every other reducer needs numbers
	if !metric.kind.Numeric() && reducer.Name != Count.Name {
		return plan{}, &NonNumericColumnError{Column: metric.name, Kind: metric.kind}
	}
	return plan{query: q, groupBy: groupBy, metric: metric, reducer: reducer}, nil
}

// metricValue extracts the value to reduce; ok is false for null cells.
func (p plan) metricValue(r *model.Record) (float64, bool) {
	v := p.metric.get(r)
	if p.metric.kind.Numeric() {
		return toFloat(v)
	}
	return 1, !isNull(v)
}

// group is one partial or final group of an aggregation
type group struct {
	key   interface{}
	rows  int
	state State
}

// partial is the grouping state one worker builds over a slice of rows
type partial struct {
	groups map[interface{}]*group
	order  []*group // first-seen order
}

func newPartial() *partial {
	return &partial{groups: make(map[interface{}]*group)}
}

// accumulate folds rows[i] for i in [from, to) into the partial.
func (p plan) accumulate(acc *partial, rows []model.Record, from, to int) {
	for i := from; i < to; i++ {
		r := &rows[i]
		raw := p.groupBy.get(r)
		if isNull(raw) {
			continue
		}
		key := groupKey(raw)
		g, ok := acc.groups[key]
		if !ok {
			g = &group{key: raw, state: Zero()}
			acc.groups[key] = g
			acc.order = append(acc.order, g)
		}
		g.rows++
		if v, ok := p.metricValue(r); ok {
			g.state = g.state.Add(v)
		}
	}
}

// merge folds other into acc. Partials must be merged in row order so first-seen
// order is preserved.
func (acc *partial) merge(other *partial) {
	for _, g := range other.order {
		key := groupKey(g.key)
		existing, ok := acc.groups[key]
		if !ok {
			acc.groups[key] = g
			acc.order = append(acc.order, g)
			continue
		}
		existing.rows += g.rows
		existing.state = existing.state.Merge(g.state)
	}
}

// finish reduces, sorts and truncates the groups into a result.
func (p plan) finish(acc *partial) model.AggregationResult {
	entries := make([]model.Entry, len(acc.order))
	for i, g := range acc.order {
		entries[i] = model.Entry{Key: g.key, Value: p.reducer.Result(g.state), Count: g.rows}
	}
	sortEntries(entries, p.query.Order)
	if p.query.Limit > 0 && len(entries) > p.query.Limit {
		entries = entries[:p.query.Limit]
	}
	return model.AggregationResult{
		Name:    p.query.Name,
		GroupBy: p.groupBy.name,
		Metric:  p.metric.name,
		Reducer: p.reducer.Name,
		Order:   p.query.Order,
		Entries: entries,
	}
}

// sortEntries orders entries that arrive in first-seen order. The sort is stable,
// so equal values keep first-seen order. NaN values always sort last.
func sortEntries(entries []model.Entry, order model.Order) {
	switch order {
	case model.OrderByValueDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return valueBefore(entries[i].Value, entries[j].Value, true)
		})
	case model.OrderByValueAsc:
		sort.SliceStable(entries, func(i, j int) bool {
			return valueBefore(entries[i].Value, entries[j].Value, false)
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return CompareKeys(entries[i].Key, entries[j].Key) < 0
		})
	}
}

func valueBefore(a, b float64, desc bool) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	case desc:
		return a > b
	}
	return a < b
}

// Aggregate groups table rows by q.GroupBy, reduces q.Metric within each group and
// returns the groups sorted by q.Order and truncated to q.Limit.
// Rows with a null group key are skipped; an empty table yields an empty result.
func Aggregate(table model.Table, q model.Query) (model.AggregationResult, error) {
	p, err := newPlan(q)
	if err != nil {
		return model.AggregationResult{}, err
	}
	acc := newPartial()
	p.accumulate(acc, table.Rows, 0, len(table.Rows))
	return p.finish(acc), nil
}

// AggregateParallel computes the same result as Aggregate by sharding rows across
// workers and merging their partial states. Values may differ from Aggregate in the
// last bits of floating point because sums are added in a different order.
func AggregateParallel(table model.Table, q model.Query, workers int) (model.AggregationResult, error) {
	p, err := newPlan(q)
	if err != nil {
		return model.AggregationResult{}, err
	}
	n := len(table.Rows)
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		acc := newPartial()
		p.accumulate(acc, table.Rows, 0, n)
		return p.finish(acc), nil
	}

	partials := make([]*partial, workers)
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		from := w * chunk
		to := from + chunk
		if to > n {
			to = n
		}
		partials[w] = newPartial()
		if from >= to {
			continue
		}
		wg.Add(1)
		go func(acc *partial, from, to int) {
			defer wg.Done()
			p.accumulate(acc, table.Rows, from, to)
		}(partials[w], from, to)
	}
	wg.Wait()

	final := newPartial()
	for _, part := range partials {
		final.merge(part)
	}
	return p.finish(final), nil
}
