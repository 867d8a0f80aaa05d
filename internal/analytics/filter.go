package analytics

import (
	"sort"

	"go-sales-analytics/internal/model"
)

// Set is a membership set of allowed values
type Set[T comparable] map[T]struct{}

// NewSet builds a set from values. NewSet[int]() is the empty set.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Criteria is the conjunction of per-dimension membership predicates.
// An empty or nil set rejects every row for its dimension.
type Criteria struct {
	Years      Set[int]
	Categories Set[string]
	Regions    Set[string]
}

// Match reports whether r satisfies every dimension.
func (c Criteria) Match(r *model.Record) bool {
	return c.Years.Has(r.Year) && c.Categories.Has(r.Category) && c.Regions.Has(r.Region)
}

// Filter returns the rows whose year, category and region are all allowed.
func Filter(table model.Table, c Criteria) model.Table {
	rows := make([]model.Record, 0, len(table.Rows))
	for i := range table.Rows {
		if c.Match(&table.Rows[i]) {
			rows = append(rows, table.Rows[i])
		}
	}
	return model.NewTable(rows)
}

// Where keeps rows whose column value, formatted with FormatValue, is in allowed.
func Where(table model.Table, column string, allowed Set[string]) (model.Table, error) {
	def, err := lookup(column)
	if err != nil {
		return model.Table{}, err
	}
	rows := make([]model.Record, 0, len(table.Rows))
	for i := range table.Rows {
		if allowed.Has(FormatValue(def.get(&table.Rows[i]))) {
			rows = append(rows, table.Rows[i])
		}
	}
	return model.NewTable(rows), nil
}

// FilterOptions lists the selectable values of each filter dimension
type FilterOptions struct {
	Years      []int    `json:"years"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
}

// Options enumerates the distinct years (ascending), categories and regions
// (first-seen order) of a table.
func Options(table model.Table) FilterOptions {
	opts := FilterOptions{Years: []int{}, Categories: []string{}, Regions: []string{}}
	years := NewSet[int]()
	categories := NewSet[string]()
	regions := NewSet[string]()
	for _, r := range table.Rows {
		if !years.Has(r.Year) {
			years[r.Year] = struct{}{}
			opts.Years = append(opts.Years, r.Year)
		}
		if !categories.Has(r.Category) {
			categories[r.Category] = struct{}{}
			opts.Categories = append(opts.Categories, r.Category)
		}
		if !regions.Has(r.Region) {
			regions[r.Region] = struct{}{}
			opts.Regions = append(opts.Regions, r.Region)
		}
	}
	sort.Ints(opts.Years)
	return opts
}

// Criteria selects every option, i.e. the "no filter" criteria for the table.
func (o FilterOptions) Criteria() Criteria {
	return Criteria{
		Years:      NewSet(o.Years...),
		Categories: NewSet(o.Categories...),
		Regions:    NewSet(o.Regions...),
	}
}

// CriteriaFor turns a report filter into Criteria. Nil dimensions default to all
// values present in table; empty, non-nil ones stay empty and reject everything.
func CriteriaFor(table model.Table, f *model.Filter) Criteria {
	all := Options(table).Criteria()
	if f == nil {
		return all
	}
	if f.Years != nil {
		all.Years = NewSet(f.Years...)
	}
	if f.Categories != nil {
		all.Categories = NewSet(f.Categories...)
	}
	if f.Regions != nil {
		all.Regions = NewSet(f.Regions...)
	}
	return all
}
