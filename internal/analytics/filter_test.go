package analytics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sales-analytics/internal/model"
)

func TestFilterScenario(t *testing.T) {
	table := scenarioTable()

	filtered := Filter(table, Criteria{
		Years:      NewSet(2021),
		Categories: NewSet("A", "B"),
		Regions:    NewSet("East", "West"),
	})

	require.Equal(t, 2, filtered.Len())
	for _, r := range filtered.Rows {
		assert.Equal(t, 2021, r.Year)
	}
	assert.Equal(t, 3, table.Len(), "source table must not change")
}

func TestFilterIsConjunction(t *testing.T) {
	table := scenarioTable()

	filtered := Filter(table, Criteria{
		Years:      NewSet(2021, 2022),
		Categories: NewSet("A"),
		Regions:    NewSet("West"),
	})
	assert.Equal(t, 0, filtered.Len(), "category A rows are all East")
}

func TestFilterEmptySetRejectsAll(t *testing.T) {
	table := scenarioTable()
	all := Options(table).Criteria()

	tests := []struct {
		name     string
		criteria Criteria
	}{
		{"no years", Criteria{Years: NewSet[int](), Categories: all.Categories, Regions: all.Regions}},
		{"no categories", Criteria{Years: all.Years, Categories: NewSet[string](), Regions: all.Regions}},
		{"no regions", Criteria{Years: all.Years, Categories: all.Categories, Regions: nil}},
		{"zero criteria", Criteria{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, Filter(table, tt.criteria).Len())
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	table := scenarioTable()
	c := Criteria{Years: NewSet(2021, 2022), Categories: NewSet("A"), Regions: NewSet("East")}

	once := Filter(table, c)
	twice := Filter(once, c)
	assert.Equal(t, once, twice)
}

func TestFilterEmptyTable(t *testing.T) {
	filtered := Filter(model.Table{}, Criteria{Years: NewSet(2021), Categories: NewSet("A"), Regions: NewSet("East")})
	assert.Equal(t, 0, filtered.Len())
}

func TestOptions(t *testing.T) {
	table := model.NewTable([]model.Record{
		sale(2022, "Technology", "West", 1),
		sale(2020, "Furniture", "East", 1),
		sale(2021, "Technology", "Central", 1),
		sale(2020, "Office Supplies", "West", 1),
	})

	opts := Options(table)
	assert.Equal(t, []int{2020, 2021, 2022}, opts.Years)
	assert.Equal(t, []string{"Technology", "Furniture", "Office Supplies"}, opts.Categories)
	assert.Equal(t, []string{"West", "East", "Central"}, opts.Regions)

	assert.Equal(t, table, Filter(table, opts.Criteria()))
}

func TestCriteriaFor(t *testing.T) {
	table := scenarioTable()

	assert.Equal(t, 3, Filter(table, CriteriaFor(table, nil)).Len())
	assert.Equal(t, 2, Filter(table, CriteriaFor(table, &model.Filter{Years: []int{2021}})).Len())
	assert.Equal(t, 2, Filter(table, CriteriaFor(table, &model.Filter{Categories: []string{"A"}})).Len())
	assert.Equal(t, 0, Filter(table, CriteriaFor(table, &model.Filter{Regions: []string{}})).Len())
}

func TestWhere(t *testing.T) {
	table := scenarioTable()

	east, err := Where(table, "region", NewSet("East"))
	require.NoError(t, err)
	assert.Equal(t, 2, east.Len())

	y2022, err := Where(table, "Year", NewSet("2022"))
	require.NoError(t, err)
	assert.Equal(t, 1, y2022.Len())

	byDate, err := Where(table, "Order Date", NewSet("2021-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 2, byDate.Len())

	_, err = Where(table, "Warehouse", NewSet("X"))
	var colErr *UnknownColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "Warehouse", colErr.Column)
}
