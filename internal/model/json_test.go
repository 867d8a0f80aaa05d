package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
		{1.5, "1.5"},
		{0, "0"},
		{-383.031, "-383.031"},
	}
	for _, tt := range tests {
		b, err := json.Marshal(JSONFloat(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(b))
	}
}

func TestEntryMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Entry{Key: "East", Value: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"East","value":null,"count":0}`, string(b))

	b, err = json.Marshal([]Entry{{Key: 2016, Value: 276.58, Count: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":2016,"value":276.58,"count":2}]`, string(b))
}

func TestRecordMarshalJSON(t *testing.T) {
	rec := Record{
		OrderID:     "CA-1",
		OrderDate:   time.Date(2016, 11, 8, 0, 0, 0, 0, time.UTC),
		Region:      "South",
		Category:    "Furniture",
		ProductName: "Bookcase",
		Sales:       261.96,
		Quantity:    2,
		Discount:    math.NaN(),
		Profit:      math.NaN(),
	}
	rec.Year = 2016

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, 261.96, got["sales"])
	assert.Contains(t, got, "profit")
	assert.Nil(t, got["profit"])
	assert.Nil(t, got["discount"])
	assert.Equal(t, "CA-1", got["order_id"])
	assert.Equal(t, float64(2016), got["year"])
	assert.NotContains(t, got, "Sales", "no duplicate untagged field")
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in   string
		want Order
	}{
		{"", OrderByKeyAsc},
		{"key", OrderByKeyAsc},
		{"by_key_asc", OrderByKeyAsc},
		{"value_desc", OrderByValueDesc},
		{"by_value_desc", OrderByValueDesc},
		{"desc", OrderByValueDesc},
		{" Top ", OrderByValueDesc},
		{"value_asc", OrderByValueAsc},
		{"asc", OrderByValueAsc},
		{"WORST", OrderByValueAsc},
		{"bottom", OrderByValueAsc},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseOrder("sideways")
	assert.EqualError(t, err, `unknown order: "sideways"`)
}

func TestOrderText(t *testing.T) {
	for _, o := range []Order{OrderByKeyAsc, OrderByValueDesc, OrderByValueAsc} {
		b, err := o.MarshalText()
		require.NoError(t, err)

		var back Order
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, o, back)
	}

	var q Query
	require.NoError(t, json.Unmarshal([]byte(`{"groupBy":"Region","metric":"Sales","order":"top","limit":3}`), &q))
	assert.Equal(t, OrderByValueDesc, q.Order)
	assert.Equal(t, "sum(Sales) by Region, value_desc 3", q.Title())

	assert.Error(t, json.Unmarshal([]byte(`{"order":"sideways"}`), &q))
}

func TestFilterIsZero(t *testing.T) {
	var nilFilter *Filter
	assert.True(t, nilFilter.IsZero())
	assert.True(t, (&Filter{}).IsZero())
	assert.False(t, (&Filter{Regions: []string{}}).IsZero(), "an empty list still restricts")
}

func TestTableHead(t *testing.T) {
	table := NewTable(make([]Record, 3))
	assert.Equal(t, 2, table.Head(2).Len())
	assert.Equal(t, 3, table.Head(10).Len())
	assert.Equal(t, 3, table.Head(-1).Len())
	assert.Equal(t, 0, table.Head(0).Len())
}
