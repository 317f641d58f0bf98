package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAggregate() *Aggregate {
	agg := NewAggregate()
	agg.Add("2024-01-01", []NearEarthObject{
		newTestNeo(neoFixture{id: "a", name: "A", hazardous: true, date: "2024-01-01"}),
		newTestNeo(neoFixture{id: "b", name: "B", date: "2024-01-01"}),
	})
	agg.Add("2024-01-02", []NearEarthObject{
		newTestNeo(neoFixture{id: "c", name: "C", hazardous: true, date: "2024-01-02"}),
	})

	return agg
}

func TestFilterNeos(t *testing.T) {
	tests := []struct {
		name          string
		agg           *Aggregate
		hazardousOnly bool
		expected      []string
	}{
		{name: "nil aggregate", agg: nil, expected: []string{}},
		{name: "empty aggregate", agg: NewAggregate(), hazardousOnly: true, expected: []string{}},
		{name: "all objects in date order", agg: sampleAggregate(), expected: []string{"a", "b", "c"}},
		{name: "hazardous only", agg: sampleAggregate(), hazardousOnly: true, expected: []string{"a", "c"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := FilterNeos(test.agg, test.hazardousOnly)
			assert.Equal(t, test.expected, ids(got))
		})
	}
}

func TestFilterNeosIsSubset(t *testing.T) {
	agg := sampleAggregate()
	all := FilterNeos(agg, false)
	hazardous := FilterNeos(agg, true)

	assert.Len(t, all, agg.Len())
	assert.Subset(t, ids(all), ids(hazardous))
	for _, neo := range hazardous {
		assert.True(t, neo.IsHazardous, neo.ID)
	}
}

func TestAggregateAddSkipsDuplicates(t *testing.T) {
	agg := sampleAggregate()

	stats := agg.Add("2024-01-03", []NearEarthObject{
		newTestNeo(neoFixture{id: "a", date: "2024-01-03"}),
		newTestNeo(neoFixture{id: "d", date: "2024-01-03"}),
	})

	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.NewDates)
	assert.Equal(t, []string{"a"}, stats.Duplicates)
	assert.Equal(t, 4, agg.Len())
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(FilterNeos(agg, false)))

	first, ok := agg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", first.CloseApproaches[0].Date, "first occurrence wins")
}

func TestAggregateMerge(t *testing.T) {
	agg := sampleAggregate()

	more := NewAggregate()
	more.Add("2024-01-02", []NearEarthObject{newTestNeo(neoFixture{id: "e", date: "2024-01-02"})})
	more.Add("2024-01-03", []NearEarthObject{newTestNeo(neoFixture{id: "f", date: "2024-01-03"})})

	stats := agg.Merge(more)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 1, stats.NewDates)
	assert.Empty(t, stats.Duplicates)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, agg.Dates())
	assert.Equal(t, []string{"c", "e"}, ids(agg.Objects("2024-01-02")))

	assert.Equal(t, MergeStats{}, agg.Merge(nil))
}

func TestAggregateClone(t *testing.T) {
	agg := sampleAggregate()
	clone := agg.Clone()

	agg.Add("2024-01-05", []NearEarthObject{newTestNeo(neoFixture{id: "z", date: "2024-01-05"})})

	assert.Equal(t, 3, clone.Len())
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, clone.Dates())
	_, ok := clone.Lookup("z")
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	agg := NewAggregate()
	agg.Add("2024-01-01", []NearEarthObject{
		newTestNeo(neoFixture{id: "a", name: "A", hazardous: true, date: "2024-01-01", distKm: 300}),
		newTestNeo(neoFixture{id: "b", name: "B", date: "2024-01-01", distKm: 100}),
		newTestNeo(neoFixture{id: "c", name: "C", hazardous: true, date: "2024-01-01", distKm: 200}),
	})

	got := Query(agg, QueryOptions{HazardousOnly: true, SortBy: SortByDistance})
	assert.Equal(t, []string{"c", "a"}, ids(got))
	assert.Equal(t, 2, CountHazardous(FilterNeos(agg, false)))
}
