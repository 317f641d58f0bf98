package internal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortNeos(t *testing.T) {
	tests := []struct {
		name     string
		input    []NearEarthObject
		key      SortKey
		expected []string
	}{
		{
			name:     "empty input",
			input:    nil,
			key:      SortByName,
			expected: []string{},
		},
		{
			name: "distance ascending",
			input: []NearEarthObject{
				newTestNeo(neoFixture{id: "A", distKm: 500}),
				newTestNeo(neoFixture{id: "B", distKm: 200}),
			},
			key:      SortByDistance,
			expected: []string{"B", "A"},
		},
		{
			name: "velocity ascending",
			input: []NearEarthObject{
				newTestNeo(neoFixture{id: "fast", velKmh: 90000}),
				newTestNeo(neoFixture{id: "slow", velKmh: 1000}),
				newTestNeo(neoFixture{id: "mid", velKmh: 40000}),
			},
			key:      SortByVelocity,
			expected: []string{"slow", "mid", "fast"},
		},
		{
			name: "diameter by mean",
			input: []NearEarthObject{
				newTestNeo(neoFixture{id: "big", diaMinKm: 1, diaMaxKm: 3}),
				newTestNeo(neoFixture{id: "small", diaMinKm: 0.1, diaMaxKm: 0.5}),
			},
			key:      SortByDiameter,
			expected: []string{"small", "big"},
		},
		{
			name: "date ascending",
			input: []NearEarthObject{
				newTestNeo(neoFixture{id: "late", date: "2024-01-05"}),
				newTestNeo(neoFixture{id: "early", date: "2024-01-01"}),
				newTestNeo(neoFixture{id: "mid", date: "2024-01-03"}),
			},
			key:      SortByDate,
			expected: []string{"early", "mid", "late"},
		},
		{
			name: "name ignores case",
			input: []NearEarthObject{
				newTestNeo(neoFixture{id: "3", name: "gamma"}),
				newTestNeo(neoFixture{id: "2", name: "Beta"}),
				newTestNeo(neoFixture{id: "1", name: "alpha"}),
			},
			key:      SortByName,
			expected: []string{"1", "2", "3"},
		},
		{
			name: "unknown key sorts by date",
			input: []NearEarthObject{
				newTestNeo(neoFixture{id: "late", date: "2024-01-05"}),
				newTestNeo(neoFixture{id: "early", date: "2024-01-01"}),
			},
			key:      SortKey("magnitude"),
			expected: []string{"early", "late"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := SortNeos(test.input, test.key)
			assert.Equal(t, test.expected, ids(got))
		})
	}
}

func TestSortNeosIsStable(t *testing.T) {
	input := []NearEarthObject{
		newTestNeo(neoFixture{id: "1", name: "Same", distKm: 10}),
		newTestNeo(neoFixture{id: "2", name: "Other", distKm: 10}),
		newTestNeo(neoFixture{id: "3", name: "Same", distKm: 5}),
		newTestNeo(neoFixture{id: "4", name: "Same", distKm: 10}),
	}

	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(SortNeos(input, SortByDistance)))

	byName := SortNeos(input, SortByName)
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(byName))
	assert.Equal(t, ids(byName), ids(SortNeos(byName, SortByName)), "sorting twice changes nothing")
}

func TestSortNeosDoesNotMutateInput(t *testing.T) {
	input := []NearEarthObject{
		newTestNeo(neoFixture{id: "A", distKm: 500}),
		newTestNeo(neoFixture{id: "B", distKm: 200}),
	}

	_ = SortNeos(input, SortByDistance)
	assert.Equal(t, []string{"A", "B"}, ids(input))
}

func TestSortNeosKeepsNaN(t *testing.T) {
	input := []NearEarthObject{
		newTestNeo(neoFixture{id: "A", velKmh: 3}),
		newTestNeo(neoFixture{id: "B", velKmh: math.NaN()}),
		newTestNeo(neoFixture{id: "C", velKmh: 1}),
	}

	got := SortNeos(input, SortByVelocity)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, ids(got))
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input    string
		expected SortKey
	}{
		{input: "date", expected: SortByDate},
		{input: "Name", expected: SortByName},
		{input: " distance ", expected: SortByDistance},
		{input: "velocity", expected: SortByVelocity},
		{input: "DIAMETER", expected: SortByDiameter},
		{input: "", expected: SortByDate},
		{input: "brightness", expected: SortByDate},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			assert.Equal(t, test.expected, ParseSortKey(test.input))
		})
	}
}

func TestSortKeyNext(t *testing.T) {
	key := SortByDate
	seen := make([]SortKey, 0, len(SortKeys))
	for range SortKeys {
		seen = append(seen, key)
		key = key.Next()
	}

	assert.Equal(t, SortKeys, seen)
	assert.Equal(t, SortByDate, key, "cycling wraps around")
}
