package internal

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the asteroid list.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByName     SortKey = "name"
	SortByDistance SortKey = "distance"
	SortByVelocity SortKey = "velocity"
	SortByDiameter SortKey = "diameter"
)

// SortKeys lists all keys in the order they are cycled through in the UI.
var SortKeys = []SortKey{ //nolint: gochecknoglobals // read-only lookup
	SortByDate,
	SortByName,
	SortByDistance,
	SortByVelocity,
	SortByDiameter,
}

// ParseSortKey maps user input onto a sort key. Unknown input falls back to date ordering.
func ParseSortKey(value string) SortKey {
	key := SortKey(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(SortKeys, key) {
		return key
	}

	return SortByDate
}

// Next returns the key following k in SortKeys, wrapping around.
func (k SortKey) Next() SortKey {
	idx := slices.Index(SortKeys, k)
	return SortKeys[(idx+1)%len(SortKeys)]
}

// SortNeos returns a stably sorted copy of neos. Ties keep their original relative order.
// Unrecognised keys sort by date.
//
// Numeric keys compare with plain < and >, so a NaN (malformed feed value) is neither less nor
// greater than anything and its resulting position is unspecified.
func SortNeos(neos []NearEarthObject, key SortKey) []NearEarthObject {
	sorted := slices.Clone(neos)

	switch key {
	case SortByName:
		collator := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b NearEarthObject) int {
			return collator.CompareString(a.Name, b.Name)
		})
	case SortByDistance:
		sortStableByFloat(sorted, func(neo *NearEarthObject) float64 { return neo.MissDistanceKm() })
	case SortByVelocity:
		sortStableByFloat(sorted, func(neo *NearEarthObject) float64 { return neo.VelocityKmh() })
	case SortByDiameter:
		sortStableByFloat(sorted, func(neo *NearEarthObject) float64 { return neo.Diameter.MeanKm() })
	case SortByDate:
		fallthrough
	default:
		sortStableByFloat(sorted, func(neo *NearEarthObject) float64 { return neo.ApproachDate() })
	}

	return sorted
}

func sortStableByFloat(neos []NearEarthObject, value func(neo *NearEarthObject) float64) {
	slices.SortStableFunc(neos, func(a, b NearEarthObject) int {
		return compareFloat(value(&a), value(&b))
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
