package internal

import "slices"

// Aggregate is the date-indexed working set of fetched objects. Date buckets keep their
// insertion order and an object id appears under at most one date.
// An Aggregate is owned by a single controller; consumers receive clones.
type Aggregate struct {
	dates  []string
	byDate map[string][]NearEarthObject
	idDate map[string]string // object id -> date bucket holding it
}

// MergeStats reports what happened during a merge.
type MergeStats struct {
	Added      int      // objects added to the aggregate
	NewDates   int      // date buckets that did not exist before
	Duplicates []string // ids that were already present and got discarded
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{
		dates:  nil,
		byDate: make(map[string][]NearEarthObject),
		idDate: make(map[string]string),
	}
}

// Add appends objects to the bucket of the given date, creating it if needed.
// Objects whose id is already present anywhere in the aggregate are skipped and reported.
func (agg *Aggregate) Add(date string, neos []NearEarthObject) MergeStats {
	var stats MergeStats

	if _, exists := agg.byDate[date]; !exists {
		agg.dates = append(agg.dates, date)
		agg.byDate[date] = make([]NearEarthObject, 0, len(neos))
		stats.NewDates++
	}

	for _, neo := range neos {
		if _, seen := agg.idDate[neo.ID]; seen {
			stats.Duplicates = append(stats.Duplicates, neo.ID)
			continue
		}
		agg.idDate[neo.ID] = date
		agg.byDate[date] = append(agg.byDate[date], neo)
		stats.Added++
	}

	return stats
}

// Merge adds every bucket of other, in other's date order, into agg.
func (agg *Aggregate) Merge(other *Aggregate) MergeStats {
	var total MergeStats
	if other == nil {
		return total
	}

	for _, date := range other.dates {
		stats := agg.Add(date, other.byDate[date])
		total.Added += stats.Added
		total.NewDates += stats.NewDates
		total.Duplicates = append(total.Duplicates, stats.Duplicates...)
	}

	return total
}

// Dates returns the date keys in insertion order.
func (agg *Aggregate) Dates() []string {
	return slices.Clone(agg.dates)
}

// Objects returns the objects stored under date.
func (agg *Aggregate) Objects(date string) []NearEarthObject {
	return slices.Clone(agg.byDate[date])
}

// Lookup finds an object by id.
func (agg *Aggregate) Lookup(id string) (NearEarthObject, bool) {
	date, ok := agg.idDate[id]
	if !ok {
		return NearEarthObject{}, false
	}

	for _, neo := range agg.byDate[date] {
		if neo.ID == id {
			return neo, true
		}
	}

	return NearEarthObject{}, false
}

// Len returns the number of objects across all dates.
func (agg *Aggregate) Len() int {
	return len(agg.idDate)
}

// Clone returns a copy that shares no mutable state with agg.
// Objects themselves are never mutated after ingestion, so a shallow copy per bucket suffices.
func (agg *Aggregate) Clone() *Aggregate {
	clone := NewAggregate()
	clone.dates = slices.Clone(agg.dates)
	for date, neos := range agg.byDate {
		clone.byDate[date] = slices.Clone(neos)
	}
	for id, date := range agg.idDate {
		clone.idDate[id] = date
	}

	return clone
}

// FilterNeos flattens all date buckets in insertion order and, if hazardousOnly is set,
// keeps only potentially hazardous objects.
func FilterNeos(agg *Aggregate, hazardousOnly bool) []NearEarthObject {
	if agg == nil {
		return []NearEarthObject{}
	}

	allNeos := make([]NearEarthObject, 0, agg.Len())
	for _, date := range agg.dates {
		for _, neo := range agg.byDate[date] {
			if hazardousOnly && !neo.IsHazardous {
				continue
			}
			allNeos = append(allNeos, neo)
		}
	}

	return allNeos
}

// QueryOptions selects how the aggregate is presented.
type QueryOptions struct {
	HazardousOnly bool
	SortBy        SortKey
}

// Query filters and sorts the aggregate. It is evaluated on every render.
func Query(agg *Aggregate, opts QueryOptions) []NearEarthObject {
	return SortNeos(FilterNeos(agg, opts.HazardousOnly), opts.SortBy)
}

// CountHazardous returns how many of neos are potentially hazardous.
func CountHazardous(neos []NearEarthObject) int {
	count := 0
	for i := range neos {
		if neos[i].IsHazardous {
			count++
		}
	}

	return count
}
