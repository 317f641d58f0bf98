package internal

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// BarSeries is one bar chart of the comparison view, one value per selected object.
type BarSeries struct {
	Label  string
	Unit   string
	Values []float64
	Max    float64
}

// Comparison summarises a selection of at least two objects.
type Comparison struct {
	Neos              []NearEarthObject // in selection order
	HazardousCount    int
	SafeCount         int
	MeanDiameterKm    float64 // mean over the mean diameters of all objects
	ClosestDistanceKm float64
	FastestKmh        float64
	ByDistance        []NearEarthObject // closest first
	ByVelocity        []NearEarthObject // fastest first
	Distances         BarSeries
	Velocities        BarSeries
	Diameters         BarSeries
}

// NewComparison builds the comparison summary for sel.
func NewComparison(sel *SelectionSet) (*Comparison, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	neos := sel.Items()
	summary := Comparison{
		Neos:              neos,
		ClosestDistanceKm: math.Inf(1),
		FastestKmh:        math.Inf(-1),
		ByDistance:        SortNeos(neos, SortByDistance),
		ByVelocity:        fastestFirst(neos),
		Distances:         BarSeries{Label: "Miss Distance", Unit: "km"},
		Velocities:        BarSeries{Label: "Relative Velocity", Unit: "km/h"},
		Diameters:         BarSeries{Label: "Mean Diameter", Unit: "km"},
	}

	diameterSum := 0.0
	for i := range neos {
		neo := &neos[i]
		if neo.IsHazardous {
			summary.HazardousCount++
		} else {
			summary.SafeCount++
		}

		diameter := neo.Diameter.MeanKm()
		distance := neo.MissDistanceKm()
		velocity := neo.VelocityKmh()
		diameterSum += diameter

		if distance < summary.ClosestDistanceKm {
			summary.ClosestDistanceKm = distance
		}
		if velocity > summary.FastestKmh {
			summary.FastestKmh = velocity
		}

		summary.Distances.add(distance)
		summary.Velocities.add(velocity)
		summary.Diameters.add(diameter)
	}
	summary.MeanDiameterKm = diameterSum / float64(len(neos))

	return &summary, nil
}

func (bs *BarSeries) add(value float64) {
	bs.Values = append(bs.Values, value)
	if !math.IsNaN(value) && value > bs.Max {
		bs.Max = value
	}
}

// Ratio returns the value at idx relative to the series maximum, in [0, 1].
// Non-finite or non-positive values yield 0.
func (bs *BarSeries) Ratio(idx int) float64 {
	if idx < 0 || idx >= len(bs.Values) || bs.Max <= 0 {
		return 0
	}

	ratio := bs.Values[idx] / bs.Max
	if math.IsNaN(ratio) || ratio < 0 {
		return 0
	}

	return math.Min(ratio, 1)
}

// LoadComparison reads the persisted selection and builds its comparison. A missing blob
// returns ErrNoSelection and a malformed one a *DeserializationError; in both cases the
// caller should go back to the base view.
func LoadComparison(store Store) (*Comparison, error) {
	sel, err := LoadSelection(store)
	if err != nil {
		return nil, err
	}

	return NewComparison(sel)
}

// PersistDetail stores neo so the detail view can be opened without the aggregate.
func PersistDetail(store Store, neo *NearEarthObject) error {
	blob, err := (&SelectionSet{neos: []NearEarthObject{*neo}}).Serialize()
	if err != nil {
		return err
	}

	if err := store.Put(DetailKey(neo.ID), blob); err != nil {
		return fmt.Errorf("persist detail: %w", err)
	}

	return nil
}

// LookupDetail finds the object with id in the store: first under its own detail key, then in
// the persisted selection.
func LookupDetail(store Store, id string) (NearEarthObject, error) {
	blob, err := store.Get(DetailKey(id))
	switch {
	case err == nil:
		sel, desErr := DeserializeSelection(blob)
		if desErr != nil {
			return NearEarthObject{}, desErr
		}
		if neos := sel.Items(); len(neos) == 1 && neos[0].ID == id {
			return neos[0], nil
		}
		return NearEarthObject{}, &DeserializationError{Cause: fmt.Errorf("detail blob for %s holds another object", id)}
	case !errors.Is(err, ErrNotFound):
		return NearEarthObject{}, fmt.Errorf("lookup detail: %w", err)
	}

	sel, err := LoadSelection(store)
	if errors.Is(err, ErrNoSelection) {
		return NearEarthObject{}, ErrNeoNotFound
	}
	if err != nil {
		return NearEarthObject{}, err
	}

	for _, neo := range sel.Items() {
		if neo.ID == id {
			return neo, nil
		}
	}

	return NearEarthObject{}, ErrNeoNotFound
}

// fastestFirst orders neos by descending velocity. Equal velocities keep their selection order.
func fastestFirst(neos []NearEarthObject) []NearEarthObject {
	sorted := slices.Clone(neos)
	slices.SortStableFunc(sorted, func(a, b NearEarthObject) int {
		return compareFloat(b.VelocityKmh(), a.VelocityKmh())
	})

	return sorted
}
