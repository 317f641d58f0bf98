package internal

import (
	"context"
	"sync"
	"time"
)

type neoFixture struct {
	id        string
	name      string
	hazardous bool
	date      string
	distKm    float64
	velKmh    float64
	diaMinKm  float64
	diaMaxKm  float64
}

func newTestNeo(fx neoFixture) NearEarthObject {
	return NearEarthObject{
		ID:          fx.id,
		Name:        fx.name,
		IsHazardous: fx.hazardous,
		Diameter:    DiameterRange{MinKm: fx.diaMinKm, MaxKm: fx.diaMaxKm},
		CloseApproaches: []CloseApproach{{
			Date:           fx.date,
			DateFull:       fx.date + " 12:00",
			VelocityKmh:    fx.velKmh,
			MissDistanceKm: fx.distKm,
			OrbitingBody:   "Earth",
		}},
		DetailURL: "https://ssd.jpl.nasa.gov/tools/sbdb_lookup.html#/?sstr=" + fx.id,
	}
}

func ids(neos []NearEarthObject) []string {
	out := make([]string, 0, len(neos))
	for i := range neos {
		out = append(out, neos[i].ID)
	}

	return out
}

func mustDate(value string) time.Time {
	date, err := ParseDate(value)
	if err != nil {
		panic(err)
	}

	return date
}

type fetchCall struct {
	start string
	end   string
}

// fakeFetcher serves one aggregate per requested date from a fixed catalogue.
type fakeFetcher struct {
	mu      sync.Mutex
	byDate  map[string][]NearEarthObject
	calls   []fetchCall
	err     error
	release chan struct{} // when set, Fetch blocks until it is closed
	started chan struct{} // when set, receives a value once Fetch has begun
}

func newFakeFetcher(byDate map[string][]NearEarthObject) *fakeFetcher {
	return &fakeFetcher{byDate: byDate}
}

func (ff *fakeFetcher) Fetch(ctx context.Context, start, end time.Time) (*Aggregate, error) {
	ff.mu.Lock()
	ff.calls = append(ff.calls, fetchCall{start: FormatDate(start), end: FormatDate(end)})
	release, started, err := ff.release, ff.started, ff.err
	ff.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, &FetchError{Start: FormatDate(start), End: FormatDate(end), Cause: err}
	}

	agg := NewAggregate()
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := FormatDate(d)
		if neos, ok := ff.byDate[date]; ok {
			agg.Add(date, neos)
		}
	}

	return agg, nil
}

func (ff *fakeFetcher) Calls() []fetchCall {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	return append([]fetchCall(nil), ff.calls...)
}

// memStore is a map-backed Store for tests that don't need badger.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (ms *memStore) Put(key string, value []byte) error {
	ms.data[key] = append([]byte(nil), value...)
	return nil
}

func (ms *memStore) Get(key string) ([]byte, error) {
	value, ok := ms.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	return value, nil
}

func (ms *memStore) Delete(key string) error {
	delete(ms.data, key)
	return nil
}
