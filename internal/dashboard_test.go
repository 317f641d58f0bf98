package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// todayCatalogue places objects on the days following today, matching what the dashboard
// requests on its initial load.
func todayCatalogue() map[string][]NearEarthObject {
	day := func(offset int) string { return FormatDate(Today().AddDate(0, 0, offset)) }

	return map[string][]NearEarthObject{
		day(0): {
			newTestNeo(neoFixture{id: "near", name: "Near", hazardous: true, date: day(0), distKm: 100, velKmh: 500, diaMinKm: 0.1, diaMaxKm: 0.1}),
			newTestNeo(neoFixture{id: "far", name: "Far", date: day(0), distKm: 9000, velKmh: 100, diaMinKm: 2, diaMaxKm: 4}),
		},
		day(1): {
			newTestNeo(neoFixture{id: "quick", name: "Quick", hazardous: true, date: day(1), distKm: 400, velKmh: 80000, diaMinKm: 0.5, diaMaxKm: 0.7}),
		},
		day(3): {
			newTestNeo(neoFixture{id: "later", name: "Later", date: day(3), distKm: 700, velKmh: 1200, diaMinKm: 0.2, diaMaxKm: 0.2}),
		},
	}
}

func newTestDashboard(t *testing.T) (*Dashboard, *fakeFetcher, *memStore) {
	t.Helper()

	fetcher := newFakeFetcher(todayCatalogue())
	store := newMemStore()
	dash := NewDashboard(fetcher, store, DashboardOptions{WindowDays: 1, IncrementDays: 2}, testLogger)

	_, err := dash.LoadInitial(context.Background())
	require.NoError(t, err)

	return dash, fetcher, store
}

func TestDashboardListPresentation(t *testing.T) {
	dash, _, _ := newTestDashboard(t)

	assert.True(t, dash.Loaded())
	assert.False(t, dash.Loading())
	assert.Equal(t, []string{"near", "far", "quick"}, ids(dash.Visible()))

	assert.True(t, dash.ToggleHazardousOnly())
	assert.Equal(t, []string{"near", "quick"}, ids(dash.Visible()))

	assert.Equal(t, SortByName, dash.CycleSort())
	assert.Equal(t, []string{"near", "quick"}, ids(dash.Visible()))

	dash.SetSort(SortByVelocity)
	assert.Equal(t, []string{"near", "quick"}, ids(dash.Visible()))

	assert.False(t, dash.ToggleHazardousOnly())
	dash.SetSort(SortByDistance)
	assert.Equal(t, []string{"near", "quick", "far"}, ids(dash.Visible()))

	dash.SetSort("magnitude")
	assert.Equal(t, SortByDate, dash.QueryOptions().SortBy)
}

func TestDashboardLoadMore(t *testing.T) {
	dash, fetcher, _ := newTestDashboard(t)

	res, err := dash.LoadMore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Added)
	assert.Contains(t, ids(dash.Visible()), "later")

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, FormatDate(Today().AddDate(0, 0, 2)), calls[1].start)
	assert.Equal(t, FormatDate(Today().AddDate(0, 0, 3)), calls[1].end)
}

func TestDashboardCompare(t *testing.T) {
	dash, _, store := newTestDashboard(t)

	selected, err := dash.ToggleByID("near")
	require.NoError(t, err)
	assert.True(t, selected)

	var valErr *ValidationError
	require.ErrorAs(t, dash.Compare(), &valErr)
	assert.Equal(t, 1, valErr.Selected)

	_, err = dash.ToggleByID("quick")
	require.NoError(t, err)
	require.NoError(t, dash.Compare())

	summary, err := LoadComparison(store)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "quick"}, ids(summary.Neos))

	selected, err = dash.ToggleByID("near")
	require.NoError(t, err)
	assert.False(t, selected, "toggling again deselects")

	_, err = dash.ToggleByID("unknown")
	assert.ErrorIs(t, err, ErrNeoNotFound)
}

func TestDashboardSelectByID(t *testing.T) {
	dash, _, _ := newTestDashboard(t)

	require.NoError(t, dash.SelectByID("near"))
	require.NoError(t, dash.SelectByID("near"))
	require.NoError(t, dash.SelectByID("quick"))
	assert.Equal(t, []string{"near", "quick"}, dash.Selection().IDs())
	assert.True(t, dash.Selection().CanCompare())

	assert.ErrorIs(t, dash.SelectByID("unknown"), ErrNeoNotFound)
	assert.Equal(t, 2, dash.Selection().Len())
}

func TestDashboardMalformedSelection(t *testing.T) {
	dash, _, store := newTestDashboard(t)
	require.NoError(t, store.Put(SelectionKey, []byte(`[{"id": "near"`)))

	_, err := LoadComparison(store)
	var desErr *DeserializationError
	require.ErrorAs(t, err, &desErr)

	require.NoError(t, dash.ClearSelection())
	assert.Zero(t, dash.Selection().Len())
	_, err = LoadComparison(store)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestDashboardOpenDetail(t *testing.T) {
	dash, _, store := newTestDashboard(t)

	neo, err := dash.OpenDetail("far")
	require.NoError(t, err)
	assert.Equal(t, "Far", neo.Name)

	_, err = store.Get(DetailKey("far"))
	require.NoError(t, err, "the detail payload is stored under its own key")

	_, err = dash.OpenDetail("missing")
	assert.ErrorIs(t, err, ErrNeoNotFound)
}

func TestDashboardReset(t *testing.T) {
	dash, _, store := newTestDashboard(t)
	dash.Toggle(dash.Visible()[0], true)
	dash.Toggle(dash.Visible()[1], true)
	require.NoError(t, dash.Compare())

	dash.Reset()

	assert.False(t, dash.Loaded())
	assert.Empty(t, dash.Visible())
	assert.Zero(t, dash.Selection().Len())
	_, err := store.Get(SelectionKey)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = dash.LoadMore(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestDashboardStats(t *testing.T) {
	dash, _, _ := newTestDashboard(t)
	dash.Toggle(dash.Visible()[0], true)

	stats := dash.Stats(dash.Visible())
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Hazardous)
	assert.Equal(t, 1, stats.Selected)
	require.NotNil(t, stats.Closest)
	require.NotNil(t, stats.Fastest)
	require.NotNil(t, stats.Largest)
	assert.Equal(t, "near", stats.Closest.ID)
	assert.Equal(t, "quick", stats.Fastest.ID)
	assert.Equal(t, "far", stats.Largest.ID)

	empty := dash.Stats(nil)
	assert.Nil(t, empty.Closest)
	assert.Zero(t, empty.Total)
}
