package tuiapp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/micutio/neospottr/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// stubFetcher places a fixed set of asteroids on the first day of every requested window.
type stubFetcher struct {
	neos []internal.NearEarthObject
	err  error
}

func (sf *stubFetcher) Fetch(_ context.Context, start, _ time.Time) (*internal.Aggregate, error) {
	if sf.err != nil {
		return nil, sf.err
	}

	agg := internal.NewAggregate()
	agg.Add(internal.FormatDate(start), sf.neos)
	return agg, nil
}

// gatedFetcher reports every Fetch on started and holds it until release is closed.
type gatedFetcher struct {
	stubFetcher
	started chan struct{}
	release chan struct{}
}

func (gf *gatedFetcher) Fetch(ctx context.Context, start, end time.Time) (*internal.Aggregate, error) {
	gf.started <- struct{}{}
	<-gf.release
	return gf.stubFetcher.Fetch(ctx, start, end)
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (ms *mapStore) Put(key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data[key] = value
	return nil
}

func (ms *mapStore) Get(key string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	value, ok := ms.data[key]
	if !ok {
		return nil, internal.ErrNotFound
	}
	return value, nil
}

func (ms *mapStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.data, key)
	return nil
}

func testNeo(id, name string, hazardous bool, distKm, velKmh float64) internal.NearEarthObject {
	return internal.NearEarthObject{
		ID:          id,
		Name:        name,
		IsHazardous: hazardous,
		Diameter:    internal.DiameterRange{MinKm: 0.1, MaxKm: 0.2},
		CloseApproaches: []internal.CloseApproach{{
			Date:           internal.FormatDate(internal.Today()),
			DateFull:       internal.FormatDate(internal.Today()) + " 12:00",
			VelocityKmh:    velKmh,
			MissDistanceKm: distKm,
			OrbitingBody:   "Earth",
		}},
	}
}

func newTestModel(t *testing.T, fetcher internal.Fetcher) (*model, *mapStore) {
	t.Helper()

	store := &mapStore{data: make(map[string][]byte)}
	params := Params{
		Dashboard: internal.NewDashboard(fetcher, store, internal.DashboardOptions{WindowDays: 1, IncrementDays: 1}, quietLogger),
		Store:     store,
		Auth:      internal.NewLocalSession("tester"),
		Notify:    nil,
		Logger:    quietLogger,
	}

	m := newModel(context.Background(), "neospottr", params, table.DefaultStyles(), true)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	return m, store
}

// run executes cmd and feeds its message back into the model, like the bubbletea runtime would.
func run(m *model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func press(m *model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}

	_, cmd := m.Update(msg)
	return cmd
}

func loadedModel(t *testing.T) (*model, *mapStore) {
	t.Helper()

	fetcher := &stubFetcher{neos: []internal.NearEarthObject{
		testNeo("1", "Alpha", true, 500, 1000),
		testNeo("2", "Bravo", false, 100, 3000),
		testNeo("3", "Charlie", true, 900, 2000),
	}}
	m, store := newTestModel(t, fetcher)
	require.Equal(t, mainPage, m.page, "a local session starts signed in")

	run(m, m.startLoad(true))
	require.Len(t, m.visible, 3)

	return m, store
}

func TestModelInitialLoad(t *testing.T) {
	m, _ := loadedModel(t)

	assert.Zero(t, m.pendingLoads)
	assert.Contains(t, m.status, "Loaded 3 asteroids")
	assert.False(t, m.statusIsErr)
	assert.Len(t, m.asteroidTbl.table.Rows(), 3)
	assert.Contains(t, m.View(), "Alpha")
}

func TestModelFilterAndSort(t *testing.T) {
	m, _ := loadedModel(t)

	press(m, "h")
	assert.Len(t, m.visible, 2)
	assert.Equal(t, "Showing potentially hazardous asteroids only", m.status)

	press(m, "h")
	press(m, "s") // name
	press(m, "s") // distance
	assert.Equal(t, internal.SortByDistance, m.dashboard.QueryOptions().SortBy)
	assert.Equal(t, "Bravo", m.visible[0].Name)
}

func TestModelSelectAndCompare(t *testing.T) {
	m, store := loadedModel(t)

	press(m, " ")
	assert.True(t, m.dashboard.Selection().Contains("1"))
	assert.Contains(t, m.status, `"Alpha" added to comparison list`)
	assert.Equal(t, "[x]", m.asteroidTbl.table.Rows()[0][0])

	press(m, "c")
	assert.Equal(t, mainPage, m.page)
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.status, "at least 2")

	press(m, "down")
	press(m, " ")
	press(m, "c")
	require.Equal(t, comparePage, m.page)
	require.NotNil(t, m.comparison)
	assert.Len(t, m.comparison.Neos, 2)
	assert.Contains(t, m.View(), "Asteroid Comparison")

	_, err := store.Get(internal.SelectionKey)
	require.NoError(t, err, "the selection is handed over through the store")

	press(m, "esc")
	assert.Equal(t, mainPage, m.page)

	press(m, "x")
	assert.Zero(t, m.dashboard.Selection().Len())
	_, err = store.Get(internal.SelectionKey)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestModelDetails(t *testing.T) {
	m, store := loadedModel(t)

	press(m, "enter")
	require.Equal(t, detailsPage, m.page)
	require.NotNil(t, m.detailNeo)
	assert.Equal(t, "1", m.detailNeo.ID)

	_, err := store.Get(internal.DetailKey("1"))
	require.NoError(t, err)

	press(m, "esc")
	assert.Equal(t, mainPage, m.page)
}

func TestModelLoadFailureAndRetry(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	m, _ := newTestModel(t, fetcher)

	run(m, m.startLoad(true))
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.status, "check your NASA API key")
	assert.NotNil(t, m.lastFailed)
	assert.Contains(t, m.View(), "Press r to retry")

	fetcher.err = nil
	fetcher.neos = []internal.NearEarthObject{testNeo("9", "Zulu", false, 1, 1)}
	run(m, press(m, "r"))
	assert.False(t, m.statusIsErr)
	assert.Nil(t, m.lastFailed)
	assert.Len(t, m.visible, 1)
}

func TestModelSingleLoadInFlight(t *testing.T) {
	m, _ := loadedModel(t)

	first := press(m, "m")
	require.NotNil(t, first)
	second := press(m, "m")
	assert.Nil(t, second, "no second load is dispatched while one is pending")
	assert.Equal(t, "Still loading, please wait.", m.status)

	run(m, first)
	assert.Zero(t, m.pendingLoads)
	assert.Contains(t, m.status, "Successfully loaded")
}

func TestModelSignOutAndIn(t *testing.T) {
	m, _ := loadedModel(t)

	run(m, press(m, "o"))
	m.Update(authChangedMsg{user: nil})
	assert.Equal(t, loginPage, m.page)
	assert.False(t, m.dashboard.Loaded())
	assert.Empty(t, m.visible)
	assert.Contains(t, m.View(), "Sign in")

	for _, r := range "ada@example.org" {
		press(m, string(r))
	}
	press(m, "enter") // to password field
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	run(m, cmd)
	assert.Empty(t, m.login.err)

	user := m.auth.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "ada@example.org", user.Email)

	_, load := m.Update(authChangedMsg{user: user})
	assert.Equal(t, mainPage, m.page)
	run(m, load)
	assert.Len(t, m.visible, 3)
}

func TestModelLoginRequiresEmail(t *testing.T) {
	m, _ := loadedModel(t)
	run(m, press(m, "o"))
	m.Update(authChangedMsg{user: nil})

	press(m, "enter")
	cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, "Please enter an e-mail address.", m.login.err)
}

func TestUIStateString(t *testing.T) {
	names := make([]string, 0, 4)
	for _, state := range []uiState{loginPage, mainPage, detailsPage, comparePage} {
		names = append(names, state.String())
	}

	assert.Equal(t, "login main details compare", strings.Join(names, " "))
}

func TestModelSignInWhileLoadPending(t *testing.T) {
	fetcher := &gatedFetcher{
		stubFetcher: stubFetcher{neos: []internal.NearEarthObject{
			testNeo("1", "Alpha", true, 500, 1000),
			testNeo("2", "Bravo", false, 100, 3000),
			testNeo("3", "Charlie", true, 900, 2000),
		}},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	m, _ := newTestModel(t, fetcher)

	load := m.startLoad(true)
	require.NotNil(t, load)
	results := make(chan tea.Msg, 1)
	go func() { results <- load() }()
	<-fetcher.started

	m.Update(authChangedMsg{user: nil})
	require.Equal(t, loginPage, m.page)

	_, cmd := m.Update(authChangedMsg{user: &internal.Identity{ID: "local", Email: "ada@example.org"}})
	assert.Equal(t, mainPage, m.page)
	assert.Nil(t, cmd, "the initial load waits for the pending one")
	assert.NotEqual(t, "Still loading, please wait.", m.status)

	close(fetcher.release)
	_, resume := m.Update(<-results)
	require.NotNil(t, resume, "the held back initial load starts once nothing is pending")
	assert.False(t, m.dashboard.Loaded(), "the result of the previous session is dropped")

	run(m, resume)
	assert.True(t, m.dashboard.Loaded())
	assert.Zero(t, m.pendingLoads)
	assert.Len(t, m.visible, 3)
	assert.Contains(t, m.status, "Loaded 3 asteroids")
	assert.NotContains(t, m.View(), "No data loaded")
}
