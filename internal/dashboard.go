// Package internal provides the Dashboard type and all associated program logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// DashboardOptions configures a Dashboard.
type DashboardOptions struct {
	WindowDays    int
	IncrementDays int
	Query         QueryOptions
}

// DashboardStats is the header information of the asteroid list.
type DashboardStats struct {
	Total     int
	Hazardous int
	Selected  int
	Window    DateWindow
	Closest   *NearEarthObject
	Fastest   *NearEarthObject
	Largest   *NearEarthObject
}

// Dashboard is the single controller of a session. It owns the paginated aggregate, the list
// presentation and the selection; front ends read from it and mutate only through its methods.
// Loads may run on another goroutine, everything else belongs to the UI goroutine.
type Dashboard struct {
	paginator  *Paginator
	selection  *SelectionSet
	store      Store
	query      QueryOptions
	windowDays int
	logger     *slog.Logger
}

func NewDashboard(fetcher Fetcher, store Store, opts DashboardOptions, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.WindowDays < 1 {
		opts.WindowDays = DefaultWindowDays
	}

	return &Dashboard{
		paginator:  NewPaginator(fetcher, opts.IncrementDays, logger),
		selection:  NewSelectionSet(),
		store:      store,
		query:      opts.Query,
		windowDays: opts.WindowDays,
		logger:     logger,
	}
}

// LoadInitial loads the window starting today.
func (db *Dashboard) LoadInitial(ctx context.Context) (LoadResult, error) {
	return db.paginator.LoadInitial(ctx, NewDateWindow(Today(), db.windowDays))
}

// LoadMore extends the window by the configured increment.
func (db *Dashboard) LoadMore(ctx context.Context) (LoadResult, error) {
	return db.paginator.LoadMore(ctx)
}

// Loading reports whether a fetch is in flight.
func (db *Dashboard) Loading() bool {
	return db.paginator.State() == Loading
}

// Loaded reports whether the initial window is available.
func (db *Dashboard) Loaded() bool {
	return db.paginator.Loaded()
}

// Visible returns the filtered and sorted list.
func (db *Dashboard) Visible() []NearEarthObject {
	return Query(db.paginator.Snapshot(), db.query)
}

// QueryOptions returns the current list presentation.
func (db *Dashboard) QueryOptions() QueryOptions {
	return db.query
}

// ToggleHazardousOnly flips the hazard filter and returns its new state.
func (db *Dashboard) ToggleHazardousOnly() bool {
	db.query.HazardousOnly = !db.query.HazardousOnly
	return db.query.HazardousOnly
}

// CycleSort switches to the next sort key and returns it.
func (db *Dashboard) CycleSort() SortKey {
	db.query.SortBy = ParseSortKey(string(db.query.SortBy)).Next()
	return db.query.SortBy
}

// SetSort sets the sort key; unknown keys become date ordering.
func (db *Dashboard) SetSort(key SortKey) {
	db.query.SortBy = ParseSortKey(string(key))
}

// Selection gives read access to the selection and lets callers subscribe to it.
func (db *Dashboard) Selection() *SelectionSet {
	return db.selection
}

// Toggle adds or removes neo from the selection.
func (db *Dashboard) Toggle(neo NearEarthObject, included bool) bool {
	return db.selection.Toggle(neo, included)
}

// ToggleByID flips the selection state of the object with id and reports whether it is
// selected afterwards.
func (db *Dashboard) ToggleByID(id string) (bool, error) {
	neo, ok := db.paginator.Snapshot().Lookup(id)
	if !ok {
		return false, fmt.Errorf("toggle %s: %w", id, ErrNeoNotFound)
	}

	db.selection.Toggle(neo, !db.selection.Contains(id))
	return db.selection.Contains(id), nil
}

// SelectByID adds the object with id to the selection. Selecting it again changes nothing.
func (db *Dashboard) SelectByID(id string) error {
	neo, ok := db.paginator.Snapshot().Lookup(id)
	if !ok {
		return fmt.Errorf("select %s: %w", id, ErrNeoNotFound)
	}

	db.selection.Toggle(neo, true)
	return nil
}

// Compare hands the selection over to the comparison view through the store.
// It returns a *ValidationError if fewer than two objects are selected.
func (db *Dashboard) Compare() error {
	if err := db.selection.Persist(db.store); err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	db.logger.Info("comparison prepared", "selected", db.selection.Len())
	return nil
}

// ClearSelection empties the selection and removes the persisted blob.
func (db *Dashboard) ClearSelection() error {
	return db.selection.Clear(db.store)
}

// OpenDetail stores the object with id for the detail view and reads it back from there.
func (db *Dashboard) OpenDetail(id string) (NearEarthObject, error) {
	if neo, ok := db.paginator.Snapshot().Lookup(id); ok {
		if err := PersistDetail(db.store, &neo); err != nil {
			return NearEarthObject{}, err
		}
	}

	return LookupDetail(db.store, id)
}

// Reset drops all session data, e.g. after the user signed out.
func (db *Dashboard) Reset() {
	db.paginator.Reset()
	if err := db.selection.Clear(db.store); err != nil {
		db.logger.Warn("reset: failed to clear selection", slog.Any("error", err))
	}
}

// Stats computes the header of the given visible list.
func (db *Dashboard) Stats(visible []NearEarthObject) DashboardStats {
	stats := DashboardStats{
		Total:     len(visible),
		Hazardous: CountHazardous(visible),
		Selected:  db.selection.Len(),
		Window:    db.paginator.Window(),
	}

	for i := range visible {
		neo := &visible[i]
		stats.Closest = pickBy(stats.Closest, neo, func(n *NearEarthObject) float64 { return -n.MissDistanceKm() })
		stats.Fastest = pickBy(stats.Fastest, neo, func(n *NearEarthObject) float64 { return n.VelocityKmh() })
		stats.Largest = pickBy(stats.Largest, neo, func(n *NearEarthObject) float64 { return n.Diameter.MeanKm() })
	}

	return stats
}

// pickBy returns whichever of current and candidate has the larger value, ignoring NaN.
func pickBy(current, candidate *NearEarthObject, value func(*NearEarthObject) float64) *NearEarthObject {
	candidateValue := value(candidate)
	if math.IsNaN(candidateValue) {
		return current
	}
	if current != nil && value(current) >= candidateValue {
		return current
	}

	return candidate
}
