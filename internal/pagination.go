package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// DefaultWindowDays is how far the initial window reaches beyond its start date.
	DefaultWindowDays = 7
	// DefaultIncrementDays is how many days each LoadMore adds to the window.
	DefaultIncrementDays = 7

	day = 24 * time.Hour
)

// Fetcher is the data source the paginator pulls date windows from.
type Fetcher interface {
	Fetch(ctx context.Context, start, end time.Time) (*Aggregate, error)
}

// DateWindow is a range of calendar days. Both Start and End are included, which is how the
// feed interprets start_date and end_date.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow returns the window starting at start and ending days later.
func NewDateWindow(start time.Time, days int) DateWindow {
	start = start.UTC().Truncate(day)
	return DateWindow{Start: start, End: start.AddDate(0, 0, days)}
}

// Next returns the window that directly follows w and spans increment days.
// It begins the day after w.End, so no day is fetched twice and none is skipped.
func (w DateWindow) Next(increment int) DateWindow {
	return DateWindow{
		Start: w.End.AddDate(0, 0, 1),
		End:   w.End.AddDate(0, 0, increment),
	}
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s to %s", FormatDate(w.Start), FormatDate(w.End))
}

// PaginatorState is either Idle or Loading.
type PaginatorState int

const (
	Idle PaginatorState = iota
	Loading
)

func (s PaginatorState) String() string {
	if s == Loading {
		return "loading"
	}

	return "idle"
}

// LoadResult describes a completed load.
type LoadResult struct {
	Fetched DateWindow // the window that was requested from the data source
	Window  DateWindow // the full window covered by the aggregate afterwards
	Stats   MergeStats
}

// Paginator owns the aggregate and its date window. At most one fetch is in flight at a time;
// a load requested while another one is running fails with ErrLoadInProgress.
type Paginator struct {
	fetcher   Fetcher
	increment int
	inFlight  *semaphore.Weighted
	logger    *slog.Logger

	mu         sync.Mutex
	state      PaginatorState
	loaded     bool
	window     DateWindow
	agg        *Aggregate
	generation uint64
}

// NewPaginator creates a paginator that extends its window by increment days per LoadMore.
func NewPaginator(fetcher Fetcher, increment int, logger *slog.Logger) *Paginator {
	if increment < 1 {
		increment = DefaultIncrementDays
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Paginator{
		fetcher:   fetcher,
		increment: increment,
		inFlight:  semaphore.NewWeighted(1),
		logger:    logger,
		state:     Idle,
		agg:       NewAggregate(),
	}
}

// LoadInitial fetches window and replaces the aggregate with the result.
func (p *Paginator) LoadInitial(ctx context.Context, window DateWindow) (LoadResult, error) {
	return p.load(ctx, func() (DateWindow, error) { return window, nil }, true)
}

// LoadMore fetches the window following the current one and merges it into the aggregate.
// On failure the aggregate and window stay as they were.
func (p *Paginator) LoadMore(ctx context.Context) (LoadResult, error) {
	return p.load(ctx, func() (DateWindow, error) {
		if !p.loaded {
			return DateWindow{}, ErrNotLoaded
		}
		return p.window.Next(p.increment), nil
	}, false)
}

func (p *Paginator) load(
	ctx context.Context,
	nextWindow func() (DateWindow, error),
	replace bool,
) (LoadResult, error) {
	if !p.inFlight.TryAcquire(1) {
		return LoadResult{}, ErrLoadInProgress
	}
	defer p.inFlight.Release(1)

	p.mu.Lock()
	fetchWindow, err := nextWindow()
	if err != nil {
		p.mu.Unlock()
		return LoadResult{}, err
	}
	generation := p.generation
	p.state = Loading
	p.mu.Unlock()

	fetched, fetchErr := p.fetcher.Fetch(ctx, fetchWindow.Start, fetchWindow.End)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Idle

	if generation != p.generation {
		p.logger.Debug("discarding stale result", "window", fetchWindow.String())
		return LoadResult{}, ErrStaleResult
	}

	if fetchErr != nil {
		p.logger.Error("load failed", "window", fetchWindow.String(), slog.Any("error", fetchErr))
		return LoadResult{}, fetchErr
	}

	var stats MergeStats
	if replace {
		p.agg = NewAggregate()
		stats = p.agg.Merge(fetched)
		p.window = fetchWindow
		p.loaded = true
	} else {
		stats = p.agg.Merge(fetched)
		p.window.End = fetchWindow.End
	}

	if len(stats.Duplicates) > 0 {
		p.logger.Warn("discarded objects already present under another date",
			"window", fetchWindow.String(),
			"ids", stats.Duplicates)
	}

	return LoadResult{Fetched: fetchWindow, Window: p.window, Stats: stats}, nil
}

// Reset drops the aggregate and window. Loads still in flight will be discarded.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.agg = NewAggregate()
	p.window = DateWindow{}
	p.loaded = false
}

// State reports whether a fetch is in flight.
func (p *Paginator) State() PaginatorState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Window returns the full date window covered by the aggregate.
func (p *Paginator) Window() DateWindow {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.window
}

// Loaded reports whether an initial window has been loaded successfully.
func (p *Paginator) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.loaded
}

// Snapshot returns a read-only copy of the aggregate.
func (p *Paginator) Snapshot() *Aggregate {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.agg.Clone()
}
