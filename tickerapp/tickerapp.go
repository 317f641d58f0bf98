// Package tickerapp launches the ticker application which writes the asteroid list and an
// optional comparison to stdout, so it can be piped into other programs and processed further.
// This is in contrast to the TUI app, which is interactive.
package tickerapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/micutio/neospottr/internal"
)

// Params are the collaborators and options of a ticker run.
type Params struct {
	Dashboard  *internal.Dashboard
	Store      internal.Store
	Notify     *internal.Notify
	Logger     *slog.Logger
	Pages      int      // additional windows to load after the initial one
	CompareIDs []string // asteroids to compare, at least two for a comparison
}

func Run(ctx context.Context, appName string, params Params) error {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notify := params.Notify
	dash := params.Dashboard

	res, err := dash.LoadInitial(ctx)
	if err != nil {
		notify.Toast(appName, internal.LoadFailedMessage(err, true))
		return fmt.Errorf("tickerapp: %w", err)
	}
	notify.Toast(appName, internal.LoadedMessage(res, true))

	for page := 0; page < params.Pages; page++ {
		res, err = dash.LoadMore(ctx)
		if err != nil {
			logger.Error("loading more failed", slog.Int("page", page+1), slog.Any("error", err))
			notify.Toast(appName, internal.LoadFailedMessage(err, false))
			break
		}
		notify.Toast(appName, internal.LoadedMessage(res, false))
	}

	notify.PrintList(dash.Visible(), dash.Stats(nil).Window)

	if len(params.CompareIDs) == 0 {
		return nil
	}

	return compare(appName, params, logger)
}

func compare(appName string, params Params, logger *slog.Logger) error {
	dash := params.Dashboard
	dash.Selection().Subscribe(func(ev internal.SelectionEvent) {
		params.Notify.Toast(appName, internal.SelectionMessage(ev))
	})

	for _, id := range params.CompareIDs {
		if err := dash.SelectByID(id); err != nil {
			logger.Warn("cannot select asteroid", slog.String("id", id), slog.Any("error", err))
		}
	}

	if err := dash.Compare(); err != nil {
		var valErr *internal.ValidationError
		if errors.As(err, &valErr) {
			params.Notify.Toast(appName, valErr.Error())
		}
		return fmt.Errorf("tickerapp: %w", err)
	}

	summary, err := internal.LoadComparison(params.Store)
	if err != nil {
		return fmt.Errorf("tickerapp: %w", err)
	}

	params.Notify.PrintComparison(summary)
	return nil
}
