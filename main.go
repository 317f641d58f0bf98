// Package main provides the near-earth asteroid dashboard application
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/micutio/neospottr/internal"
	"github.com/micutio/neospottr/tickerapp"
	"github.com/micutio/neospottr/tuiapp"
	"github.com/spf13/pflag"
)

const (
	// thisAppName is the name of this application as shown on notifications.
	thisAppName = "neospottr"
)

type cliArgs struct {
	isUseTicker   bool
	configPath    string
	sortBy        string
	hazardousOnly bool
	windowDays    int
	incrementDays int
	pages         int
	compareIDs    []string
	notify        bool
	noAuth        bool
	logLevel      string
}

func main() {
	var args cliArgs

	setupCommandLineFlags(&args)

	// Parse all arguments provided to the program on launch.
	pflag.Parse()

	if err := run(&args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", thisAppName, err)
		os.Exit(1)
	}
}

func run(args *cliArgs) error {
	cfg, err := internal.LoadConfig(args.configPath, pflag.CommandLine.Changed("config"))
	if err != nil {
		return err
	}
	applyFlags(&cfg, args)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logParams := internal.TickerLogParams()
	if !args.isUseTicker {
		if logParams, err = internal.TUILogParams(cfg.LogFile); err != nil {
			return err
		}
	}
	defer func() { _ = logParams.Close() }()

	logger := logParams.Logger(cfg.SlogLevel())
	slog.SetDefault(logger)

	store, err := internal.OpenSessionStore(cfg.Store.TTL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("closing session store failed", slog.Any("error", closeErr))
		}
	}()

	dash := internal.NewDashboard(
		internal.NewFeedClient(cfg.RequestOptions(), logger),
		store,
		internal.DashboardOptions{
			WindowDays:    cfg.Dashboard.WindowDays,
			IncrementDays: cfg.Dashboard.IncrementDays,
			Query:         cfg.QueryOptions(),
		},
		logger,
	)
	notify := internal.NewNotify(thisAppName, logParams.ConsoleOut, cfg.Notify, logger)

	logger.Info("starting",
		"ticker", args.isUseTicker,
		"session", store.SessionID(),
		"window_days", cfg.Dashboard.WindowDays,
		"increment_days", cfg.Dashboard.IncrementDays)

	if args.isUseTicker {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return tickerapp.Run(ctx, thisAppName, tickerapp.Params{
			Dashboard:  dash,
			Store:      store,
			Notify:     notify,
			Logger:     logger,
			Pages:      args.pages,
			CompareIDs: args.compareIDs,
		})
	}

	return tuiapp.Run(thisAppName, tuiapp.Params{
		Dashboard: dash,
		Store:     store,
		Auth:      newAuthenticator(&cfg, args.noAuth, logger),
		Notify:    notify,
		Logger:    logger,
	})
}

// newAuthenticator uses the configured GoTrue service, or a local identity when there is none.
func newAuthenticator(cfg *internal.Config, noAuth bool, logger *slog.Logger) internal.Authenticator {
	if noAuth || !cfg.AuthEnabled() {
		logger.Info("no auth service configured, using a local session")
		return internal.NewLocalSession(os.Getenv("USER"))
	}

	return internal.NewGoTrueAuth(cfg.AuthOptions(), logger)
}

// applyFlags lets explicitly given flags override the file and environment configuration.
func applyFlags(cfg *internal.Config, args *cliArgs) {
	flags := pflag.CommandLine
	if flags.Changed("sort") {
		cfg.Dashboard.SortBy = string(internal.ParseSortKey(args.sortBy))
	}
	if flags.Changed("hazardous") {
		cfg.Dashboard.HazardousOnly = args.hazardousOnly
	}
	if flags.Changed("days") {
		cfg.Dashboard.WindowDays = args.windowDays
	}
	if flags.Changed("increment") {
		cfg.Dashboard.IncrementDays = args.incrementDays
	}
	if flags.Changed("notify") {
		cfg.Notify = args.notify
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = args.logLevel
	}
}

func setupCommandLineFlags(args *cliArgs) {
	// Whether to launch the Ticker or TUI app.
	pflag.BoolVarP(
		&args.isUseTicker,
		"ticker",
		"t",
		false,
		"print the asteroid list on the command line without TUI")
	pflag.Lookup("ticker").NoOptDefVal = "true"

	pflag.StringVarP(
		&args.configPath,
		"config",
		"c",
		internal.DefaultConfigPath(),
		"path of the YAML configuration file")

	pflag.StringVarP(
		&args.sortBy,
		"sort",
		"s",
		string(internal.SortByDate),
		"sort key: date, name, distance, velocity or diameter")

	pflag.BoolVar(&args.hazardousOnly, "hazardous", false, "show potentially hazardous asteroids only")
	pflag.IntVar(&args.windowDays, "days", internal.DefaultWindowDays, "days covered by the initial window (1-7)")
	pflag.IntVar(&args.incrementDays, "increment", internal.DefaultIncrementDays, "days added by each load more (1-7)")

	// Ticker only.
	pflag.IntVar(&args.pages, "pages", 0, "ticker: additional windows to load after the initial one")
	pflag.StringSliceVar(&args.compareIDs, "compare", nil, "ticker: comma separated asteroid ids to compare")

	pflag.BoolVar(&args.notify, "notify", false, "raise desktop notifications for status messages")
	pflag.BoolVar(&args.noAuth, "no-auth", false, "skip sign-in even if an auth service is configured")
	pflag.StringVar(&args.logLevel, "log-level", "info", "log level: debug, info, warn or error")
}
