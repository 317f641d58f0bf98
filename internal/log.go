package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LogParams contains the parameters for logging console output and errors.
// These will vary depending on whether neospottr runs in ticker or tui mode.
// # Ticker mode
// - console output goes to stdout
// - logs go to stderr
// # TUI mode
// - console output is discarded, the TUI owns the terminal
// - logs go to the log file configured in `log_file`
// .
type LogParams struct {
	ConsoleOut io.Writer
	ErrorOut   io.Writer
	closer     io.Closer
}

// TickerLogParams writes console output to stdout and logs to stderr.
func TickerLogParams() LogParams {
	return LogParams{ConsoleOut: os.Stdout, ErrorOut: os.Stderr, closer: nil}
}

// TUILogParams discards console output and appends logs to path.
func TUILogParams(path string) (LogParams, error) {
	if path == "" {
		return LogParams{ConsoleOut: io.Discard, ErrorOut: io.Discard, closer: nil}, nil
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return LogParams{}, fmt.Errorf("tuiLogParams: %w", err)
	}

	return LogParams{ConsoleOut: io.Discard, ErrorOut: logFile, closer: logFile}, nil
}

// Logger returns a text logger writing to ErrorOut.
func (lp LogParams) Logger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(lp.ErrorOut, &slog.HandlerOptions{Level: level}))
}

// Close releases the log file, if any.
func (lp LogParams) Close() error {
	if lp.closer == nil {
		return nil
	}

	return lp.closer.Close()
}
