package internal

import (
	"errors"
	"fmt"
)

var (
	ErrNonOkResponse     = errors.New("non-OK response")
	ErrEmptyResponseBody = errors.New("empty response body")
	ErrNonJSONContent    = errors.New("non-JSON content type")
	ErrMissingFeed       = errors.New("payload has no near_earth_objects")
	ErrInvalidWindow     = errors.New("start date is after end date")
	ErrLoadInProgress    = errors.New("a load is already in progress")
	ErrNoSelection       = errors.New("no asteroids selected")
	ErrNeoNotFound       = errors.New("asteroid not found")
	ErrNotLoaded         = errors.New("no date window has been loaded yet")
	ErrStaleResult       = errors.New("result belongs to a discarded session")
)

// FetchError is returned by the feed client for any network, HTTP or payload failure.
// Callers must not assume partial results.
type FetchError struct {
	Start string
	End   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s..%s: %v", e.Start, e.End, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DeserializationError is returned when a persisted selection blob can't be read back.
type DeserializationError struct {
	Cause error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("malformed selection: %v", e.Cause)
}

func (e *DeserializationError) Unwrap() error {
	return e.Cause
}

// ValidationError is returned when a comparison is requested with too few selected items.
type ValidationError struct {
	Selected int
	Required int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please select at least %d asteroids to compare (have %d)", e.Required, e.Selected)
}
