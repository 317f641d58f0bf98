package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultFeedURL is the NeoWs feed endpoint.
	DefaultFeedURL = "https://api.nasa.gov/neo/rest/v1/feed"
	// DemoAPIKey is accepted by api.nasa.gov with a low hourly quota.
	DemoAPIKey = "DEMO_KEY"
	// maxBodyBytes caps how much of a response body we are willing to read.
	maxBodyBytes = 20 << 20
)

// RequestOptions configures the feed client.
type RequestOptions struct {
	FeedURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit rate.Limit // requests per second
	RateBurst int
}

// FeedClient wraps calls to the NeoWs feed endpoint. It performs no caching.
type FeedClient struct {
	opts       RequestOptions
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewFeedClient creates a FeedClient, filling in defaults for empty options.
func NewFeedClient(opts RequestOptions, logger *slog.Logger) *FeedClient {
	if opts.FeedURL == "" {
		opts.FeedURL = DefaultFeedURL
	}
	if opts.APIKey == "" {
		opts.APIKey = DemoAPIKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second //nolint: mnd // sane default
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Inf
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		logger:     logger,
	}
}

// Fetch requests all objects with a close approach between start and end, both inclusive.
func (fc *FeedClient) Fetch(ctx context.Context, start, end time.Time) (*Aggregate, error) {
	startStr, endStr := FormatDate(start), FormatDate(end)
	if start.After(end) {
		return nil, fmt.Errorf("fetch %s..%s: %w", startStr, endStr, ErrInvalidWindow)
	}

	wrap := func(err error) error {
		return &FetchError{Start: startStr, End: endStr, Cause: err}
	}

	if err := fc.limiter.Wait(ctx); err != nil {
		return nil, wrap(fmt.Errorf("rate limiter: %w", err))
	}

	query := url.Values{}
	query.Set("start_date", startStr)
	query.Set("end_date", endStr)
	query.Set("api_key", fc.opts.APIKey)
	targetURL := fc.opts.FeedURL + "?" + query.Encode()

	fc.logger.Debug("requesting feed", "start", startStr, "end", endStr)

	body, err := fc.sendRequest(ctx, targetURL)
	if err != nil {
		return nil, wrap(err)
	}

	agg, err := parseFeed(body)
	if err != nil {
		return nil, wrap(err)
	}

	fc.logger.Info("feed loaded", "start", startStr, "end", endStr, "objects", agg.Len())

	return agg, nil
}

// sendRequest sends an HTTP GET request and returns a valid byte slice of the response body.
func (fc *FeedClient) sendRequest(ctx context.Context, targetURL string) ([]byte, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("sendRequest: invalid request error: %w", reqErr)
	}
	req.Header.Set("Accept", "application/json")

	resp, respErr := fc.httpClient.Do(req)
	if respErr != nil {
		return nil, fmt.Errorf("sendRequest: failed to send GET request: %w", respErr)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			fc.logger.Warn("sendRequest: error while closing response body", slog.Any("error", closeErr))
		}
	}()

	body, bodyErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if bodyErr != nil {
		return nil, fmt.Errorf("sendRequest: failed to read response body: %w", bodyErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := apiErrorMessage(body); msg != "" {
			return nil, fmt.Errorf("sendRequest: %w %s: %s", ErrNonOkResponse, resp.Status, msg)
		}
		return nil, fmt.Errorf("sendRequest: %w %s", ErrNonOkResponse, resp.Status)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("sendRequest: %w", ErrEmptyResponseBody)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil, fmt.Errorf("sendRequest: %w, %s", ErrNonJSONContent, contentType)
	}

	return body, nil
}

// apiErrorMessage extracts the human readable message from a NeoWs or api.nasa.gov error body.
func apiErrorMessage(body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return ""
	}

	if apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	return apiErr.ErrorMessage
}
