// Package weather provides a minimal client for the wttr.in JSON weather API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the public weather provider.
	DefaultBaseURL = "https://wttr.in"
	// DefaultTimeout bounds a single lookup, including reading the body.
	DefaultTimeout = 8 * time.Second

	// maxResponseBytes caps the body read from the provider.
	maxResponseBytes = 1 << 20
)

// ErrUpstream marks failures talking to the weather provider: transport
// errors, timeouts and non-2xx statuses.
var ErrUpstream = errors.New("upstream request failed")

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather api status %s for url %s", e.Status, e.URL)
}

// Is reports StatusError as an upstream failure.
func (e *StatusError) Is(target error) bool { return target == ErrUpstream }

// Client is a minimal HTTP client for wttr.in.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a new client. An empty baseURL selects DefaultBaseURL; a nil
// httpClient gets a default with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// Result is the current-conditions summary for a query. Fields missing from
// the provider response stay nil and encode as JSON null.
type Result struct {
	Location   string `json:"location"`
	TempC      any    `json:"temp_C"`
	FeelsLikeC any    `json:"feels_like_C"`
	Desc       any    `json:"desc"`
}

// Lookup fetches current conditions for an already resolved query.
func (c *Client) Lookup(ctx context.Context, query string) (Result, error) {
	reqURL := c.buildURL(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: reqURL}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if len(body) > maxResponseBytes {
		return Result{}, fmt.Errorf("%w: response body exceeds %d bytes", ErrUpstream, maxResponseBytes)
	}
	if !gjson.ValidBytes(body) {
		return Result{}, errors.New("weather api returned invalid json")
	}
	return extract(query, body), nil
}

func (c *Client) buildURL(query string) string {
	// Path escaping keeps "," intact so coordinate queries read "lat,lon".
	p := (&url.URL{Path: "/" + query}).EscapedPath()
	return c.BaseURL + p + "?format=j1"
}

// extract reads the first current_condition entry. An absent or empty list
// yields a result with every field nil.
func extract(query string, body []byte) Result {
	current := gjson.GetBytes(body, "current_condition.0")
	return Result{
		Location:   query,
		TempC:      valueOf(current.Get("temp_C")),
		FeelsLikeC: valueOf(current.Get("FeelsLikeC")),
		Desc:       valueOf(current.Get("weatherDesc.0.value")),
	}
}

func valueOf(r gjson.Result) any {
	if !r.Exists() {
		return nil
	}
	return r.Value()
}
