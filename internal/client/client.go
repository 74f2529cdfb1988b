// Package client calls the tool server's /call endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the /call endpoint of a locally running server.
const DefaultURL = "http://localhost:4200/call"

// Invoker posts tool calls to a server.
type Invoker struct {
	URL  string
	HTTP *http.Client
}

// New returns an Invoker. An empty url selects DefaultURL; a nil httpClient
// gets a default with a 15s timeout.
func New(url string, httpClient *http.Client) *Invoker {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Invoker{URL: url, HTTP: httpClient}
}

type payload struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// GetWeather asks the server for the weather in city.
func (c *Invoker) GetWeather(ctx context.Context, city string) (map[string]any, error) {
	return c.Call(ctx, "get_weather", map[string]any{"city": city})
}

// Call posts one tool call. A 2xx response yields the decoded body; any other
// status yields {"error": <raw body>}.
func (c *Invoker) Call(ctx context.Context, tool string, params map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload{Tool: tool, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return map[string]any{"error": string(raw)}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
