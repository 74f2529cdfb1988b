package weather

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const fixture = `{
  "current_condition": [
    {"temp_C": "18", "FeelsLikeC": "17", "weatherDesc": [{"value": "Partly cloudy"}]}
  ],
  "nearest_area": [{"areaName": [{"value": "Paris"}]}]
}`

func TestResolveQuery(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
		want string
	}{
		{"location", map[string]any{"location": "Paris"}, "Paris"},
		{"location wins over coords", map[string]any{"location": "Paris", "lat": 1.0, "lon": 2.0}, "Paris"},
		{"coords", map[string]any{"lat": 12.9, "lon": 77.6}, "12.9,77.6"},
		{"integer coords", map[string]any{"lat": float64(48), "lon": float64(2)}, "48,2"},
		{"string coords", map[string]any{"lat": "12.9", "lon": "77.6"}, "12.9,77.6"},
		{"empty location falls through", map[string]any{"location": "", "lat": 1.5, "lon": 2.5}, "1.5,2.5"},
		{"numeric location", map[string]any{"location": float64(560001)}, "560001"},
		{"numeric location wins over coords", map[string]any{"location": float64(560001), "lat": 1.0, "lon": 2.0}, "560001"},
		{"false location falls through", map[string]any{"location": false}, AutoQuery},
		{"zero location falls through", map[string]any{"location": float64(0), "lat": 1.5, "lon": 2.5}, "1.5,2.5"},
		{"lat only", map[string]any{"lat": 12.9}, AutoQuery},
		{"null lon", map[string]any{"lat": 12.9, "lon": nil}, AutoQuery},
		{"empty", map[string]any{}, AutoQuery},
		{"nil", nil, AutoQuery},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveQuery(tc.args); got != tc.want {
				t.Fatalf("ResolveQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLookupExtractsCurrentCondition(t *testing.T) {
	var gotPath, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	res, err := New(srv.URL, srv.Client()).Lookup(context.Background(), "New York")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if gotPath != "/New%20York" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotFormat != "j1" {
		t.Fatalf("format = %q", gotFormat)
	}
	if res.Location != "New York" || res.TempC != "18" || res.FeelsLikeC != "17" || res.Desc != "Partly cloudy" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLookupMissingFieldsAreNil(t *testing.T) {
	for name, body := range map[string]string{
		"no list":     `{}`,
		"empty list":  `{"current_condition": []}`,
		"partial":     `{"current_condition": [{"temp_C": "3"}]}`,
		"empty descs": `{"current_condition": [{"weatherDesc": []}]}`,
		"null temp":   `{"current_condition": [{"temp_C": null}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			res, err := New(srv.URL, nil).Lookup(context.Background(), "auto")
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if res.FeelsLikeC != nil || res.Desc != nil {
				t.Fatalf("expected nil fields, got %+v", res)
			}
			if name == "partial" && res.TempC != "3" {
				t.Fatalf("TempC = %v", res.TempC)
			}
			if name != "partial" && res.TempC != nil {
				t.Fatalf("TempC = %v, want nil", res.TempC)
			}
		})
	}
}

func TestLookupStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Lookup(context.Background(), "Paris")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
	if !errors.Is(err, ErrUpstream) {
		t.Fatal("StatusError should match ErrUpstream")
	}
}

func TestLookupTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := c.Lookup(context.Background(), "Paris")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestLookupRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pad":"`))
		_, _ = w.Write(bytes.Repeat([]byte("x"), maxResponseBytes))
		_, _ = w.Write([]byte(`"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Lookup(context.Background(), "Paris")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream for oversized body, got %v", err)
	}
}

func TestLookupInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, nil).Lookup(context.Background(), "Paris"); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestNewDefaults(t *testing.T) {
	c := New("", nil)
	if c.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
	if c.HTTP.Timeout != DefaultTimeout {
		t.Fatalf("Timeout = %v", c.HTTP.Timeout)
	}
	if got := New("http://x/", nil).buildURL("12.9,77.6"); got != "http://x/12.9,77.6?format=j1" {
		t.Fatalf("buildURL = %q", got)
	}
}
