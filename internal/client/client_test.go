package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetWeatherPostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"location":"auto"}}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, nil).GetWeather(context.Background(), "Kolkata")
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if got["tool"] != "get_weather" {
		t.Fatalf("tool = %v", got["tool"])
	}
	params, _ := got["params"].(map[string]any)
	if params["city"] != "Kolkata" {
		t.Fatalf("params = %v", got["params"])
	}
	if resp["ok"] != true {
		t.Fatalf("response = %v", resp)
	}
}

func TestCallNonSuccessReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Missing 'tool' in request body"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, nil).Call(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if resp["error"] != `{"detail":"Missing 'tool' in request body"}` {
		t.Fatalf("error = %v", resp["error"])
	}
}

func TestCallTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(url, nil).Call(context.Background(), "ping", nil); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNewDefaults(t *testing.T) {
	if c := New("", nil); c.URL != DefaultURL || c.HTTP == nil {
		t.Fatalf("unexpected defaults %+v", c)
	}
}
