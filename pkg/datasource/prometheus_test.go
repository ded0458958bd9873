package datasource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// promStub serves a fixed query_range response for every metric query.
func promStub(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query_range" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestFetchWindowKeepsSeriesDespiteWarnings(t *testing.T) {
	windowStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ts := windowStart.Unix()

	srv := promStub(t, fmt.Sprintf(`{
		"status": "success",
		"warnings": ["results may be incomplete"],
		"data": {
			"resultType": "matrix",
			"result": [{"metric": {}, "values": [[%d, "42"]]}]
		}
	}`, ts))
	defer srv.Close()

	source, err := NewPrometheusSource(Config{
		PrometheusURL: srv.URL,
		ProjectID:     "p",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewPrometheusSource failed: %v", err)
	}

	samples, err := source.FetchWindow(context.Background(), "svc-a", windowStart, windowStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("FetchWindow failed: %v", err)
	}

	// one sample per metric type; warnings must not drop the series
	if len(samples) != len(metricQueries) {
		t.Fatalf("Expected %d samples, got %d", len(metricQueries), len(samples))
	}
	for _, s := range samples {
		if s.Value != 42 {
			t.Errorf("Expected value 42, got %v", s.Value)
		}
		if !s.Timestamp.Equal(windowStart) {
			t.Errorf("Expected timestamp %s, got %s", windowStart, s.Timestamp)
		}
	}
}
