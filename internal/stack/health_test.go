package stack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sullivan/internal/config"
)

func TestHTTPCheckHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	check := checkFor(config.Service{Name: "jellyfin", HealthURL: srv.URL}, time.Second, nil)
	result := check.Probe(context.Background())
	if !result.Healthy {
		t.Fatalf("expected healthy, got %+v", result)
	}
}

func TestHTTPCheckServerErrorIsUnhealthyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	check := checkFor(config.Service{Name: "sonarr", HealthURL: srv.URL}, time.Second, nil)
	result := check.Probe(context.Background())
	if result.Healthy {
		t.Fatal("5xx must be unhealthy")
	}
	if result.Detail == "" {
		t.Fatal("detail must carry the status")
	}
}

func TestHTTPCheckUnreachableIsResultNotPanic(t *testing.T) {
	check := checkFor(config.Service{Name: "sonarr", HealthURL: "http://127.0.0.1:1/ping"}, 200*time.Millisecond, nil)
	result := check.Probe(context.Background())
	if result.Healthy {
		t.Fatal("unreachable endpoint must be unhealthy")
	}
}
