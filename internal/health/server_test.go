package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestServer(cfg Config) *Server {
	l := logrus.New()
	l.SetOutput(io.Discard)
	cfg.Logger = l
	cfg.ServiceName = "triplet-forecast"
	return NewServer(cfg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := newTestServer(Config{Version: "1.2.3", Commit: "abc"})
	h := s.Handler()

	rec := get(t, h, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Version != "1.2.3" || body.Service != "triplet-forecast" {
		t.Fatalf("unexpected body %+v", body)
	}

	if rec := get(t, h, "/live"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /live, got %d", rec.Code)
	}
}

func TestReadyRunsChecks(t *testing.T) {
	jobErr := errors.New("backtest failed")
	var jobState error
	s := newTestServer(Config{
		DB: fakePinger{},
		Checks: map[string]CheckFunc{
			"scheduler": func(context.Context) error { return jobState },
		},
	})
	h := s.Handler()

	if rec := get(t, h, "/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before SetReady, got %d", rec.Code)
	}

	s.SetReady(true)
	rec := get(t, h, "/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body ReadyResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["database"] != "ok" || body.Checks["scheduler"] != "ok" {
		t.Fatalf("unexpected checks %+v", body.Checks)
	}

	jobState = jobErr
	rec = get(t, h, "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after failed job, got %d", rec.Code)
	}
	body = ReadyResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "not_ready" || body.Checks["scheduler"] != "error: backtest failed" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestReadyReportsDatabaseFailure(t *testing.T) {
	s := newTestServer(Config{DB: fakePinger{err: errors.New("connection refused")}})
	s.SetReady(true)
	if rec := get(t, s.Handler(), "/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsMountedAtConfiguredPath(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("triplet_forecast_observations_loaded 42\n"))
	})
	h := newTestServer(Config{Metrics: metrics, MetricsPath: "/prom"}).Handler()

	rec := get(t, h, "/prom")
	if rec.Code != http.StatusOK || rec.Body.String() != "triplet_forecast_observations_loaded 42\n" {
		t.Fatalf("unexpected metrics response %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(t, h, "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on default path, got %d", rec.Code)
	}

	if rec := get(t, newTestServer(Config{}).Handler(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rec.Code)
	}
}
