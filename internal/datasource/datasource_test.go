package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourusername/triplet-forecast/internal/config"
	"github.com/yourusername/triplet-forecast/internal/models"
)

const sampleCSV = `date,value
2024-01-01,123
2024-01-02,7
2024-01-03,XXX
2024-01-04,
2024/01/05,042
`

// TestParseCSVValid tests header detection, padding and placeholders
func TestParseCSVValid(t *testing.T) {
	batch, err := ParseCSV(strings.NewReader(sampleCSV), "sample")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(batch.Observations) != 3 {
		t.Fatalf("Expected 3 observations, got %d", len(batch.Observations))
	}
	if batch.Skipped != 2 {
		t.Errorf("Expected 2 skipped rows, got %d", batch.Skipped)
	}

	want := []string{"123", "007", "042"}
	for i, obs := range batch.Observations {
		if obs.Value.String() != want[i] {
			t.Errorf("row %d: expected %s, got %s", i, want[i], obs.Value)
		}
	}
	if got := batch.Observations[2].Date.Format("2006-01-02"); got != "2024-01-05" {
		t.Errorf("Expected slash date to parse, got %s", got)
	}
}

// TestParseCSVHeaderVariants tests flexible column names
func TestParseCSVHeaderVariants(t *testing.T) {
	input := "Draw Date,Winning Number,notes\n2024-02-29,999,leap\n"

	batch, err := ParseCSV(strings.NewReader(input), "variants")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(batch.Observations) != 1 || batch.Observations[0].Value.String() != "999" {
		t.Fatalf("Unexpected observations: %+v", batch.Observations)
	}
}

// TestParseCSVInvalidRows tests that bad rows report their row number
func TestParseCSVInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		body string
		row  int
	}{
		{"Letters", "date,value\n2024-01-01,123\n2024-01-02,12a\n", 3},
		{"Four digits", "date,value\n2024-01-01,1234\n", 2},
		{"Bad date", "date,value\n2024-01-01,123\n2024-01-02,456\nyesterday,789\n", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.body), "bad.csv")
			if !errors.Is(err, models.ErrInvalidObservation) {
				t.Fatalf("Expected ErrInvalidObservation, got: %v", err)
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("Expected RowError, got: %T", err)
			}
			if rowErr.Row != tt.row {
				t.Errorf("Expected row %d, got %d", tt.row, rowErr.Row)
			}
			if !strings.Contains(err.Error(), "bad.csv") {
				t.Errorf("Expected source name in error, got: %v", err)
			}
		})
	}
}

// TestParseCSVStructuralErrors tests missing columns and empty input
func TestParseCSVStructuralErrors(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader(""), "empty"); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Expected ErrEmptySource, got: %v", err)
	}
	if _, err := ParseCSV(strings.NewReader("date,value\n"), "header-only"); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Expected ErrEmptySource for header only, got: %v", err)
	}
	if _, err := ParseCSV(strings.NewReader("day,value\n1,123\n"), "nodate"); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got: %v", err)
	}
	if _, err := ParseCSV(strings.NewReader("date,comment\n2024-01-01,hi\n"), "novalue"); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn, got: %v", err)
	}
}

// TestCSVSourceLoad tests file loading
func TestCSVSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	src := NewCSVSource(path)
	batch, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(batch.Observations) != 3 {
		t.Errorf("Expected 3 observations, got %d", len(batch.Observations))
	}
	if !strings.Contains(src.Name(), "draws.csv") {
		t.Errorf("Unexpected name %q", src.Name())
	}

	if _, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func fastClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      5 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 2,
	}
}

// TestHTTPSourceRetriesServerErrors tests the retry policy
func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(fastClientConfig(), nil)
	defer client.Close()

	batch, err := NewHTTPSource(server.URL, client).Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(batch.Observations) != 3 {
		t.Errorf("Expected 3 observations, got %d", len(batch.Observations))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

// TestHTTPSourceClientError tests that 4xx responses are not retried
func TestHTTPSourceClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(fastClientConfig(), nil)
	_, err := NewHTTPSource(server.URL, client).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Expected status error, got: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected a single call, got %d", calls)
	}
}

// TestCircuitBreakerOpens tests that repeated network failures trip the breaker
func TestCircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := fastClientConfig()
	cfg.MaxRetries = 0
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < cfg.CircuitBreakerMax; i++ {
		if _, err := client.Get(context.Background(), url); err == nil {
			t.Fatalf("Expected connection error on attempt %d", i)
		}
	}

	_, err := client.Get(context.Background(), url)
	if err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("Expected open circuit breaker, got: %v", err)
	}
}

type fakeObservationRepo struct {
	observations []models.Observation
	err          error
}

func (f *fakeObservationRepo) InsertBatch(ctx context.Context, obs []models.Observation) (int, error) {
	f.observations = append(f.observations, obs...)
	return len(obs), nil
}

func (f *fakeObservationRepo) GetAll(ctx context.Context) ([]models.Observation, error) {
	return f.observations, f.err
}

func (f *fakeObservationRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.Observation, error) {
	return f.observations, f.err
}

func (f *fakeObservationRepo) Count(ctx context.Context) (int, error) {
	return len(f.observations), f.err
}

func (f *fakeObservationRepo) GetLatest(ctx context.Context) (*models.Observation, error) {
	if len(f.observations) == 0 {
		return nil, models.ErrNotFound
	}
	return &f.observations[len(f.observations)-1], nil
}

// TestPostgresSourceLoad tests repository-backed loading
func TestPostgresSourceLoad(t *testing.T) {
	obs, err := models.NewObservation(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "321")
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	repo := &fakeObservationRepo{observations: []models.Observation{obs}}

	batch, err := NewPostgresSource(repo).Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(batch.Observations) != 1 {
		t.Errorf("Expected 1 observation, got %d", len(batch.Observations))
	}

	repo.err = errors.New("connection reset")
	if _, err := NewPostgresSource(repo).Load(context.Background()); err == nil {
		t.Error("Expected repository error to surface")
	}
}

// TestFactoryCreate tests source selection
func TestFactoryCreate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DataConfig
		repo    bool
		wantErr bool
	}{
		{"CSV", config.DataConfig{Source: "csv", CSVPath: "draws.csv"}, false, false},
		{"CSV without path", config.DataConfig{Source: "csv"}, false, true},
		{"HTTP", config.DataConfig{Source: "http", URL: "https://example.com/draws.csv"}, false, false},
		{"HTTP without url", config.DataConfig{Source: "http"}, false, true},
		{"Postgres", config.DataConfig{Source: "postgres"}, true, false},
		{"Postgres without repository", config.DataConfig{Source: "postgres"}, false, true},
		{"Unknown", config.DataConfig{Source: "ftp"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			factory := NewFactory(&cfg, nil)
			var src Source
			var err error
			if tt.repo {
				src, err = factory.Create(&fakeObservationRepo{})
			} else {
				src, err = factory.Create(nil)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil && src.Name() == "" {
				t.Error("Expected a named source")
			}
		})
	}
}
