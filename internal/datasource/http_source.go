package datasource

import (
	"context"
	"fmt"
	"net/http"
)

// HTTPSource downloads a CSV export of the draw history
type HTTPSource struct {
	url    string
	client *RateLimitedHTTPClient
}

// NewHTTPSource creates a source reading url through client
func NewHTTPSource(url string, client *RateLimitedHTTPClient) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

// Name returns the source name
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// Load fetches and parses the remote table
func (s *HTTPSource) Load(ctx context.Context) (*Batch, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}
	return ParseCSV(resp.Body, s.url)
}
