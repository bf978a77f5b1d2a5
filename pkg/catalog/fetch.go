package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// fetchTimeout bounds one remote index download.
	fetchTimeout = 10 * time.Second

	// maxIndexSize caps how much of a remote index is read.
	maxIndexSize = 4 << 20
)

// Fetcher downloads package indexes. Implemented by HTTPFetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]Package, error)
}

// HTTPFetcher fetches a repository's JSON index over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: fetchTimeout}}
}

// remoteIndex is the wire shape of a repository index.
type remoteIndex struct {
	Packages []Package `json:"packages"`
}

// Fetch downloads and decodes the index at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]Package, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch index: unexpected status %d", resp.StatusCode)
	}

	var index remoteIndex
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxIndexSize)).Decode(&index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return index.Packages, nil
}
