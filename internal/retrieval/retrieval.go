// Package retrieval looks up statute/reference clauses for a contract
// category. The vector store is an external collaborator; the pipeline only
// sees Searcher.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Searcher returns up to k reference passages relevant to query within the
// given category's library. An empty result is valid (unknown category).
type Searcher interface {
	Search(ctx context.Context, category, query string, k int) ([]string, error)
}

// NopSearcher returns no passages. Used when no retrieval sidecar is
// configured; the risk-review stage then runs without statute context,
// mirroring the missing-category-library fallback.
type NopSearcher struct{}

// Search returns nil, nil.
func (NopSearcher) Search(ctx context.Context, category, query string, k int) ([]string, error) {
	return nil, nil
}

// HTTPSearcher queries a retrieval sidecar (POST {base}/search).
type HTTPSearcher struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPSearcher returns a Searcher for the given sidecar base URL.
func NewHTTPSearcher(baseURL string) *HTTPSearcher {
	return &HTTPSearcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	Category string `json:"category"`
	Query    string `json:"query"`
	K        int    `json:"k"`
}

type searchResponse struct {
	Documents []string `json:"documents"`
}

// Search posts the query and returns the sidecar's passages. A 404 means the
// category has no library and yields an empty result, not an error.
func (s *HTTPSearcher) Search(ctx context.Context, category, query string, k int) ([]string, error) {
	raw, err := json.Marshal(searchRequest{Category: category, Query: query, K: k})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/search", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("retrieval: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("retrieval: decode response: %w", err)
	}
	return parsed.Documents, nil
}
