package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jywlabs/analyst/internal/record"
)

// SerpAPIBaseURL is the Google search endpoint of SerpAPI.
const SerpAPIBaseURL = "https://serpapi.com/search.json"

// SerpAPI searches Google through serpapi.com.
type SerpAPI struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewSerpAPI creates a SerpAPI searcher.
func NewSerpAPI(apiKey string) *SerpAPI {
	return &SerpAPI{
		APIKey:  apiKey,
		BaseURL: SerpAPIBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider name.
func (s *SerpAPI) Name() string {
	return "SerpAPI Google Search"
}

type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

// Search queries SerpAPI and maps organic results to hits.
func (s *SerpAPI) Search(ctx context.Context, query string, maxResults int) ([]record.SearchHit, error) {
	if s.APIKey == "" {
		return nil, errors.New("SERP_API_KEY not set")
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("api_key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("serpapi error %d: %s", res.StatusCode, string(b))
	}

	var sr serpResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", sr.Error)
	}

	hits := make([]record.SearchHit, 0, len(sr.OrganicResults))
	for _, item := range sr.OrganicResults {
		if len(hits) >= maxResults {
			break
		}
		hits = append(hits, record.SearchHit{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}
	return hits, nil
}
