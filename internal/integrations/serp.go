package integrations

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"brandwatch/internal/models"
)

const (
	serpService = "serpapi"

	// MaxResultsChecked is how deep a position lookup scans.
	MaxResultsChecked = 100
)

// SearchResult is one organic search result.
type SearchResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Position is the outcome of looking up a brand for a keyword.
type Position struct {
	Keyword      string `json:"keyword"`
	Brand        string `json:"brand"`
	Position     *int   `json:"position"`
	Found        bool   `json:"found"`
	Date         string `json:"date"`
	TotalChecked int    `json:"total_results_checked"`
}

type serpResponse struct {
	OrganicResults []SearchResult `json:"organic_results"`
}

// SerpClient queries the SerpAPI Google engine.
type SerpClient struct {
	http    *resty.Client
	apiKey  string
	retrier *Retrier
}

// NewSerpClient creates a client against baseURL (e.g. https://serpapi.com).
func NewSerpClient(baseURL, apiKey string, retrier *Retrier) *SerpClient {
	return &SerpClient{
		http:    resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		apiKey:  apiKey,
		retrier: retrier,
	}
}

// Configured reports whether an API key is set.
func (c *SerpClient) Configured() bool {
	return c.apiKey != ""
}

// Search returns up to num organic results for query in rank order.
func (c *SerpClient) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("serpapi: %w", ErrNotConfigured)
	}

	resp, err := c.retrier.Send(ctx, serpService, DefaultTimeout, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"api_key": c.apiKey,
				"engine":  "google",
				"q":       query,
				"num":     strconv.Itoa(num),
				"hl":      "en",
				"gl":      "us",
			}).
			SetResult(&serpResponse{}).
			Get("/search")
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	data, ok := resp.Result().(*serpResponse)
	if !ok {
		return nil, fmt.Errorf("search %q: %w: unexpected response body", query, ErrUpstream)
	}

	results := data.OrganicResults
	if len(results) > num {
		results = results[:num]
	}
	return results, nil
}

// FindPosition searches keyword and returns where brand first appears.
func (c *SerpClient) FindPosition(ctx context.Context, brand, keyword string) (*Position, error) {
	results, err := c.Search(ctx, keyword, MaxResultsChecked)
	if err != nil {
		return nil, err
	}

	p := &Position{
		Keyword:      keyword,
		Brand:        brand,
		Date:         models.Today(),
		TotalChecked: len(results),
	}
	if idx := LocateBrand(results, brand); idx > 0 {
		p.Position = &idx
		p.Found = true
	}
	return p, nil
}

// LocateBrand returns the 1-based index of the first result whose title,
// link or snippet contains brand (case-insensitive), or 0 if none does.
func LocateBrand(results []SearchResult, brand string) int {
	needle := strings.ToLower(brand)
	if needle == "" {
		return 0
	}
	for i, r := range results {
		if strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.Link), needle) ||
			strings.Contains(strings.ToLower(r.Snippet), needle) {
			return i + 1
		}
	}
	return 0
}

// Usage returns the SerpAPI account document (plan, searches left, ...).
func (c *SerpClient) Usage(ctx context.Context) (map[string]any, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("serpapi: %w", ErrNotConfigured)
	}

	var account map[string]any
	_, err := c.retrier.Send(ctx, serpService, UsageTimeout, func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("api_key", c.apiKey).
			SetResult(&account).
			Get("/account")
	})
	if err != nil {
		return nil, fmt.Errorf("account usage: %w", err)
	}
	return account, nil
}
