package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mauv0809/expansion-radar/internal/models"
)

// Source loads dashboard data. Client is the HTTP implementation.
type Source interface {
	Companies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error)
	News(ctx context.Context, ticker string) ([]models.NewsItem, error)
	Filters(ctx context.Context) (models.FilterOptions, error)
}

// Client issues GET requests against the dashboard API and decodes JSON.
// It does not retry or cache; cancellation comes from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Companies fetches the company list for f.
func (c *Client) Companies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error) {
	var companies []models.Company
	if err := c.getJSON(ctx, CompaniesURL(f), &companies); err != nil {
		return nil, fmt.Errorf("loading companies: %w", err)
	}
	return companies, nil
}

// News fetches the news list for ticker.
func (c *Client) News(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	var items []models.NewsItem
	if err := c.getJSON(ctx, NewsURL(ticker), &items); err != nil {
		return nil, fmt.Errorf("loading news for %s: %w", ticker, err)
	}
	return items, nil
}

// Filters fetches the sector and rank choices.
func (c *Client) Filters(ctx context.Context) (models.FilterOptions, error) {
	var opts models.FilterOptions
	if err := c.getJSON(ctx, filtersPath, &opts); err != nil {
		return opts, fmt.Errorf("loading filters: %w", err)
	}
	return opts, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
