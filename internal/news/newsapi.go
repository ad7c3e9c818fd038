package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPI queries the newsapi.org /everything endpoint.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

func NewNewsAPI(apiKey string, client *http.Client) *NewsAPI {
	return &NewsAPI{apiKey: apiKey, baseURL: newsAPIBaseURL, client: client}
}

func (n *NewsAPI) Name() string { return "newsapi" }

func (n *NewsAPI) Fetch(ctx context.Context, c models.Company, limit int) ([]models.NewsItem, error) {
	params := url.Values{}
	params.Set("q", searchTerm(c))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	if limit > 0 {
		params.Set("pageSize", strconv.Itoa(limit))
	}
	params.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding newsapi response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned status %d: %s", resp.StatusCode, body.Message)
	}

	items := make([]models.NewsItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title:     a.Title,
			URL:       a.URL,
			Source:    a.Source.Name,
			Published: formatPublished(a.PublishedAt),
		})
	}
	return items, nil
}

// searchTerm prefers the quoted company name and falls back to the ticker.
func searchTerm(c models.Company) string {
	if c.Name != "" && c.Name != c.Ticker {
		return strconv.Quote(c.Name)
	}
	return c.Ticker
}

func formatPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
