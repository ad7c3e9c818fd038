package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
)

const googleNewsURL = "https://news.google.com/rss/search"

// GoogleNews reads the Google News RSS search feed.
type GoogleNews struct {
	baseURL string
	client  *http.Client
}

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

func NewGoogleNews(client *http.Client) *GoogleNews {
	return &GoogleNews{baseURL: googleNewsURL, client: client}
}

func (g *GoogleNews) Name() string { return "google" }

func (g *GoogleNews) Fetch(ctx context.Context, c models.Company, limit int) ([]models.NewsItem, error) {
	q := url.Values{}
	q.Set("q", searchTerm(c)+" stock")
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news returned status %d", resp.StatusCode)
	}

	var rss rssResponse
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, fmt.Errorf("decoding rss: %w", err)
	}

	var items []models.NewsItem
	for _, item := range rss.Channel.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		title := item.Title
		// Google appends " - <source>" to every headline.
		if item.Source != "" {
			title = strings.TrimSuffix(title, " - "+item.Source)
		}
		items = append(items, models.NewsItem{
			Title:     title,
			URL:       item.Link,
			Source:    item.Source,
			Published: parsePubDate(item.PubDate),
		})
	}
	return items, nil
}

// parsePubDate normalises RSS dates; unparseable values are kept verbatim.
func parsePubDate(s string) string {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, s); err == nil {
			return formatPublished(t)
		}
	}
	return s
}
