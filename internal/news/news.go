// Package news serves the recent-news list for a company from a pluggable
// provider, optionally cached in redis.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mauv0809/expansion-radar/internal/config"
	"github.com/mauv0809/expansion-radar/internal/models"
)

// Provider fetches up to limit recent items about a company.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, c models.Company, limit int) ([]models.NewsItem, error)
}

// Cache stores provider results per ticker.
type Cache interface {
	Get(ctx context.Context, ticker string) ([]models.NewsItem, bool, error)
	Set(ctx context.Context, ticker string, items []models.NewsItem, ttl time.Duration) error
}

// Service applies the item limit and cache around a provider.
type Service struct {
	provider Provider
	cache    Cache
	limit    int
	ttl      time.Duration
}

// NewService wraps provider. cache may be nil.
func NewService(provider Provider, cache Cache, limit int, ttl time.Duration) *Service {
	return &Service{provider: provider, cache: cache, limit: limit, ttl: ttl}
}

// ForCompany returns at most limit items for c. The result is never nil.
// Cache failures are logged and otherwise ignored.
func (s *Service) ForCompany(ctx context.Context, c models.Company) ([]models.NewsItem, error) {
	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, c.Ticker)
		if err != nil {
			slog.Warn("news cache read failed", "ticker", c.Ticker, "error", err)
		} else if ok {
			return truncate(items, s.limit), nil
		}
	}

	items, err := s.provider.Fetch(ctx, c, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%s news for %s: %w", s.provider.Name(), c.Ticker, err)
	}
	items = truncate(items, s.limit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, c.Ticker, items, s.ttl); err != nil {
			slog.Warn("news cache write failed", "ticker", c.Ticker, "error", err)
		}
	}
	return items, nil
}

func truncate(items []models.NewsItem, limit int) []models.NewsItem {
	if items == nil {
		return []models.NewsItem{}
	}
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// NewProvider builds the provider selected in cfg.
func NewProvider(cfg config.News) (Provider, error) {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	switch cfg.Provider {
	case config.ProviderPlaceholder, "":
		return Placeholder{}, nil
	case config.ProviderNewsAPI:
		return NewNewsAPI(cfg.NewsAPIKey, httpClient), nil
	case config.ProviderAlpaca:
		return NewAlpaca(cfg.AlpacaKey, cfg.AlpacaSecret), nil
	case config.ProviderGoogle:
		return NewGoogleNews(httpClient), nil
	}
	return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
}

// Placeholder returns the fixed stand-in item used until a real feed is
// configured.
type Placeholder struct{}

func (Placeholder) Name() string { return config.ProviderPlaceholder }

func (Placeholder) Fetch(_ context.Context, c models.Company, limit int) ([]models.NewsItem, error) {
	items := []models.NewsItem{{
		Title:     "Latest strategic update for " + c.Ticker,
		URL:       "#",
		Source:    "Internal / Placeholder",
		Published: "N/A",
	}}
	return truncate(items, limit), nil
}
