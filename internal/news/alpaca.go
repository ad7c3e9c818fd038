package news

import (
	"context"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/mauv0809/expansion-radar/internal/models"
)

// newsGetter is the part of the Alpaca marketdata client we use.
type newsGetter interface {
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

// Alpaca reads headlines from the Alpaca market data news API.
type Alpaca struct {
	client newsGetter
}

func NewAlpaca(apiKey, apiSecret string) *Alpaca {
	return &Alpaca{client: marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})}
}

func (a *Alpaca) Name() string { return "alpaca" }

// Fetch returns the newest headlines for the ticker. The Alpaca client is not
// context aware, so cancellation only takes effect before the call.
func (a *Alpaca) Fetch(ctx context.Context, c models.Company, limit int) ([]models.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := marketdata.GetNewsRequest{
		Symbols: []string{c.Ticker},
		Sort:    marketdata.SortDesc,
	}
	if limit > 0 {
		req.TotalLimit = limit
	}
	alpacaNews, err := a.client.GetNews(req)
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(alpacaNews))
	for _, n := range alpacaNews {
		// Alpaca reports the byline but not the outlet.
		source := n.Author
		if source == "" {
			source = "Alpaca"
		}
		items = append(items, models.NewsItem{
			Title:     n.Headline,
			URL:       n.URL,
			Source:    source,
			Published: formatPublished(n.CreatedAt),
		})
	}
	return items, nil
}
