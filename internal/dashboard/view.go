package dashboard

import (
	"fmt"
	"strconv"

	"github.com/mauv0809/expansion-radar/internal/models"
)

// Fixed texts shown by the panels.
const (
	NoDescription    = "No description available."
	NewsLoadingText  = "Loading news…"
	NewsEmptyText    = "No recent news available."
	NewsErrorText    = "Error loading news."
	NewsSourceNote   = "News feed powered by your connected news API (configure in backend)."
	CompanyErrorText = "Error loading companies."
)

// Row is one rendered company table row.
type Row struct {
	Name      string
	Ticker    string
	Sector    string
	Rank      string
	RankColor string
	India     string
	TN        string
}

// TableView is the rendered company table.
type TableView struct {
	Rows  []Row
	Count string
	// Error is set when the list could not be loaded.
	Error string
}

// Empty reports whether the table has no rows.
func (t TableView) Empty() bool { return len(t.Rows) == 0 }

// CountLabel formats the "<n> companies" label.
func CountLabel(n int) string {
	return fmt.Sprintf("%d companies", n)
}

// RenderTable renders companies in the order given.
func RenderTable(companies []models.Company) TableView {
	rows := make([]Row, 0, len(companies))
	for _, c := range companies {
		color := c.RankColor
		if color == "" {
			color = models.DefaultRankColor
		}
		rows = append(rows, Row{
			Name:      c.Name,
			Ticker:    c.Ticker,
			Sector:    c.Sector,
			Rank:      rankText(c.Rank),
			RankColor: color,
			India:     c.PresentInIndia,
			TN:        c.PresentInTN,
		})
	}
	return TableView{Rows: rows, Count: CountLabel(len(rows))}
}

// ErrorTable is the table shown when the list load failed.
func ErrorTable() TableView {
	return TableView{Rows: []Row{}, Count: CountLabel(0), Error: CompanyErrorText}
}

func rankText(rank *int) string {
	if rank == nil {
		return ""
	}
	return strconv.Itoa(*rank)
}

// DetailView is the selected company panel.
type DetailView struct {
	Visible bool
	Name    string
	Ticker  string
	Sector  string
	Rank    string
	India   string
	TN      string
	About   string
}

// RenderDetail renders the detail panel for c.
func RenderDetail(c models.Company) DetailView {
	about := c.About
	if about == "" {
		about = NoDescription
	}
	return DetailView{
		Visible: true,
		Name:    c.Name,
		Ticker:  c.Ticker,
		Sector:  c.Sector,
		Rank:    rankText(c.Rank),
		India:   c.PresentInIndia,
		TN:      c.PresentInTN,
		About:   about,
	}
}

// NewsState is the news panel state.
type NewsState int

const (
	NewsHidden NewsState = iota
	NewsLoading
	NewsEmpty
	NewsPopulated
	NewsError
)

func (s NewsState) String() string {
	switch s {
	case NewsHidden:
		return "hidden"
	case NewsLoading:
		return "loading"
	case NewsEmpty:
		return "empty"
	case NewsPopulated:
		return "populated"
	case NewsError:
		return "error"
	}
	return "unknown"
}

// NewsRow is one rendered headline.
type NewsRow struct {
	Title     string
	URL       string
	Source    string
	Published string
}

// NewsPanel is the rendered news panel. Placeholder is the single row text
// shown in the loading, empty and error states.
type NewsPanel struct {
	State       NewsState
	Ticker      string
	Rows        []NewsRow
	Placeholder string
	SourceNote  string
}

// Visible reports whether the panel is shown.
func (p NewsPanel) Visible() bool { return p.State != NewsHidden }

// LoadingNews is the panel while news for ticker is in flight.
func LoadingNews(ticker string) NewsPanel {
	return NewsPanel{State: NewsLoading, Ticker: ticker, Placeholder: NewsLoadingText}
}

// RenderNews turns a news response, or its error, into the settled panel state.
func RenderNews(ticker string, items []models.NewsItem, err error) NewsPanel {
	if err != nil {
		return NewsPanel{State: NewsError, Ticker: ticker, Placeholder: NewsErrorText}
	}
	if len(items) == 0 {
		return NewsPanel{State: NewsEmpty, Ticker: ticker, Placeholder: NewsEmptyText}
	}
	rows := make([]NewsRow, 0, len(items))
	for _, n := range items {
		rows = append(rows, NewsRow{
			Title:     n.Title,
			URL:       n.URL,
			Source:    n.Source,
			Published: n.Published,
		})
	}
	return NewsPanel{State: NewsPopulated, Ticker: ticker, Rows: rows, SourceNote: NewsSourceNote}
}
