package dashboard

import (
	"github.com/mauv0809/expansion-radar/internal/models"
)

// ListRequest is an issued company list load.
type ListRequest struct {
	Seq    uint64
	Filter models.CompanyFilter
}

// NewsRequest is an issued news load for the selected company.
type NewsRequest struct {
	Seq    uint64
	Ticker string
}

// State owns the filter, the rendered views and the single selection. It
// is not safe for concurrent use: one goroutine (a UI update loop) owns it
// and feeds responses back through the Apply methods.
//
// Every load gets a sequence number; a response is applied only if its
// sequence is still the latest of its kind, so slow stale responses cannot
// overwrite newer views.
type State struct {
	Filter models.CompanyFilter
	Table  TableView
	Detail DetailView
	News   NewsPanel

	companies []models.Company
	selected  int
	listSeq   uint64
	newsSeq   uint64
}

// NewState returns a state with an empty, unloaded table.
func NewState() *State {
	return &State{
		Filter:   models.CompanyFilter{Sector: models.AllValues, Rank: models.AllValues},
		Table:    TableView{Rows: []Row{}, Count: CountLabel(0)},
		selected: -1,
	}
}

// BeginList issues a list load for the current filter.
func (s *State) BeginList() ListRequest {
	s.listSeq++
	return ListRequest{Seq: s.listSeq, Filter: s.Filter}
}

// ApplyList renders a list response. It returns ok=false when the response
// is stale and was dropped. When the list is non-empty the first company is
// selected and the returned NewsRequest must be issued.
func (s *State) ApplyList(req ListRequest, companies []models.Company, err error) (news NewsRequest, hasNews bool, ok bool) {
	if req.Seq != s.listSeq {
		return NewsRequest{}, false, false
	}

	if err != nil {
		s.clearSelection()
		s.Table = ErrorTable()
		return NewsRequest{}, false, true
	}

	s.companies = companies
	s.Table = RenderTable(companies)
	if len(companies) == 0 {
		s.clearSelection()
		return NewsRequest{}, false, true
	}

	news, _ = s.Select(0)
	return news, true, true
}

// clearSelection hides both panels and invalidates in-flight news.
func (s *State) clearSelection() {
	s.companies = nil
	s.selected = -1
	s.Detail = DetailView{}
	s.News = NewsPanel{}
	s.newsSeq++
}

// Select makes row i the selection, renders its detail panel and puts the
// news panel into the loading state. The returned request must be issued.
func (s *State) Select(i int) (NewsRequest, bool) {
	if i < 0 || i >= len(s.companies) {
		return NewsRequest{}, false
	}
	c := s.companies[i]
	s.selected = i
	s.Detail = RenderDetail(c)
	s.News = LoadingNews(c.Ticker)
	s.newsSeq++
	return NewsRequest{Seq: s.newsSeq, Ticker: c.Ticker}, true
}

// ApplyNews renders a news response if it belongs to the latest selection.
func (s *State) ApplyNews(req NewsRequest, items []models.NewsItem, err error) bool {
	if req.Seq != s.newsSeq || s.selected < 0 {
		return false
	}
	s.News = RenderNews(req.Ticker, items, err)
	return true
}

// Selected returns the selected row index, or -1.
func (s *State) Selected() int { return s.selected }

// SelectedCompany returns the selected company.
func (s *State) SelectedCompany() (models.Company, bool) {
	if s.selected < 0 || s.selected >= len(s.companies) {
		return models.Company{}, false
	}
	return s.companies[s.selected], true
}

// Len is the number of rendered companies.
func (s *State) Len() int { return len(s.companies) }
