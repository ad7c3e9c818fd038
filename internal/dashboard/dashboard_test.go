package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mauv0809/expansion-radar/internal/models"
)

func intPtr(n int) *int { return &n }

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter models.CompanyFilter
		want   url.Values
	}{
		{"all empty", models.CompanyFilter{}, url.Values{}},
		{"ALL sentinels", models.CompanyFilter{Sector: "ALL", Rank: "ALL"}, url.Values{}},
		{"lower-case sentinel", models.CompanyFilter{Sector: "all", Rank: "All"}, url.Values{}},
		{"blank query", models.CompanyFilter{Query: "   "}, url.Values{}},
		{"sector only", models.CompanyFilter{Sector: "Energy", Rank: "ALL"}, url.Values{"sector": {"Energy"}}},
		{"rank only", models.CompanyFilter{Sector: "ALL", Rank: "2"}, url.Values{"rank": {"2"}}},
		{"everything", models.CompanyFilter{Sector: "Energy", Rank: "1", Query: "acme"},
			url.Values{"sector": {"Energy"}, "rank": {"1"}, "q": {"acme"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuery(tt.filter)
			if got.Encode() != tt.want.Encode() {
				t.Errorf("BuildQuery() = %q, want %q", got.Encode(), tt.want.Encode())
			}
		})
	}
}

func TestURLs(t *testing.T) {
	if got := CompaniesURL(models.CompanyFilter{Sector: "Consumer Staples"}); got != "/api/companies?sector=Consumer+Staples" {
		t.Errorf("CompaniesURL = %q", got)
	}
	if got := NewsURL("BRK/B"); got != "/api/news/BRK%2FB" {
		t.Errorf("NewsURL = %q", got)
	}
	f := ParseFilter(BuildQuery(models.CompanyFilter{Sector: "Energy", Query: "x"}))
	if f.Sector != "Energy" || f.Rank != "" || f.Query != "x" {
		t.Errorf("ParseFilter round trip = %+v", f)
	}
}

func TestRenderTable(t *testing.T) {
	view := RenderTable([]models.Company{
		{Name: "Acme", Ticker: "ABC", Rank: intPtr(1), RankColor: "#00ff00"},
		{Name: "Bolt", Ticker: "BLT"},
	})
	if view.Count != "2 companies" {
		t.Errorf("Count = %q", view.Count)
	}
	want := []Row{
		{Name: "Acme", Ticker: "ABC", Rank: "1", RankColor: "#00ff00"},
		{Name: "Bolt", Ticker: "BLT", RankColor: "#ffffff"},
	}
	for i := range want {
		if view.Rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, view.Rows[i], want[i])
		}
	}

	if empty := RenderTable(nil); empty.Count != "0 companies" || !empty.Empty() {
		t.Errorf("empty table = %+v", empty)
	}
}

func TestRenderDetail(t *testing.T) {
	d := RenderDetail(models.Company{Name: "Acme", Ticker: "ABC", Sector: "Energy", Rank: intPtr(3), PresentInIndia: "Yes", PresentInTN: "No"})
	want := DetailView{Visible: true, Name: "Acme", Ticker: "ABC", Sector: "Energy", Rank: "3", India: "Yes", TN: "No", About: NoDescription}
	if d != want {
		t.Errorf("RenderDetail = %+v, want %+v", d, want)
	}

	d = RenderDetail(models.Company{Name: "Acme", Ticker: "ABC", About: "Makes anvils"})
	if d.About != "Makes anvils" || d.Rank != "" || d.Sector != "" {
		t.Errorf("RenderDetail = %+v", d)
	}
}

func TestRenderNews(t *testing.T) {
	loading := LoadingNews("ABC")
	if loading.State != NewsLoading || loading.Placeholder != "Loading news…" || loading.SourceNote != "" || !loading.Visible() {
		t.Errorf("loading = %+v", loading)
	}

	empty := RenderNews("ABC", []models.NewsItem{}, nil)
	if empty.State != NewsEmpty || empty.Placeholder != "No recent news available." || empty.SourceNote != "" {
		t.Errorf("empty = %+v", empty)
	}

	failed := RenderNews("ABC", nil, errors.New("boom"))
	if failed.State != NewsError || failed.Placeholder != "Error loading news." || failed.SourceNote != "" {
		t.Errorf("error = %+v", failed)
	}

	items := []models.NewsItem{
		{Title: "One", URL: "https://example.com/1", Source: "Wire", Published: "2024-05-01"},
		{Title: "Two", URL: "https://example.com/2"},
	}
	populated := RenderNews("ABC", items, nil)
	if populated.State != NewsPopulated || len(populated.Rows) != 2 || populated.SourceNote != NewsSourceNote {
		t.Fatalf("populated = %+v", populated)
	}
	if populated.Rows[0] != (NewsRow{Title: "One", URL: "https://example.com/1", Source: "Wire", Published: "2024-05-01"}) {
		t.Errorf("row 0 = %+v", populated.Rows[0])
	}
}

func TestStateAutoSelectsFirstRow(t *testing.T) {
	s := NewState()
	req := s.BeginList()

	news, hasNews, ok := s.ApplyList(req, []models.Company{
		{Name: "Acme", Ticker: "ABC", Rank: intPtr(1), RankColor: "#00ff00"},
		{Name: "Bolt", Ticker: "BLT"},
	}, nil)
	if !ok || !hasNews {
		t.Fatalf("ApplyList ok=%v hasNews=%v", ok, hasNews)
	}
	if news.Ticker != "ABC" {
		t.Errorf("news request for %q, want ABC", news.Ticker)
	}
	if s.Selected() != 0 {
		t.Errorf("Selected = %d, want 0", s.Selected())
	}
	if s.Table.Rows[0].RankColor != "#00ff00" {
		t.Errorf("rank color = %q", s.Table.Rows[0].RankColor)
	}
	if s.Detail.Name != "Acme" || s.Detail.Ticker != "ABC" || s.Detail.Rank != "1" {
		t.Errorf("detail = %+v", s.Detail)
	}
	if s.News.State != NewsLoading {
		t.Errorf("news state = %v, want loading", s.News.State)
	}

	if !s.ApplyNews(news, []models.NewsItem{}, nil) {
		t.Fatal("current news response was dropped")
	}
	if s.News.State != NewsEmpty || s.News.SourceNote != "" {
		t.Errorf("news = %+v", s.News)
	}
}

func TestStateEmptyListHidesPanels(t *testing.T) {
	s := NewState()
	req := s.BeginList()
	s.ApplyList(req, []models.Company{{Name: "Acme", Ticker: "ABC"}}, nil)

	req = s.BeginList()
	_, hasNews, ok := s.ApplyList(req, []models.Company{}, nil)
	if !ok || hasNews {
		t.Fatalf("ok=%v hasNews=%v", ok, hasNews)
	}
	if s.Table.Count != "0 companies" {
		t.Errorf("Count = %q", s.Table.Count)
	}
	if s.Detail.Visible || s.News.Visible() {
		t.Errorf("panels should be hidden: detail=%+v news=%+v", s.Detail, s.News)
	}
	if s.Selected() != -1 {
		t.Errorf("Selected = %d", s.Selected())
	}
}

func TestStateListError(t *testing.T) {
	s := NewState()
	req := s.BeginList()
	_, hasNews, ok := s.ApplyList(req, nil, errors.New("connection refused"))
	if !ok || hasNews {
		t.Fatalf("ok=%v hasNews=%v", ok, hasNews)
	}
	if s.Table.Error != CompanyErrorText || s.Table.Count != "0 companies" {
		t.Errorf("table = %+v", s.Table)
	}
	if s.Detail.Visible || s.News.Visible() {
		t.Error("panels should be hidden after a failed load")
	}
}

func TestStateDropsStaleResponses(t *testing.T) {
	s := NewState()
	first := s.BeginList()
	second := s.BeginList()

	if _, _, ok := s.ApplyList(first, []models.Company{{Name: "Old", Ticker: "OLD"}}, nil); ok {
		t.Fatal("stale list response was applied")
	}
	newsA, _, ok := s.ApplyList(second, []models.Company{{Name: "Acme", Ticker: "ABC"}, {Name: "Bolt", Ticker: "BLT"}}, nil)
	if !ok {
		t.Fatal("current list response was dropped")
	}

	newsB, ok := s.Select(1)
	if !ok {
		t.Fatal("Select(1) failed")
	}
	if s.Detail.Ticker != "BLT" {
		t.Errorf("detail ticker = %q", s.Detail.Ticker)
	}

	if s.ApplyNews(newsA, []models.NewsItem{{Title: "late"}}, nil) {
		t.Error("news for the previous selection was applied")
	}
	if s.News.State != NewsLoading || s.News.Ticker != "BLT" {
		t.Errorf("news = %+v, want loading for BLT", s.News)
	}
	if !s.ApplyNews(newsB, nil, errors.New("timeout")) {
		t.Fatal("current news response dropped")
	}
	if s.News.State != NewsError {
		t.Errorf("news state = %v, want error", s.News.State)
	}
}

func TestStateSelectOutOfRange(t *testing.T) {
	s := NewState()
	if _, ok := s.Select(0); ok {
		t.Error("Select on empty state should fail")
	}
}

func TestDebouncerOnlyLastFires(t *testing.T) {
	var d Debouncer
	var tags []uint64
	for i := 0; i < 5; i++ {
		tags = append(tags, d.Touch())
	}
	fired := 0
	for _, tag := range tags {
		if d.Fire(tag) {
			fired++
		}
	}
	if fired != 1 || !d.Fire(tags[4]) {
		t.Errorf("fired %d times, want exactly once for the last keystroke", fired)
	}
}

func TestClient(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/companies":
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode([]models.Company{{Name: "Acme", Ticker: "ABC", Rank: intPtr(1), RankColor: "#00ff00"}})
		case r.URL.EscapedPath() == "/api/news/BRK%2FB":
			w.Write([]byte(`[{"title":"Hello","url":"https://example.com"}]`))
		case r.URL.Path == "/api/filters":
			w.Write([]byte(`{"sectors":["Energy"],"ranks":[1,2]}`))
		case r.URL.Path == "/api/news/BAD":
			w.Write([]byte(`not json`))
		default:
			http.Error(w, `{"error":"nope"}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client())
	ctx := context.Background()

	companies, err := c.Companies(ctx, models.CompanyFilter{Sector: "ALL", Rank: "1"})
	if err != nil {
		t.Fatalf("Companies: %v", err)
	}
	if gotQuery != "rank=1" {
		t.Errorf("query = %q, want rank=1", gotQuery)
	}
	if len(companies) != 1 || companies[0].RankColor != "#00ff00" || *companies[0].Rank != 1 {
		t.Errorf("companies = %+v", companies)
	}

	items, err := c.News(ctx, "BRK/B")
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Hello" {
		t.Errorf("items = %+v", items)
	}

	opts, err := c.Filters(ctx)
	if err != nil {
		t.Fatalf("Filters: %v", err)
	}
	if len(opts.Sectors) != 1 || len(opts.Ranks) != 2 {
		t.Errorf("opts = %+v", opts)
	}

	if _, err := c.News(ctx, "BAD"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := c.News(ctx, "MISSING/X/Y"); err == nil {
		t.Error("expected status error")
	}
}
