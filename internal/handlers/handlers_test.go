package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
	"github.com/mauv0809/expansion-radar/internal/db"
	"github.com/mauv0809/expansion-radar/internal/ingest"
	"github.com/mauv0809/expansion-radar/internal/models"
	"github.com/mauv0809/expansion-radar/internal/news"
)

func intPtr(n int) *int { return &n }

func seed() []models.Company {
	return []models.Company{
		{Name: "Acme Corp", Ticker: "ABC", Sector: "Energy", Rank: intPtr(1), About: "Anvils"},
		{Name: "Bolt Inc", Ticker: "BRK/B", Sector: "Materials", Rank: intPtr(2)},
		{Name: "Cobalt", Ticker: "CBT", Sector: "Energy"},
	}
}

type failingNews struct{}

func (failingNews) ForCompany(context.Context, models.Company) ([]models.NewsItem, error) {
	return nil, errors.New("provider down")
}

type fakeSheet struct {
	companies []models.Company
	err       error
}

func (f fakeSheet) Read(context.Context, string) ([]models.Company, error) {
	return f.companies, f.err
}

func newServer(store db.CompanyStore, finder NewsFinder, ih *IngestHandler) *echo.Echo {
	e := echo.New()
	Register(e, New(store, finder), ih)
	return e
}

func placeholderNews() NewsFinder {
	return news.NewService(news.Placeholder{}, nil, 5, 0)
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := New(db.NewMemoryStore(), placeholderNews())
	if err := h.Health(c); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPICompanies(t *testing.T) {
	e := newServer(db.NewMemoryStore(seed()...), placeholderNews(), nil)

	tests := []struct {
		name    string
		target  string
		tickers []string
	}{
		{"all", "/api/companies", []string{"ABC", "BRK/B", "CBT"}},
		{"ALL sentinels", "/api/companies?sector=ALL&rank=ALL", []string{"ABC", "BRK/B", "CBT"}},
		{"sector", "/api/companies?sector=Energy", []string{"ABC", "CBT"}},
		{"rank", "/api/companies?rank=2", []string{"BRK/B"}},
		{"non-integer rank ignored", "/api/companies?rank=two", []string{"ABC", "BRK/B", "CBT"}},
		{"query on name", "/api/companies?q=corp", []string{"ABC"}},
		{"query on ticker", "/api/companies?q=cbt", []string{"CBT"}},
		{"no match", "/api/companies?sector=Energy&rank=2", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, e, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var got []models.Company
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got == nil {
				t.Fatal("body should be a JSON array, not null")
			}
			var tickers []string
			for _, c := range got {
				tickers = append(tickers, c.Ticker)
			}
			if strings.Join(tickers, ",") != strings.Join(tt.tickers, ",") {
				t.Errorf("tickers = %v, want %v", tickers, tt.tickers)
			}
		})
	}
}

func TestAPICompaniesRankColor(t *testing.T) {
	e := newServer(db.NewMemoryStore(seed()...), placeholderNews(), nil)
	rec := get(t, e, "/api/companies")

	var got []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0]["company_name"] != "Acme Corp" || got[0]["rank_color"] != "#c6efce" {
		t.Errorf("first = %v", got[0])
	}
	if got[2]["rank_color"] != "#ffffff" {
		t.Errorf("unranked color = %v", got[2]["rank_color"])
	}
}

func TestAPINews(t *testing.T) {
	e := newServer(db.NewMemoryStore(seed()...), placeholderNews(), nil)

	rec := get(t, e, dashboard.NewsURL("BRK/B"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var items []models.NewsItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Latest strategic update for BRK/B" || items[0].URL != "#" {
		t.Errorf("items = %+v", items)
	}

	rec = get(t, e, "/api/news/NOPE")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("unknown ticker: %d %s", rec.Code, rec.Body.String())
	}

	e = newServer(db.NewMemoryStore(seed()...), failingNews{}, nil)
	rec = get(t, e, "/api/news/ABC")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("provider failure status = %d", rec.Code)
	}
}

func TestAPIFilters(t *testing.T) {
	e := newServer(db.NewMemoryStore(seed()...), placeholderNews(), nil)
	rec := get(t, e, "/api/filters")

	var opts models.FilterOptions
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(opts.Sectors, ",") != "Energy,Materials" {
		t.Errorf("sectors = %v", opts.Sectors)
	}
	if len(opts.Ranks) != 2 || opts.Ranks[0] != 1 || opts.Ranks[1] != 2 {
		t.Errorf("ranks = %v", opts.Ranks)
	}
}

func TestIndexAndPartials(t *testing.T) {
	e := newServer(db.NewMemoryStore(seed()...), placeholderNews(), nil)

	rec := get(t, e, "/")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/html") {
		t.Fatalf("index: %d %s", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Body.String(), `<option value="Materials">`) {
		t.Error("index missing sector option")
	}

	rec = get(t, e, "/ui/companies?sector=Energy&rank=ALL&q=")
	body := rec.Body.String()
	for _, want := range []string{"2 companies", "Acme Corp", "Anvils", `hx-get="/ui/news/ABC"`} {
		if !strings.Contains(body, want) {
			t.Errorf("/ui/companies missing %q", want)
		}
	}
	if strings.Contains(body, "Bolt Inc") {
		t.Error("/ui/companies ignored the sector filter")
	}

	rec = get(t, e, "/ui/select/BRK%2FB")
	if !strings.Contains(rec.Body.String(), "Bolt Inc") || !strings.Contains(rec.Body.String(), dashboard.NoDescription) {
		t.Errorf("/ui/select = %s", rec.Body.String())
	}

	rec = get(t, e, "/ui/news/ABC")
	if !strings.Contains(rec.Body.String(), "Latest strategic update for ABC") ||
		!strings.Contains(rec.Body.String(), dashboard.NewsSourceNote) {
		t.Errorf("/ui/news = %s", rec.Body.String())
	}

	rec = get(t, e, "/ui/news/NOPE")
	if !strings.Contains(rec.Body.String(), dashboard.NewsErrorText) {
		t.Errorf("/ui/news unknown = %s", rec.Body.String())
	}
}

func TestUICompaniesEmpty(t *testing.T) {
	e := newServer(db.NewMemoryStore(seed()...), placeholderNews(), nil)
	body := get(t, e, "/ui/companies?q=zzz").Body.String()
	if !strings.Contains(body, "0 companies") || strings.Contains(body, "/ui/news/") {
		t.Errorf("empty partial = %s", body)
	}
}

func TestImportEndpoints(t *testing.T) {
	store := db.NewMemoryStore()
	sheet := fakeSheet{companies: seed()[:2]}
	ih := NewIngestHandler(ingest.NewImporter(store, sheet, nil, "companies.csv"), store)
	e := newServer(store, placeholderNews(), ih)

	req := httptest.NewRequest(http.MethodPost, "/admin/import", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || !resp.Success || resp.Count != 2 {
		t.Fatalf("import: %d %+v", rec.Code, resp)
	}

	rec = get(t, e, "/admin/import/status")
	var status map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status["companies"] != float64(2) || status["source"] != "companies.csv" || status["last_run"] == nil {
		t.Errorf("status = %v", status)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/import/enrich", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("enrich without key: %d", rec.Code)
	}
}

func TestImportFailureKeepsData(t *testing.T) {
	store := db.NewMemoryStore(seed()...)
	ih := NewIngestHandler(ingest.NewImporter(store, fakeSheet{err: errors.New("sheet gone")}, nil, "companies.csv"), store)
	e := newServer(store, placeholderNews(), ih)

	req := httptest.NewRequest(http.MethodPost, "/admin/import", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	var got []models.Company
	json.Unmarshal(get(t, e, "/api/companies").Body.Bytes(), &got)
	if len(got) != 3 {
		t.Errorf("companies after failed import = %d, want 3", len(got))
	}
}

func TestImportWithoutSource(t *testing.T) {
	store := db.NewMemoryStore()
	ih := NewIngestHandler(ingest.NewImporter(store, fakeSheet{}, nil, ""), store)
	e := newServer(store, placeholderNews(), ih)

	req := httptest.NewRequest(http.MethodPost, "/admin/import", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
