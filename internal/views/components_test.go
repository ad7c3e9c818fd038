package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
	"github.com/mauv0809/expansion-radar/internal/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func intPtr(n int) *int { return &n }

func TestPage(t *testing.T) {
	html := render(t, Page(models.FilterOptions{Sectors: []string{"Energy"}, Ranks: []int{1, 2}}))
	for _, want := range []string{
		`hx-get="/ui/companies"`,
		`keyup changed delay:300ms from:#search`,
		`hx-sync="this:replace"`,
		`<option value="ALL">All sectors</option>`,
		`<option value="Energy">Energy</option>`,
		`<option value="2">Rank 2</option>`,
		`0 companies`,
		`id="detail" hidden`,
		`id="news" hidden`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestFilterFormSubmitStaysInPage(t *testing.T) {
	html := render(t, Page(models.FilterOptions{}))
	if !strings.Contains(html, `hx-trigger="`+FilterTrigger+`"`) {
		t.Fatalf("form trigger missing from page")
	}
	triggers := strings.Split(FilterTrigger, ",")
	found := false
	for _, tr := range triggers {
		if strings.TrimSpace(tr) == "submit" {
			found = true
		}
	}
	if !found {
		t.Errorf("trigger %q does not handle submit, Enter would reload the page", FilterTrigger)
	}
}

func TestPageMovesRowHighlightOnClick(t *testing.T) {
	html := render(t, Page(models.FilterOptions{}))
	for _, want := range []string{"htmx:beforeRequest", `#company-table tbody tr`, `classList.add("table-active")`} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDashboard(t *testing.T) {
	st := dashboard.NewState()
	req := st.BeginList()
	st.ApplyList(req, []models.Company{
		{Name: "Acme & Sons", Ticker: "ABC", Rank: intPtr(1), RankColor: "#00ff00"},
		{Name: "Bolt", Ticker: "BLT"},
	}, nil)

	html := render(t, Dashboard(st))
	for _, want := range []string{
		`2 companies`,
		`Acme &amp; Sons`,
		`style="background-color: #00ff00;"`,
		`class="table-active"`,
		`hx-get="/ui/select/ABC"`,
		`hx-swap-oob="true"`,
		`hx-get="/ui/news/ABC" hx-trigger="load"`,
		dashboard.NewsLoadingText,
		dashboard.NoDescription,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Count(html, `table-active`) != 1 {
		t.Errorf("want one highlighted row, got html %s", html)
	}
	if strings.Count(html, `/ui/news/`) != 1 {
		t.Errorf("want exactly one news load, got html %s", html)
	}
}

func TestDashboardEmptyAndError(t *testing.T) {
	st := dashboard.NewState()
	req := st.BeginList()
	st.ApplyList(req, nil, nil)
	html := render(t, Dashboard(st))
	if !strings.Contains(html, "0 companies") || !strings.Contains(html, `id="detail" hx-swap-oob="true" hidden`) {
		t.Errorf("empty dashboard = %s", html)
	}

	req = st.BeginList()
	st.ApplyList(req, nil, context.DeadlineExceeded)
	html = render(t, Dashboard(st))
	if !strings.Contains(html, dashboard.CompanyErrorText) {
		t.Errorf("error dashboard = %s", html)
	}
}

func TestNews(t *testing.T) {
	populated := dashboard.RenderNews("ABC", []models.NewsItem{
		{Title: "<b>Big</b> news", URL: "javascript:alert(1)", Source: "Wire", Published: "2024-05-01"},
		{Title: "Plain", URL: "https://example.com/a"},
	}, nil)
	html := render(t, News(populated, false))
	if strings.Contains(html, "<b>Big</b>") {
		t.Error("title was not escaped")
	}
	if strings.Contains(html, "javascript:") {
		t.Error("unsafe url was not sanitized")
	}
	for _, want := range []string{`href="https://example.com/a"`, `target="_blank"`, "Wire · 2024-05-01", dashboard.NewsSourceNote} {
		if !strings.Contains(html, want) {
			t.Errorf("news missing %q", want)
		}
	}
	if strings.Contains(html, "hx-get") {
		t.Error("settled panel should not load again")
	}

	empty := render(t, News(dashboard.RenderNews("ABC", nil, nil), false))
	if !strings.Contains(empty, dashboard.NewsEmptyText) || strings.Contains(empty, dashboard.NewsSourceNote) {
		t.Errorf("empty news = %s", empty)
	}
}

func TestSelection(t *testing.T) {
	c := models.Company{Name: "Bolt", Ticker: "BRK/B", About: "Rails"}
	html := render(t, Selection(dashboard.RenderDetail(c), dashboard.LoadingNews(c.Ticker)))
	for _, want := range []string{"Bolt", "Rails", `hx-get="/ui/news/BRK%2FB"`} {
		if !strings.Contains(html, want) {
			t.Errorf("selection missing %q", want)
		}
	}
}
