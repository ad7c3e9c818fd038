package db

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mauv0809/expansion-radar/internal/models"
)

func intPtr(n int) *int { return &n }

func sampleCompanies() []models.Company {
	return []models.Company{
		{Name: "Zeta Foods", Ticker: "ZETA", Sector: "Consumer", Rank: intPtr(2), About: "Packaged food"},
		{Name: "Acme Motors", Ticker: "ACME", Sector: "Industrials", Rank: intPtr(1), PresentInIndia: "Yes", PresentInTN: "No"},
		{Name: "Bolt Energy", Ticker: "BLT", Sector: "Energy"},
		{Name: "Acme_Labs", Ticker: "ALAB", Sector: "Industrials", Rank: intPtr(1)},
	}
}

// exerciseStore runs the same contract checks against any CompanyStore.
func exerciseStore(t *testing.T, s CompanyStore) {
	t.Helper()
	ctx := context.Background()

	n, err := s.ReplaceCompanies(ctx, sampleCompanies())
	if err != nil {
		t.Fatalf("ReplaceCompanies: %v", err)
	}
	if n != 4 {
		t.Fatalf("ReplaceCompanies wrote %d, want 4", n)
	}

	all, err := s.ListCompanies(ctx, models.CompanyFilter{Sector: "ALL", Rank: "ALL"})
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	var tickers []string
	for _, c := range all {
		tickers = append(tickers, c.Ticker)
	}
	if want := []string{"ZETA", "ACME", "BLT", "ALAB"}; !reflect.DeepEqual(tickers, want) {
		t.Errorf("order = %v, want import order %v", tickers, want)
	}
	if all[1].RankColor != "#c6efce" {
		t.Errorf("ACME rank color = %q, want #c6efce", all[1].RankColor)
	}
	if all[2].Rank != nil || all[2].RankColor != models.DefaultRankColor {
		t.Errorf("BLT rank = %v color = %q, want nil and default", all[2].Rank, all[2].RankColor)
	}

	filters := []struct {
		name string
		f    models.CompanyFilter
		want int
	}{
		{"sector", models.CompanyFilter{Sector: "Industrials"}, 2},
		{"rank", models.CompanyFilter{Rank: "1"}, 2},
		{"sector and rank", models.CompanyFilter{Sector: "Consumer", Rank: "1"}, 0},
		{"bad rank ignored", models.CompanyFilter{Rank: "x"}, 4},
		{"query on name and ticker", models.CompanyFilter{Query: "ACME"}, 2},
		{"query", models.CompanyFilter{Query: "motors"}, 1},
		{"query underscore literal", models.CompanyFilter{Query: "e_l"}, 1},
	}
	for _, tt := range filters {
		got, err := s.ListCompanies(ctx, tt.f)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: got %d companies, want %d", tt.name, len(got), tt.want)
		}
	}

	c, err := s.GetCompany(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetCompany: %v", err)
	}
	if c.Name != "Acme Motors" || c.PresentInIndia != "Yes" || *c.Rank != 1 {
		t.Errorf("GetCompany = %+v", c)
	}
	if _, err := s.GetCompany(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCompany(NOPE) err = %v, want ErrNotFound", err)
	}

	sectors, _ := s.Sectors(ctx)
	if want := []string{"Consumer", "Energy", "Industrials"}; !reflect.DeepEqual(sectors, want) {
		t.Errorf("Sectors = %v, want %v", sectors, want)
	}
	ranks, _ := s.Ranks(ctx)
	if want := []int{1, 2}; !reflect.DeepEqual(ranks, want) {
		t.Errorf("Ranks = %v, want %v", ranks, want)
	}

	updated, err := s.UpdateSectors(ctx, map[string]string{"BLT": "Utilities", "NOPE": "X"})
	if err != nil {
		t.Fatalf("UpdateSectors: %v", err)
	}
	if updated != 1 {
		t.Errorf("UpdateSectors changed %d rows, want 1", updated)
	}
	if c, _ := s.GetCompany(ctx, "BLT"); c.Sector != "Utilities" {
		t.Errorf("BLT sector = %q, want Utilities", c.Sector)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Companies != 4 || st.LastImport.IsZero() {
		t.Errorf("Stats = %+v", st)
	}

	dupes := append(sampleCompanies()[:2], models.Company{Name: "Zeta Foods Ltd", Ticker: "ZETA", Sector: "Consumer", Rank: intPtr(3)})
	n, err = s.ReplaceCompanies(ctx, dupes)
	if err != nil {
		t.Fatalf("ReplaceCompanies with duplicates: %v", err)
	}
	if n != 2 {
		t.Errorf("ReplaceCompanies with duplicates wrote %d, want 2", n)
	}
	got, _ := s.ListCompanies(ctx, models.CompanyFilter{})
	if len(got) != 2 || got[0].Ticker != "ZETA" || got[0].Name != "Zeta Foods Ltd" || *got[0].Rank != 3 {
		t.Errorf("duplicate ticker: got %+v, want ZETA first with its last row's data", got)
	}

	if _, err := s.ReplaceCompanies(ctx, sampleCompanies()[:1]); err != nil {
		t.Fatalf("ReplaceCompanies: %v", err)
	}
	if got, _ := s.ListCompanies(ctx, models.CompanyFilter{}); len(got) != 1 {
		t.Errorf("after replace got %d companies, want 1", len(got))
	}
}

func TestDedupeTickers(t *testing.T) {
	in := []models.Company{
		{Ticker: "A", Name: "first"},
		{Ticker: "B", Name: "b"},
		{Ticker: "A", Name: "last"},
	}
	got := dedupeTickers(in)
	if len(got) != 2 || got[0].Ticker != "A" || got[0].Name != "last" || got[1].Ticker != "B" {
		t.Errorf("dedupeTickers = %+v", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "radar.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestListQuery(t *testing.T) {
	query, args := listQuery(models.CompanyFilter{Sector: "Energy", Rank: "3", Query: "50%"}, dollarPlaceholder)
	for _, frag := range []string{"sector = $1", "expansion_rank = $2", "LIKE $3", "LIKE $4", "ORDER BY sort_order"} {
		if !strings.Contains(query, frag) {
			t.Errorf("query %q missing %q", query, frag)
		}
	}
	want := []interface{}{"Energy", 3, `%50\%%`, `%50\%%`}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}

	query, args = listQuery(models.CompanyFilter{Sector: "all"}, questionPlaceholder)
	if strings.Contains(query, "WHERE") || len(args) != 0 {
		t.Errorf("ALL filter produced %q %v", query, args)
	}
}
