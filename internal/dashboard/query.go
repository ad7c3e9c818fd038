// Package dashboard holds the company dashboard's view logic independent of
// any UI runtime: building list requests, turning responses into table,
// detail and news view models, and keeping a single selected company with
// stale responses discarded.
package dashboard

import (
	"net/url"
	"strings"

	"github.com/mauv0809/expansion-radar/internal/models"
)

const (
	companiesPath = "/api/companies"
	newsPath      = "/api/news/"
	filtersPath   = "/api/filters"
)

// BuildQuery returns the list query for f. Parameters that are empty or the
// ALL sentinel are left out.
func BuildQuery(f models.CompanyFilter) url.Values {
	params := url.Values{}
	if !models.IsAll(f.Sector) {
		params.Set("sector", f.Sector)
	}
	if !models.IsAll(f.Rank) {
		params.Set("rank", strings.TrimSpace(f.Rank))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		params.Set("q", q)
	}
	return params
}

// CompaniesURL is the company listing path with its query string.
func CompaniesURL(f models.CompanyFilter) string {
	return companiesPath + "?" + BuildQuery(f).Encode()
}

// NewsURL is the news path for ticker, path-escaped.
func NewsURL(ticker string) string {
	return newsPath + url.PathEscape(ticker)
}

// ParseFilter reads filter values from a query string, the inverse of
// BuildQuery.
func ParseFilter(q url.Values) models.CompanyFilter {
	return models.CompanyFilter{
		Sector: q.Get("sector"),
		Rank:   q.Get("rank"),
		Query:  q.Get("q"),
	}
}
