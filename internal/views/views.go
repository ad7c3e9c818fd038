// Package views holds the templ components for the browser dashboard. The
// components take the dashboard view models, so the browser and terminal
// front ends render the same state.
package views

//go:generate templ generate

import (
	"net/url"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
)

// Element ids the htmx partials swap into.
const (
	TableID  = "company-table"
	DetailID = "detail"
	NewsID   = "news"
)

// FilterTrigger lists the events that reload the table. submit covers Enter
// in the search box, which htmx then keeps from doing a full page load.
const FilterTrigger = "load, submit, change from:select, keyup changed delay:300ms from:#search"

func selectURL(ticker string) string {
	return "/ui/select/" + url.PathEscape(ticker)
}

func newsPanelURL(ticker string) string {
	return "/ui/news/" + url.PathEscape(ticker)
}

// newsMeta is the source and publish time line under a headline.
func newsMeta(row dashboard.NewsRow) string {
	switch {
	case row.Source != "" && row.Published != "":
		return row.Source + " · " + row.Published
	case row.Source != "":
		return row.Source
	}
	return row.Published
}
