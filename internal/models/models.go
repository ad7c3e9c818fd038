package models

import (
	"strconv"
	"strings"
)

// AllValues is the filter sentinel meaning "no filter on this dimension".
const AllValues = "ALL"

// DefaultRankColor is used when a company has no usable rank.
const DefaultRankColor = "#ffffff"

// Company is one row of the ranked companies sheet as served by /api/companies.
type Company struct {
	Name           string `json:"company_name"`
	Ticker         string `json:"ticker"`
	Sector         string `json:"sector,omitempty"`
	Rank           *int   `json:"rank,omitempty"`
	RankColor      string `json:"rank_color,omitempty"`
	PresentInIndia string `json:"present_in_india,omitempty"`
	PresentInTN    string `json:"present_in_tn,omitempty"`
	About          string `json:"about,omitempty"`
}

// NewsItem is a single headline for a ticker.
type NewsItem struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source,omitempty"`
	Published string `json:"published,omitempty"`
}

// CompanyFilter holds the dashboard filter controls. Empty or ALL values
// mean no filtering on that dimension.
type CompanyFilter struct {
	Sector string `json:"sector"`
	Rank   string `json:"rank"`
	Query  string `json:"q"`
}

// FilterOptions lists the values offered by the sector and rank controls.
type FilterOptions struct {
	Sectors []string `json:"sectors"`
	Ranks   []int    `json:"ranks"`
}

// IsAll reports whether v leaves its dimension unfiltered.
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllValues)
}

// RankNumber parses the rank filter. ok is false for ALL, empty or
// non-integer values, which all disable rank filtering.
func (f CompanyFilter) RankNumber() (int, bool) {
	if IsAll(f.Rank) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.Rank))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Matches applies the filter to a single company. Stores without a query
// language use it directly.
func (f CompanyFilter) Matches(c Company) bool {
	if !IsAll(f.Sector) && c.Sector != f.Sector {
		return false
	}
	if rank, ok := f.RankNumber(); ok {
		if c.Rank == nil || *c.Rank != rank {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.Ticker), q) {
			return false
		}
	}
	return true
}

// RankColor maps an expansion rank to the legend colour of the source sheet.
func RankColor(rank *int) string {
	if rank == nil {
		return DefaultRankColor
	}
	switch *rank {
	case 1:
		return "#c6efce" // light green
	case 2:
		return "#ffeb9c" // light yellow
	case 3:
		return "#ffc7ce" // light red
	case 4:
		return "#bdd7ee" // light blue
	}
	return "#eeeeee"
}

// WithRankColor returns c with RankColor derived from its rank.
func (c Company) WithRankColor() Company {
	c.RankColor = RankColor(c.Rank)
	return c
}
