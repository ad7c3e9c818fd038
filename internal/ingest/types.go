package ingest

import (
	"time"
)

// Response is the raw API response from Nasdaq Data Link Tables API.
// The data is column-oriented: columns define the schema, data contains rows as arrays.
// CSV sheets are loaded into the same shape so both share one parser.
type Response struct {
	Datatable struct {
		Data    [][]interface{} `json:"data"`
		Columns []Column        `json:"columns"`
	} `json:"datatable"`
	Meta struct {
		NextCursorID *string `json:"next_cursor_id"`
	} `json:"meta"`
}

// Column describes a column in the response.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Column headers of the ranked companies sheet.
const (
	ColName    = "Name"
	ColTicker  = "Ticker"
	ColSector  = "BICS L1 Sect Nm"
	ColRank    = "Expansion_Rank"
	ColRemarks = "Remarks"
	ColIndia   = "Present in India (Yes/No)"
	ColTN      = "Present in TN (Yes/No)"
)

// TickerRow represents a row from SHARADAR/TICKERS table.
type TickerRow struct {
	Ticker      string
	Name        string
	Exchange    string
	Sector      string
	Industry    string
	IsDelisted  bool
	LastUpdated *time.Time
}
