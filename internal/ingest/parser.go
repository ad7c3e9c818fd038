package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mauv0809/expansion-radar/internal/models"
	"github.com/shopspring/decimal"
)

// buildColumnIndex creates a map from column name to array index.
func buildColumnIndex(columns []Column) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, col := range columns {
		idx[col.Name] = i
	}
	return idx
}

// getString safely extracts a string from row data.
func getString(row []interface{}, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%v", row[i])
}

// getBool safely extracts a boolean from row data.
func getBool(row []interface{}, idx map[string]int, col string) bool {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return false
	}
	switch v := row[i].(type) {
	case bool:
		return v
	case string:
		return v == "Y" || v == "true" || v == "1"
	case float64:
		return v != 0
	}
	return false
}

// getDecimal safely extracts a decimal from row data.
func getDecimal(row []interface{}, idx map[string]int, col string) *decimal.Decimal {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return nil
	}
	switch v := row[i].(type) {
	case float64:
		d := decimal.NewFromFloat(v)
		return &d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &d
	}
	return nil
}

// getRank extracts an integral rank. Spreadsheet exports often write
// integers as "2.0"; anything with a fractional part is treated as missing.
func getRank(row []interface{}, idx map[string]int, col string) *int {
	d := getDecimal(row, idx, col)
	if d == nil || !d.Equal(d.Truncate(0)) {
		return nil
	}
	n := int(d.IntPart())
	return &n
}

// getTime safely extracts a time.Time from row data (expects YYYY-MM-DD format).
func getTime(row []interface{}, idx map[string]int, col string) *time.Time {
	i, ok := idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return nil
	}
	if s, ok := row[i].(string); ok && s != "" {
		formats := []string{
			"2006-01-02",
			"2006-01-02T15:04:05.000Z",
			"2006-01-02 15:04:05",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

// ParseTickers parses a SHARADAR/TICKERS response into typed rows.
func ParseTickers(resp *Response) ([]TickerRow, error) {
	idx := buildColumnIndex(resp.Datatable.Columns)
	rows := make([]TickerRow, 0, len(resp.Datatable.Data))

	for _, row := range resp.Datatable.Data {
		tr := TickerRow{
			Ticker:      getString(row, idx, "ticker"),
			Name:        getString(row, idx, "name"),
			Exchange:    getString(row, idx, "exchange"),
			Sector:      getString(row, idx, "sector"),
			Industry:    getString(row, idx, "industry"),
			IsDelisted:  getBool(row, idx, "isdelisted"),
			LastUpdated: getTime(row, idx, "lastupdated"),
		}
		if tr.Ticker != "" {
			rows = append(rows, tr)
		}
	}

	return rows, nil
}

// ParseSheet turns the ranked companies sheet into companies, keeping sheet
// order. Rows without a name or ticker are dropped.
func ParseSheet(resp *Response) ([]models.Company, error) {
	idx := buildColumnIndex(resp.Datatable.Columns)
	for _, col := range []string{ColName, ColTicker} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("sheet is missing column %q", col)
		}
	}

	companies := make([]models.Company, 0, len(resp.Datatable.Data))
	for _, row := range resp.Datatable.Data {
		c := models.Company{
			Name:           getString(row, idx, ColName),
			Ticker:         getString(row, idx, ColTicker),
			Sector:         getString(row, idx, ColSector),
			Rank:           getRank(row, idx, ColRank),
			About:          getString(row, idx, ColRemarks),
			PresentInIndia: getString(row, idx, ColIndia),
			PresentInTN:    getString(row, idx, ColTN),
		}
		if c.Name == "" || c.Ticker == "" {
			continue
		}
		companies = append(companies, c.WithRankColor())
	}

	return companies, nil
}

// ReadCSV loads a CSV export into the column-oriented Response shape. Empty
// and NaN cells become nil so they parse as missing.
func ReadCSV(r io.Reader) (*Response, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty sheet")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	resp := &Response{}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		resp.Datatable.Columns = append(resp.Datatable.Columns, Column{Name: strings.TrimSpace(name), Type: "String"})
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		row := make([]interface{}, len(record))
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			row[i] = cell
		}
		resp.Datatable.Data = append(resp.Datatable.Data, row)
	}

	return resp, nil
}
