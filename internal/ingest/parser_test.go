package ingest

import (
	"strings"
	"testing"
)

const sampleSheet = "\ufeffName,Ticker,BICS L1 Sect Nm,Expansion_Rank,Remarks,Present in India (Yes/No),Present in TN (Yes/No),Extra\n" +
	"Acme Motors,ACME,Industrials,1.0,\"Builds engines, gears\",Yes,No,x\n" +
	"Bolt Energy,BLT,,nan,,No,,\n" +
	",NONAME,Energy,2,,,,\n" +
	"No Ticker Inc,,Energy,2,,,,\n" +
	"Half Rank,HALF,Energy,2.5,,,\n"

func TestReadCSVAndParseSheet(t *testing.T) {
	resp, err := ReadCSV(strings.NewReader(sampleSheet))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := resp.Datatable.Columns[0].Name; got != "Name" {
		t.Fatalf("first column = %q, want BOM stripped", got)
	}

	companies, err := ParseSheet(resp)
	if err != nil {
		t.Fatalf("ParseSheet: %v", err)
	}
	if len(companies) != 3 {
		t.Fatalf("got %d companies, want 3 (rows without name or ticker dropped)", len(companies))
	}

	acme := companies[0]
	if acme.Name != "Acme Motors" || acme.Ticker != "ACME" || acme.Sector != "Industrials" {
		t.Errorf("acme = %+v", acme)
	}
	if acme.Rank == nil || *acme.Rank != 1 {
		t.Errorf("acme rank = %v, want 1", acme.Rank)
	}
	if acme.RankColor != "#c6efce" {
		t.Errorf("acme rank color = %q", acme.RankColor)
	}
	if acme.About != "Builds engines, gears" || acme.PresentInIndia != "Yes" || acme.PresentInTN != "No" {
		t.Errorf("acme optional fields = %+v", acme)
	}

	bolt := companies[1]
	if bolt.Rank != nil || bolt.Sector != "" || bolt.About != "" || bolt.PresentInTN != "" {
		t.Errorf("bolt should have empty optional fields, got %+v", bolt)
	}
	if bolt.RankColor != "#ffffff" {
		t.Errorf("bolt rank color = %q, want #ffffff", bolt.RankColor)
	}

	if companies[2].Rank != nil {
		t.Errorf("fractional rank should be treated as missing, got %d", *companies[2].Rank)
	}
}

func TestParseSheetMissingColumn(t *testing.T) {
	resp, err := ReadCSV(strings.NewReader("Company,Symbol\nAcme,ACME\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if _, err := ParseSheet(resp); err == nil {
		t.Fatal("expected error for sheet without Name/Ticker columns")
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty sheet")
	}
}

func TestParseTickers(t *testing.T) {
	resp := &Response{}
	resp.Datatable.Columns = []Column{{Name: "ticker"}, {Name: "name"}, {Name: "sector"}, {Name: "isdelisted"}, {Name: "lastupdated"}}
	resp.Datatable.Data = [][]interface{}{
		{"ACME", "Acme Motors", "Industrials", "N", "2024-05-01"},
		{nil, "Ghost", "Energy", "Y", nil},
		{"OLD", "Old Co", "Utilities", "Y", nil},
	}

	rows, err := ParseTickers(resp)
	if err != nil {
		t.Fatalf("ParseTickers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Sector != "Industrials" || rows[0].IsDelisted || rows[0].LastUpdated == nil {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if !rows[1].IsDelisted {
		t.Errorf("row 1 should be delisted")
	}
}
