package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mauv0809/expansion-radar/internal/db"
	"github.com/mauv0809/expansion-radar/internal/models"
)

// ErrEnrichDisabled is returned by Enrich when no Nasdaq API key is configured.
var ErrEnrichDisabled = errors.New("sector enrichment disabled: NASDAQ_API_KEY not set")

// SheetSource reads the companies sheet.
type SheetSource interface {
	Read(ctx context.Context, source string) ([]models.Company, error)
}

// TickerSource looks up reference data for tickers.
type TickerSource interface {
	FetchTickers(ctx context.Context, tickers []string) ([]TickerRow, error)
}

// Importer loads the companies sheet into a store and optionally fills in
// missing sectors from Nasdaq Data Link.
type Importer struct {
	store   db.CompanyStore
	sheets  SheetSource
	tickers TickerSource
	source  string

	mu      sync.Mutex // one import at a time
	runMu   sync.Mutex
	lastRun Run
}

// Run describes the outcome of the most recent import.
type Run struct {
	Count    int
	Elapsed  time.Duration
	Finished time.Time
	Err      error
}

// NewImporter wires an importer. tickers may be nil to disable enrichment.
func NewImporter(store db.CompanyStore, sheets SheetSource, tickers TickerSource, source string) *Importer {
	return &Importer{
		store:   store,
		sheets:  sheets,
		tickers: tickers,
		source:  source,
	}
}

// Source returns the configured sheet location.
func (im *Importer) Source() string { return im.source }

// Import replaces the stored companies with the current sheet contents.
func (im *Importer) Import(ctx context.Context) (Run, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	start := time.Now()
	run, err := im.importLocked(ctx)
	run.Elapsed = time.Since(start)
	run.Finished = time.Now()
	run.Err = err
	im.runMu.Lock()
	im.lastRun = run
	im.runMu.Unlock()

	if err != nil {
		slog.Error("company import failed", "source", im.source, "error", err)
		return run, err
	}
	slog.Info("company import complete", "source", im.source, "count", run.Count, "elapsed", run.Elapsed)
	return run, nil
}

func (im *Importer) importLocked(ctx context.Context) (Run, error) {
	companies, err := im.sheets.Read(ctx, im.source)
	if err != nil {
		return Run{}, err
	}
	if len(companies) == 0 {
		return Run{}, fmt.Errorf("sheet %s has no companies with a name and ticker", im.source)
	}

	count, err := im.store.ReplaceCompanies(ctx, companies)
	if err != nil {
		return Run{}, fmt.Errorf("storing companies: %w", err)
	}
	return Run{Count: count}, nil
}

// LastRun returns the outcome of the most recent Import call.
func (im *Importer) LastRun() Run {
	im.runMu.Lock()
	defer im.runMu.Unlock()
	return im.lastRun
}

// Enrich looks up companies without a sector and stores the sector
// reported by SHARADAR/TICKERS. Returns the number of companies updated.
func (im *Importer) Enrich(ctx context.Context) (int, error) {
	if im.tickers == nil {
		return 0, ErrEnrichDisabled
	}

	companies, err := im.store.ListCompanies(ctx, models.CompanyFilter{})
	if err != nil {
		return 0, fmt.Errorf("listing companies: %w", err)
	}

	var missing []string
	for _, c := range companies {
		if c.Sector == "" {
			missing = append(missing, c.Ticker)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	rows, err := im.tickers.FetchTickers(ctx, missing)
	if err != nil {
		return 0, err
	}

	sectors := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Sector != "" {
			sectors[row.Ticker] = row.Sector
		}
	}

	count, err := im.store.UpdateSectors(ctx, sectors)
	if err != nil {
		return count, fmt.Errorf("storing sectors: %w", err)
	}
	slog.Info("sector enrichment complete", "missing", len(missing), "updated", count)
	return count, nil
}
