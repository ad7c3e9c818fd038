package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mauv0809/expansion-radar/internal/db"
	"github.com/mauv0809/expansion-radar/internal/ingest"
)

// IngestHandler handles the company import endpoints.
type IngestHandler struct {
	importer *ingest.Importer
	store    db.CompanyStore
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(importer *ingest.Importer, store db.CompanyStore) *IngestHandler {
	return &IngestHandler{
		importer: importer,
		store:    store,
	}
}

// IngestResponse is the JSON response for ingestion endpoints.
type IngestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

// Import handles POST /admin/import
// Replaces the stored companies with the configured sheet.
func (h *IngestHandler) Import(c echo.Context) error {
	if h.importer.Source() == "" {
		return c.JSON(http.StatusBadRequest, IngestResponse{
			Success: false,
			Message: "No companies source configured (set COMPANIES_SOURCE)",
		})
	}

	slog.Info("starting company import", "source", h.importer.Source())
	run, err := h.importer.Import(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, IngestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to import companies: %v", err),
			Elapsed: run.Elapsed.String(),
		})
	}

	return c.JSON(http.StatusOK, IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully imported %d companies", run.Count),
		Count:   run.Count,
		Elapsed: run.Elapsed.String(),
	})
}

// Enrich handles POST /admin/import/enrich
// Fills missing sectors from SHARADAR/TICKERS.
func (h *IngestHandler) Enrich(c echo.Context) error {
	start := time.Now()

	count, err := h.importer.Enrich(c.Request().Context())
	if errors.Is(err, ingest.ErrEnrichDisabled) {
		return c.JSON(http.StatusServiceUnavailable, IngestResponse{
			Success: false,
			Message: err.Error(),
		})
	}
	if err != nil {
		slog.Error("sector enrichment failed", "error", err)
		return c.JSON(http.StatusInternalServerError, IngestResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to enrich sectors: %v", err),
			Count:   count,
		})
	}

	elapsed := time.Since(start)
	slog.Info("sector enrichment complete", "count", count, "elapsed", elapsed)

	return c.JSON(http.StatusOK, IngestResponse{
		Success: true,
		Message: fmt.Sprintf("Updated sectors for %d companies", count),
		Count:   count,
		Elapsed: elapsed.String(),
	})
}

// Status handles GET /admin/import/status
func (h *IngestHandler) Status(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		slog.Error("loading store stats", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load stats"})
	}

	resp := map[string]interface{}{
		"source":    h.importer.Source(),
		"companies": stats.Companies,
	}
	if !stats.LastImport.IsZero() {
		resp["last_import"] = stats.LastImport.Format(time.RFC3339)
	}
	if run := h.importer.LastRun(); !run.Finished.IsZero() {
		last := map[string]interface{}{
			"finished": run.Finished.Format(time.RFC3339),
			"count":    run.Count,
			"elapsed":  run.Elapsed.String(),
		}
		if run.Err != nil {
			last["error"] = run.Err.Error()
		}
		resp["last_run"] = last
	}
	return c.JSON(http.StatusOK, resp)
}
