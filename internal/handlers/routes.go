package handlers

import "github.com/labstack/echo/v4"

// Register mounts the dashboard routes on e. ih may be nil when no importer
// is configured.
func Register(e *echo.Echo, h *Handler, ih *IngestHandler) {
	e.GET("/health", h.Health)
	e.GET("/", h.Index)

	api := e.Group("/api")
	api.GET("/companies", h.APICompanies)
	api.GET("/news/:ticker", h.APINews)
	api.GET("/filters", h.APIFilters)

	ui := e.Group("/ui")
	ui.GET("/companies", h.UICompanies)
	ui.GET("/select/:ticker", h.UISelect)
	ui.GET("/news/:ticker", h.UINews)

	if ih != nil {
		admin := e.Group("/admin")
		admin.POST("/import", ih.Import)
		admin.GET("/import/status", ih.Status)
		admin.POST("/import/enrich", ih.Enrich)
	}
}
