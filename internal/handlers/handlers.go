package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
	"github.com/mauv0809/expansion-radar/internal/db"
	"github.com/mauv0809/expansion-radar/internal/models"
	"github.com/mauv0809/expansion-radar/internal/views"
)

// NewsFinder returns recent news for a company.
type NewsFinder interface {
	ForCompany(ctx context.Context, c models.Company) ([]models.NewsItem, error)
}

type Handler struct {
	store db.CompanyStore
	news  NewsFinder
}

func New(store db.CompanyStore, news NewsFinder) *Handler {
	return &Handler{store: store, news: news}
}

// ErrorResponse is the JSON body of failed API calls.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Render writes a templ component as an HTML response.
func Render(c echo.Context, status int, t templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return t.Render(c.Request().Context(), c.Response())
}

// Health returns application health status
// @Summary Health check
// @Description Returns the health status of the application
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Index renders the dashboard page.
func (h *Handler) Index(c echo.Context) error {
	opts, err := h.filterOptions(c.Request().Context())
	if err != nil {
		slog.Error("loading filter options", "error", err)
		opts = models.FilterOptions{Sectors: []string{}, Ranks: []int{}}
	}
	return Render(c, http.StatusOK, views.Page(opts))
}

// APICompanies handles GET /api/companies
// Query params (all optional, "ALL" means no filter):
// - sector: exact sector name
// - rank: integer expansion rank
// - q: case-insensitive substring of name or ticker
func (h *Handler) APICompanies(c echo.Context) error {
	filter := dashboard.ParseFilter(c.QueryParams())
	companies, err := h.store.ListCompanies(c.Request().Context(), filter)
	if err != nil {
		slog.Error("listing companies", "filter", filter, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load companies"})
	}
	if companies == nil {
		companies = []models.Company{}
	}
	return c.JSON(http.StatusOK, companies)
}

// APINews handles GET /api/news/:ticker
func (h *Handler) APINews(c echo.Context) error {
	ctx := c.Request().Context()
	company, err := h.company(ctx, c.Param("ticker"))
	if errors.Is(err, db.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		slog.Error("loading company", "ticker", c.Param("ticker"), "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load company"})
	}

	items, err := h.news.ForCompany(ctx, company)
	if err != nil {
		slog.Error("loading news", "ticker", company.Ticker, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to load news"})
	}
	return c.JSON(http.StatusOK, items)
}

// APIFilters handles GET /api/filters
// Returns the sectors and ranks present in the store, sorted ascending.
func (h *Handler) APIFilters(c echo.Context) error {
	opts, err := h.filterOptions(c.Request().Context())
	if err != nil {
		slog.Error("loading filter options", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load filters"})
	}
	return c.JSON(http.StatusOK, opts)
}

// UICompanies renders the table partial for the filter form, with the first
// company selected and its news loading.
func (h *Handler) UICompanies(c echo.Context) error {
	st := dashboard.NewState()
	st.Filter = dashboard.ParseFilter(c.QueryParams())
	req := st.BeginList()

	companies, err := h.store.ListCompanies(c.Request().Context(), req.Filter)
	if err != nil {
		slog.Error("listing companies", "filter", req.Filter, "error", err)
	}
	st.ApplyList(req, companies, err)
	return Render(c, http.StatusOK, views.Dashboard(st))
}

// UISelect renders the detail panel for a clicked row and starts its news load.
func (h *Handler) UISelect(c echo.Context) error {
	company, err := h.company(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			slog.Error("loading company", "ticker", c.Param("ticker"), "error", err)
		}
		return Render(c, http.StatusOK, views.Selection(dashboard.DetailView{}, dashboard.NewsPanel{}))
	}
	return Render(c, http.StatusOK, views.Selection(dashboard.RenderDetail(company), dashboard.LoadingNews(company.Ticker)))
}

// UINews renders the settled news panel for a ticker.
func (h *Handler) UINews(c echo.Context) error {
	ctx := c.Request().Context()
	ticker := c.Param("ticker")

	var items []models.NewsItem
	company, err := h.company(ctx, ticker)
	if err == nil {
		ticker = company.Ticker
		items, err = h.news.ForCompany(ctx, company)
	}
	if err != nil {
		slog.Warn("loading news", "ticker", ticker, "error", err)
	}
	return Render(c, http.StatusOK, views.News(dashboard.RenderNews(ticker, items, err), false))
}

// company looks up a ticker taken from a path parameter.
func (h *Handler) company(ctx context.Context, param string) (models.Company, error) {
	ticker, err := url.PathUnescape(param)
	if err != nil {
		ticker = param
	}
	return h.store.GetCompany(ctx, ticker)
}

func (h *Handler) filterOptions(ctx context.Context) (models.FilterOptions, error) {
	sectors, err := h.store.Sectors(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	ranks, err := h.store.Ranks(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	if sectors == nil {
		sectors = []string{}
	}
	if ranks == nil {
		ranks = []int{}
	}
	return models.FilterOptions{Sectors: sectors, Ranks: ranks}, nil
}
