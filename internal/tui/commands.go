package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
	"github.com/mauv0809/expansion-radar/internal/models"
)

const requestTimeout = 15 * time.Second

type filtersMsg struct {
	opts models.FilterOptions
	err  error
}

type listMsg struct {
	req       dashboard.ListRequest
	companies []models.Company
	err       error
}

type newsMsg struct {
	req   dashboard.NewsRequest
	items []models.NewsItem
	err   error
}

type searchTickMsg struct {
	tag uint64
}

func fetchFilters(src dashboard.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		opts, err := src.Filters(ctx)
		return filtersMsg{opts: opts, err: err}
	}
}

func fetchList(src dashboard.Source, req dashboard.ListRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		companies, err := src.Companies(ctx, req.Filter)
		return listMsg{req: req, companies: companies, err: err}
	}
}

func fetchNews(src dashboard.Source, req dashboard.NewsRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		items, err := src.News(ctx, req.Ticker)
		return newsMsg{req: req, items: items, err: err}
	}
}

func searchTick(delay time.Duration, tag uint64) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchTickMsg{tag: tag}
	})
}
