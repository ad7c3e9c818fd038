// Package tui is the terminal client for the expansion radar dashboard.
package tui

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
	"github.com/mauv0809/expansion-radar/internal/models"
)

// Model is the dashboard TUI model. The table, detail and news panels come
// from a dashboard.State which the update loop owns.
type Model struct {
	source dashboard.Source
	state  *dashboard.State

	search    textinput.Model
	searching bool
	debounce  dashboard.Debouncer
	delay     time.Duration

	sectors []string
	ranks   []string

	// table scrolls the company rows so the panels below stay on screen.
	table viewport.Model

	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	loadingList bool
	status      string
	width       int
	height      int
}

// New creates a Model reading from source.
func New(source dashboard.Source) Model {
	ti := textinput.New()
	ti.Placeholder = "Search by name or ticker..."
	ti.Prompt = ""
	ti.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	m := Model{
		source:  source,
		state:   dashboard.NewState(),
		search:  ti,
		delay:   dashboard.SearchDelay,
		sectors: []string{models.AllValues},
		ranks:   []string{models.AllValues},
		table:   viewport.New(120, 0),
		spinner: s,
		help:    help.New(),
		keys:    keys,
		width:   120,

		loadingList: true,
	}
	m.layout()
	return m
}

// Init loads the filter choices and the unfiltered list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchFilters(m.source), m.reload())
}

// reload issues a list load for the current filter.
func (m *Model) reload() tea.Cmd {
	m.loadingList = true
	return fetchList(m.source, m.state.BeginList())
}

// Update handles all messages and then lays the table out again.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case filtersMsg:
		if msg.err != nil {
			slog.Warn("loading filters", "error", msg.err)
			m.status = "Filters unavailable"
			return m, nil
		}
		m.sectors = append([]string{models.AllValues}, msg.opts.Sectors...)
		m.ranks = []string{models.AllValues}
		for _, r := range msg.opts.Ranks {
			m.ranks = append(m.ranks, strconv.Itoa(r))
		}
		return m, nil

	case listMsg:
		news, hasNews, ok := m.state.ApplyList(msg.req, msg.companies, msg.err)
		if !ok {
			return m, nil
		}
		m.loadingList = false
		if msg.err != nil {
			slog.Warn("loading companies", "error", msg.err)
		}
		if hasNews {
			return m, fetchNews(m.source, news)
		}
		return m, nil

	case newsMsg:
		if msg.err != nil {
			slog.Warn("loading news", "ticker", msg.req.Ticker, "error", msg.err)
		}
		m.state.ApplyNews(msg.req, msg.items, msg.err)
		return m, nil

	case searchTickMsg:
		if !m.debounce.Fire(msg.tag) {
			return m, nil
		}
		q := strings.TrimSpace(m.search.Value())
		if q == m.state.Filter.Query {
			return m, nil
		}
		m.state.Filter.Query = q
		cmd := m.reload()
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Leave):
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	tag := m.debounce.Touch()
	return m, tea.Batch(cmd, searchTick(m.delay, tag))
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		return m.move(-1)

	case key.Matches(msg, m.keys.Down):
		return m.move(1)

	case key.Matches(msg, m.keys.NextSector):
		m.state.Filter.Sector = cycle(m.sectors, m.state.Filter.Sector, 1)
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.PrevSector):
		m.state.Filter.Sector = cycle(m.sectors, m.state.Filter.Sector, -1)
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.NextRank):
		m.state.Filter.Rank = cycle(m.ranks, m.state.Filter.Rank, 1)
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.PrevRank):
		m.state.Filter.Rank = cycle(m.ranks, m.state.Filter.Rank, -1)
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		cmd := m.reload()
		return m, cmd
	}
	return m, nil
}

// move shifts the selection by delta. Each change issues one news load.
func (m Model) move(delta int) (Model, tea.Cmd) {
	next := m.state.Selected() + delta
	if m.state.Len() == 0 || next < 0 || next >= m.state.Len() {
		return m, nil
	}
	req, ok := m.state.Select(next)
	if !ok {
		return m, nil
	}
	return m, fetchNews(m.source, req)
}

// minTableRows is the table height kept even when the panels need more room.
const minTableRows = 3

// layout fits the table viewport between the filter bar and the panels and
// scrolls it so the selected row is visible. Without a known terminal height
// every row is shown.
func (m *Model) layout() {
	lines := m.tableLines()
	height := len(lines)
	if m.height > 0 {
		free := m.height - headerLines - lipgloss.Height(m.help.View(m.keys))
		if panels := m.renderPanels(); panels != "" {
			free -= lipgloss.Height(panels)
		}
		if m.status != "" {
			free--
		}
		height = min(len(lines), max(free, minTableRows))
	}

	m.table.Width = m.width
	m.table.Height = height
	m.table.SetContent(strings.Join(lines, "\n"))
	m.table.SetYOffset(m.table.YOffset)
	m.ensureVisible()
}

// ensureVisible scrolls the table so the selected row is on screen.
func (m *Model) ensureVisible() {
	line := m.state.Selected()
	if line < 0 || m.state.Table.Error != "" {
		return
	}
	top, height := m.table.YOffset, m.table.Height
	if line < top {
		m.table.SetYOffset(line)
	} else if line >= top+height {
		m.table.SetYOffset(line - height + 1)
	}
}

// cycle returns the option after (or before) current, wrapping around.
// An unknown current value starts from the first option.
func cycle(options []string, current string, step int) string {
	if len(options) == 0 {
		return models.AllValues
	}
	idx := 0
	for i, o := range options {
		if o == current || (models.IsAll(current) && o == models.AllValues) {
			idx = i
			break
		}
	}
	idx = (idx + step + len(options)) % len(options)
	return options[idx]
}
