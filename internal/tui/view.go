package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mauv0809/expansion-radar/internal/dashboard"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	colHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	panelTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

type column struct {
	title string
	width int
}

var columns = []column{
	{"Company", 30},
	{"Ticker", 8},
	{"Sector", 24},
	{"Rank", 6},
	{"India", 6},
	{"TN", 4},
}

// headerLines is the height of everything above the table rows: title,
// filter bar, count label and column header, with two spacer lines.
const headerLines = 6

// View renders the dashboard.
func (m Model) View() string {
	title := titleStyle.Render("Expansion Radar")
	if m.loadingList {
		title += " " + m.spinner.View()
	}

	var header strings.Builder
	for _, c := range columns {
		header.WriteString(pad(c.title, c.width))
	}

	sections := []string{
		title,
		"",
		m.renderFilters(),
		"",
		labelStyle.Render(m.state.Table.Count),
		colHeaderStyle.Render(header.String()),
	}
	if m.table.Height > 0 {
		sections = append(sections, m.table.View())
	}
	if panels := m.renderPanels(); panels != "" {
		sections = append(sections, panels)
	}
	if m.status != "" {
		sections = append(sections, dimStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

// renderPanels lays the detail and news panels side by side.
func (m Model) renderPanels() string {
	detail := renderDetail(m.state.Detail)
	news := renderNews(m.state.News)
	if detail == "" && news == "" {
		return ""
	}
	width := m.width/2 - 2
	if width < 30 {
		width = 30
	}
	var panels []string
	if detail != "" {
		panels = append(panels, panelStyle.Width(width).Render(detail))
	}
	if news != "" {
		panels = append(panels, panelStyle.Width(width).Render(news))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func (m Model) renderFilters() string {
	search := m.search.View()
	if !m.searching && m.search.Value() == "" {
		search = dimStyle.Render("press / to search")
	}
	return fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Sector:"), valueStyle.Render(m.state.Filter.Sector),
		labelStyle.Render("Rank:"), valueStyle.Render(m.state.Filter.Rank),
		labelStyle.Render("Search:"), search)
}

// tableLines renders one line per company, or the load error.
func (m Model) tableLines() []string {
	table := m.state.Table
	if table.Error != "" {
		return []string{errorStyle.Render(table.Error)}
	}
	selected := m.state.Selected()
	lines := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		lines = append(lines, renderRow(row, i == selected))
	}
	return lines
}

// renderRow lays out one table row. The rank cell carries the row's rank
// color as its background.
func renderRow(row dashboard.Row, selected bool) string {
	base := lipgloss.NewStyle()
	if selected {
		base = selectedStyle
	}
	rank := lipgloss.NewStyle().
		Background(lipgloss.Color(row.RankColor)).
		Foreground(lipgloss.Color("0"))

	cells := []string{
		base.Render(pad(row.Name, columns[0].width)),
		base.Render(pad(row.Ticker, columns[1].width)),
		base.Render(pad(row.Sector, columns[2].width)),
		rank.Render(pad(row.Rank, columns[3].width-1)) + base.Render(" "),
		base.Render(pad(row.India, columns[4].width)),
		base.Render(pad(row.TN, columns[5].width)),
	}
	return strings.Join(cells, "")
}

func renderDetail(d dashboard.DetailView) string {
	if !d.Visible {
		return ""
	}
	var b strings.Builder
	b.WriteString(panelTitle.Render(fmt.Sprintf("%s (%s)", d.Name, d.Ticker)))
	b.WriteString("\n")
	fields := []struct{ label, value string }{
		{"Sector", d.Sector},
		{"Rank", d.Rank},
		{"India", d.India},
		{"TN", d.TN},
	}
	for _, f := range fields {
		b.WriteString(labelStyle.Render(f.label+": ") + f.value + "\n")
	}
	b.WriteString("\n")
	b.WriteString(d.About)
	return b.String()
}

func renderNews(p dashboard.NewsPanel) string {
	if !p.Visible() {
		return ""
	}
	var b strings.Builder
	b.WriteString(panelTitle.Render("News: " + p.Ticker))
	b.WriteString("\n")
	switch p.State {
	case dashboard.NewsPopulated:
		for _, row := range p.Rows {
			b.WriteString("• " + row.Title + "\n")
			meta := row.Source
			if row.Published != "" {
				if meta != "" {
					meta += " · "
				}
				meta += row.Published
			}
			if meta != "" {
				b.WriteString("  " + dimStyle.Render(meta) + "\n")
			}
			if row.URL != "" && row.URL != "#" {
				b.WriteString("  " + linkStyle.Render(row.URL) + "\n")
			}
		}
		b.WriteString("\n" + dimStyle.Render(p.SourceNote))
	case dashboard.NewsError:
		b.WriteString(errorStyle.Render(p.Placeholder))
	default:
		b.WriteString(dimStyle.Render(p.Placeholder))
	}
	return b.String()
}

// pad truncates or right-pads s to width cells.
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) >= width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
			r = r[:len(r)-1]
		}
		return string(r) + strings.Repeat(" ", width-lipgloss.Width(string(r)))
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}
