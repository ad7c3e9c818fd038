package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Search     key.Binding
	Leave      key.Binding
	NextSector key.Binding
	PrevSector key.Binding
	NextRank   key.Binding
	PrevRank   key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Search, k.NextSector, k.NextRank, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Reload},
		{k.Search, k.Leave},
		{k.NextSector, k.PrevSector, k.NextRank, k.PrevRank},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "prev company"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next company"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Leave: key.NewBinding(
		key.WithKeys("esc", "enter"),
		key.WithHelp("esc", "leave search"),
	),
	NextSector: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s/S", "sector"),
	),
	PrevSector: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "prev sector"),
	),
	NextRank: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r/R", "rank"),
	),
	PrevRank: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "prev rank"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
