package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	PageSize  key.Binding
	Layout    key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Delete    key.Binding
	Bundle    key.Binding
	Edit      key.Binding
	Register  key.Binding
	Filter    key.Binding
	Search    key.Binding
	Chat      key.Binding
	Theme     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		NextPage:  key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
		PageSize:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
		Layout:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "grid/list")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Bundle:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bundle")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Register:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "register")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Chat:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "assistant")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Edit, k.Register, k.Bundle, k.Delete, k.Filter, k.Chat, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextPage, k.PrevPage, k.PageSize, k.Layout},
		{k.Select, k.SelectAll, k.Delete, k.Bundle},
		{k.Edit, k.Register, k.Filter, k.Search},
		{k.Chat, k.Theme, k.Quit},
	}
}
