package tuiapp

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Hazardous key.Binding
	Sort      key.Binding
	Select    key.Binding
	Compare   key.Binding
	More      key.Binding
	Retry     key.Binding
	Details   key.Binding
	Clear     key.Binding
	SignOut   key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Hazardous: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hazardous only")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next sort key")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Compare:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		More:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Details:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear selection")),
		SignOut:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Compare, k.More, k.Details, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Details, k.Back},
		{k.Hazardous, k.Sort, k.More, k.Retry},
		{k.Select, k.Compare, k.Clear},
		{k.SignOut, k.Help, k.Quit},
	}
}
