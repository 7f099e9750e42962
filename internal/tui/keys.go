package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add       key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	NextView  key.Binding
	All       key.Binding
	Active    key.Binding
	Completed key.Binding
	Quit      key.Binding

	Submit key.Binding
	Cancel key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		NextView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		All:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		Active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		Completed: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.NextView}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.NextView, k.All, k.Active, k.Completed}
}
