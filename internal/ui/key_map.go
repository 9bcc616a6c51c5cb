package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	prev      key.Binding
	next      key.Binding
	first     key.Binding
	last      key.Binding
	startBack key.Binding
	startFwd  key.Binding
	endBack   key.Binding
	endFwd    key.Binding
	clear     key.Binding
	reset     key.Binding
	create    key.Binding
	download  key.Binding
	logout    key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		first:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
		last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
		startBack: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "start -1d")),
		startFwd:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "start +1d")),
		endBack:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "end -1d")),
		endFwd:    key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "end +1d")),
		clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "all dates")),
		reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset dates")),
		create:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new customer")),
		download:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download CSV")),
		logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.create, k.download, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prev, k.next, k.first, k.last},
		{k.startBack, k.startFwd, k.endBack, k.endFwd},
		{k.clear, k.reset, k.create, k.download},
		{k.logout, k.help, k.quit},
	}
}

// formKeys are the bindings shared by the login and create forms.
type formKeys struct {
	next   key.Binding
	prev   key.Binding
	submit key.Binding
	toggle key.Binding
	back   key.Binding
	quit   key.Binding
}

func newFormKeys(toggleHelp string) formKeys {
	return formKeys{
		next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		toggle: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", toggleHelp)),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
