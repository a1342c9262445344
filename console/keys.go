package console

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the list screen.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	prev    key.Binding
	next    key.Binding
	tab     key.Binding
	backTab key.Binding
	enter   key.Binding
	back    key.Binding
	search  key.Binding
	filter  key.Binding
	sortCol key.Binding
	sortDir key.Binding
	add     key.Binding
	edit    key.Binding
	toggle  key.Binding
	del     key.Binding
	special key.Binding
	send    key.Binding
	reload  key.Binding
	yes     key.Binding
	no      key.Binding
	save    key.Binding
	addRow  key.Binding
	delRow  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next table")),
		backTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev table")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		sortCol: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sort column")),
		sortDir: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "flip order")),
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		toggle:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle")),
		del:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		special: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "feature/advance")),
		send:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "send")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		addRow:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add row")),
		delRow:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove row")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.filter, k.add, k.edit, k.toggle, k.del, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prev, k.next, k.tab},
		{k.search, k.filter, k.sortCol, k.sortDir, k.reload},
		{k.enter, k.add, k.edit, k.toggle, k.del, k.special, k.send},
		{k.quit},
	}
}
