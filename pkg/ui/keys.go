package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the explorer's key bindings
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Open     key.Binding
	Back     key.Binding
	Filter   key.Binding
	GoTo     key.Binding
	Refresh  key.Binding
	Copy     key.Binding
	CopyLink key.Binding
	Export   key.Binding
	Errors   key.Binding
	Clear    key.Binding
	KeyMode  key.Binding
	Help     key.Binding
	Close    key.Binding
	Quit     key.Binding
}

// NewKeyMap returns the bindings for standard or vim-style navigation.
// Vim mode adds j/k/h/l/G on top of the arrow keys.
func NewKeyMap(vim bool) KeyMap {
	km := KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup/ctrl+b", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn/ctrl+f", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "go to start"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "go to end"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "right"),
			key.WithHelp("enter", "open folder or file"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "b"),
			key.WithHelp("b/backspace", "back to ../"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter file names"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to link"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh (bypass cache)"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy download URL"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy dashboard page URL"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export listing / save file"),
		),
		Errors: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "recent errors"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear error history"),
		),
		KeyMode: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("f6", "toggle key mode (vim/standard)"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close prompt"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}

	if vim {
		km.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up"))
		km.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down"))
		km.Bottom = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "go to end"))
		km.Open = key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter/l", "open folder or file"))
		km.Back = key.NewBinding(key.WithKeys("backspace", "left", "b", "h"), key.WithHelp("b/h", "back to ../"))
	}
	return km
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Filter, k.Copy, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Open, k.Back, k.Filter, k.GoTo},
		{k.Refresh, k.Copy, k.CopyLink, k.Export, k.Errors, k.KeyMode},
		{k.Help, k.Close, k.Quit},
	}
}
