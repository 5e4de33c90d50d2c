package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/shell"
)

type keyMap struct {
	phase model.Phase
	alert bool

	Toggle  key.Binding
	Go      key.Binding
	Start   key.Binding
	Stop    key.Binding
	Reset   key.Binding
	Open    key.Binding
	Theme   key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "i understand")),
		Go:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "let's go")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "stop")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open feed")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// sync enables the bindings that are valid for the shell state. While a
// command is pending every command key is disabled.
func (k *keyMap) sync(v shell.View, pending bool) {
	k.phase = v.Phase
	k.alert = v.Alert != ""
	startup := v.Phase == model.PhaseStartup
	main := !startup && !k.alert

	k.Toggle.SetEnabled(startup)
	k.Go.SetEnabled(startup)
	k.Start.SetEnabled(main && !pending && !v.Running)
	k.Stop.SetEnabled(main && !pending && v.Running)
	k.Reset.SetEnabled(main && !pending)
	k.Open.SetEnabled(main && v.Running)
	k.Theme.SetEnabled(!k.alert)
	k.Dismiss.SetEnabled(k.alert)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	switch {
	case k.alert:
		return []key.Binding{k.Dismiss, k.Quit}
	case k.phase == model.PhaseStartup:
		return []key.Binding{k.Toggle, k.Go, k.Theme, k.Quit}
	default:
		return []key.Binding{k.Start, k.Stop, k.Reset, k.Open, k.Theme, k.Quit}
	}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
