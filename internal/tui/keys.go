// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	FineLeft  key.Binding
	FineRight key.Binding
	Reset     key.Binding
	Enter     key.Binding
	Back      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	Left:      key.NewBinding(key.WithKeys("left", "h")),
	Right:     key.NewBinding(key.WithKeys("right", "l")),
	FineLeft:  key.NewBinding(key.WithKeys("shift+left", "H")),
	FineRight: key.NewBinding(key.WithKeys("shift+right", "L")),
	Reset:     key.NewBinding(key.WithKeys("r")),
	Enter:     key.NewBinding(key.WithKeys("enter")),
	Back:      key.NewBinding(key.WithKeys("esc")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
