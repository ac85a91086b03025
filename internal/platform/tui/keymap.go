package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avrobertson/flappyneat/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game action. Returns the action
// (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return core.ActionQuit, true
	case " ", "up", "w":
		return core.ActionFlap, false
	}
	return core.ActionNone, false
}
