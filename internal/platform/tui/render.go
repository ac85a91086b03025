package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/avrobertson/flappyneat/internal/core"
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// RenderScreen converts a screen buffer to a framed string for display.
// The title is drawn above the play field and the hint line below it.
func RenderScreen(s *core.Screen, title, hint string) string {
	parts := []string{}
	if title != "" {
		parts = append(parts, titleStyle.Render(title))
	}
	parts = append(parts, frameStyle.Render(s.String()))
	if hint != "" {
		parts = append(parts, helpStyle.Render(hint))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
