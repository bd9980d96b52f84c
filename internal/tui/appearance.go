package tui

import (
	"github.com/charmbracelet/lipgloss"

	"doneit-cli/internal/store"
)

type styles struct {
	text      lipgloss.Style
	faded     lipgloss.Style
	completed lipgloss.Style
	cursor    lipgloss.Style
	match     lipgloss.Style
	badge     lipgloss.Style

	activePane   lipgloss.Style
	inactivePane lipgloss.Style
	paneTitle    lipgloss.Style

	footer     lipgloss.Style
	minibuffer lipgloss.Style
}

func newStyles(t store.Theme) styles {
	text := lipgloss.Color(t.Text)
	dark := lipgloss.Color(t.TextDark)
	done := lipgloss.Color(t.TextCompleted)
	hl := lipgloss.Color(t.ItemHighlight)
	hlFg := lipgloss.Color(t.HighlightTextSecondary)
	active := lipgloss.Color(t.ActiveHighlight)
	inactive := lipgloss.Color(t.InactiveHighlight)

	return styles{
		text:      lipgloss.NewStyle().Foreground(text),
		faded:     lipgloss.NewStyle().Foreground(dark),
		completed: lipgloss.NewStyle().Foreground(done).Strikethrough(true),
		cursor:    lipgloss.NewStyle().Foreground(hlFg).Background(hl),
		match:     lipgloss.NewStyle().Foreground(hl).Bold(true),
		badge:     lipgloss.NewStyle().Foreground(dark),

		activePane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(active),
		inactivePane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(inactive),
		paneTitle: lipgloss.NewStyle().Bold(true).Foreground(text),

		footer:     lipgloss.NewStyle().Faint(true),
		minibuffer: lipgloss.NewStyle().Foreground(hl),
	}
}
