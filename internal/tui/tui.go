package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"doneit-cli/internal/store"
)

func Run(dir string, db *store.DB, theme store.Theme, logger *log.Logger) error {
	lipgloss.SetColorProfile(termenv.ColorProfile())
	m := newAppModel(dir, db, theme, logger)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
