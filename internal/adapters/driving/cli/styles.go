package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// styles holds the lipgloss styles used for command summaries.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Path    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
}

func newStyles() *styles {
	return &styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")), // Purple
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4")), // Cyan
		Path: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086")),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A6E3A1")), // Green
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF")), // Yellow
	}
}
