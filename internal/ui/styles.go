package ui

import "github.com/charmbracelet/lipgloss"

// Styles is the chat palette
type Styles struct {
	User   lipgloss.Style
	Bot    lipgloss.Style
	Label  lipgloss.Style
	System lipgloss.Style
	Error  lipgloss.Style
	Prompt lipgloss.Style
	Hint   lipgloss.Style
}

// DefaultStyles returns the standard palette
func DefaultStyles() Styles {
	return Styles{
		User:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Bot:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Label:  lipgloss.NewStyle().Bold(true),
		System: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("196")),
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Hint:   lipgloss.NewStyle().Faint(true),
	}
}
