package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the chat window until the user quits
func Run(m Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
