package tui

import tea "github.com/charmbracelet/bubbletea"

// Run hosts the Bubble Tea program until the user quits or the shell
// closes its event channel.
func Run(opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
