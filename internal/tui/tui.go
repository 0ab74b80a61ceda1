// Package tui is the interactive terminal client: sign-in, the request form
// editor, and the live-updating request list for administrators.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"repdesk/internal/config"
)

// Run starts the interactive TUI and blocks until it exits.
func Run(cfg config.Config) error {
	applyColorProfilePreference()
	applyThemePreference()

	if cfg.DebugLogPath != "" {
		f, err := tea.LogToFile(cfg.DebugLogPath, "repdesk")
		if err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		} else {
			defer f.Close()
		}
	}

	p := tea.NewProgram(newAppModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
