package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// flashMsg clears the flash line of the active view.
type flashMsg struct{}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}
