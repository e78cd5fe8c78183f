package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// passwordModel prompts for the vault passphrase. On first run the
// passphrase is entered twice.
type passwordModel struct {
	input      textinput.Model
	firstRun   bool
	confirming bool
	firstPass  string
	errMsg     string
}

// passwordSubmitMsg is sent when the user submits the passphrase.
type passwordSubmitMsg struct {
	password string
}

// passwordErrMsg is sent when the vault cannot be opened.
type passwordErrMsg struct {
	err error
}

func newPasswordModel(firstRun bool) passwordModel {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40
	ti.Focus()

	return passwordModel{
		input:    ti,
		firstRun: firstRun,
	}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (passwordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}

	case passwordErrMsg:
		m.errMsg = msg.err.Error()
		m.input.SetValue("")
		m.confirming = false
		m.firstPass = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) submit() (passwordModel, tea.Cmd) {
	val := m.input.Value()
	if val == "" {
		return m, nil
	}

	if m.firstRun && !m.confirming {
		m.firstPass = val
		m.confirming = true
		m.input.SetValue("")
		m.errMsg = ""
		return m, nil
	}

	if m.confirming && val != m.firstPass {
		m.errMsg = "passphrases do not match"
		m.confirming = false
		m.firstPass = ""
		m.input.SetValue("")
		return m, nil
	}

	m.errMsg = ""
	return m, func() tea.Msg { return passwordSubmitMsg{password: val} }
}

func (m passwordModel) prompt() string {
	switch {
	case m.confirming:
		return "confirm vault passphrase:"
	case m.firstRun:
		return "create vault passphrase:"
	}
	return "vault passphrase:"
}

func (m passwordModel) View() string {
	s := fmt.Sprintf("\n%s\n\n  %s\n  %s\n", logo(), m.prompt(), m.input.View())
	if m.errMsg != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg)
	}
	return s + "\n"
}

// logo renders the zarlcorp mark with the tool name underneath.
func logo() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	mark := indent.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)))
	return mark + "\n" + indent.Render(zstyle.MutedText.Render("zcontacts"))
}
