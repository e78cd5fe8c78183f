package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type loginField int

const (
	loginUsername loginField = iota
	loginPassword
	loginConfirm
	loginFieldCount
)

var loginLabels = [loginFieldCount]string{
	"username",
	"password",
	"confirm",
}

// loginSubmitMsg carries the credentials entered on the login screen.
type loginSubmitMsg struct {
	username string
	password string
	confirm  string
	register bool
}

// loginErrMsg reports a rejected login or registration.
type loginErrMsg struct {
	err error
}

// loginModel signs an operator in, or registers one. ctrl+r toggles
// between the two modes; with no registered users it starts in register.
type loginModel struct {
	inputs   [loginFieldCount]textinput.Model
	focus    loginField
	register bool
	errMsg   string
}

func newLoginModel(register bool) loginModel {
	m := loginModel{register: register}

	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 64
		ti.Width = 32
		ti.Placeholder = loginLabels[i]
		if loginField(i) != loginUsername {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		m.inputs[i] = ti
	}
	m.inputs[loginUsername].Focus()
	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) fields() loginField {
	if m.register {
		return loginFieldCount
	}
	return loginConfirm
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case msg.Type == tea.KeyCtrlR:
			m.register = !m.register
			m.errMsg = ""
			m.inputs[loginConfirm].SetValue("")
			return m.focusOn(loginUsername), nil
		case key.Matches(msg, zstyle.KeyTab), msg.Type == tea.KeyDown:
			return m.focusOn((m.focus + 1) % m.fields()), nil
		case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
			return m.focusOn((m.focus + m.fields() - 1) % m.fields()), nil
		case key.Matches(msg, zstyle.KeyEnter):
			return m.submit()
		}

	case loginErrMsg:
		m.errMsg = msg.err.Error()
		m.inputs[loginPassword].SetValue("")
		m.inputs[loginConfirm].SetValue("")
		return m.focusOn(loginPassword), nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) focusOn(f loginField) loginModel {
	m.inputs[m.focus].Blur()
	m.focus = f
	m.inputs[m.focus].Focus()
	return m
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	// enter advances until the last field is reached
	if m.focus < m.fields()-1 {
		return m.focusOn(m.focus + 1), nil
	}

	msg := loginSubmitMsg{
		username: m.inputs[loginUsername].Value(),
		password: m.inputs[loginPassword].Value(),
		register: m.register,
	}
	if m.register {
		msg.confirm = m.inputs[loginConfirm].Value()
	}
	m.errMsg = ""
	return m, func() tea.Msg { return msg }
}

func (m loginModel) View() string {
	title := "sign in"
	toggle := "ctrl+r register"
	if m.register {
		title = "register"
		toggle = "ctrl+r sign in"
	}

	s := fmt.Sprintf("\n%s\n\n  %s\n\n", logo(), zstyle.Subtitle.Render(title))
	for i := loginField(0); i < m.fields(); i++ {
		label := fmt.Sprintf("%-10s", loginLabels[i])
		if i == m.focus {
			label = zstyle.Highlight.Render(label)
		} else {
			label = zstyle.MutedText.Render(label)
		}
		s += "  " + label + " " + m.inputs[i].View() + "\n"
	}

	if m.errMsg != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg) + "\n"
	}

	s += "\n  " + zstyle.MutedText.Render("tab next  enter submit  "+toggle+"  ctrl+c quit") + "\n\n"
	return s
}
