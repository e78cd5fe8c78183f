package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type menuChoice int

const (
	menuBrowse menuChoice = iota
	menuAdd
	menuSettings
	menuLogout
	menuQuit
)

var menuItems = []string{
	"Browse contacts",
	"Add contact",
	"Settings",
	"Log out",
	"Quit",
}

// menuModel is the main menu view.
type menuModel struct {
	cursor   int
	version  string
	user     string
	contacts int
}

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

// logoutMsg returns to the login screen.
type logoutMsg struct{}

func newMenuModel(version, user string, contacts int) menuModel {
	return menuModel{version: version, user: user, contacts: contacts}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (menuModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, zstyle.KeyQuit):
		return m, tea.Quit
	case key.Matches(km, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, zstyle.KeyDown):
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case key.Matches(km, zstyle.KeyEnter):
		return m, m.selectItem()
	}
	return m, nil
}

func (m menuModel) selectItem() tea.Cmd {
	switch menuChoice(m.cursor) {
	case menuBrowse:
		return func() tea.Msg { return navigateMsg{view: viewList} }
	case menuAdd:
		return func() tea.Msg { return addContactMsg{} }
	case menuSettings:
		return func() tea.Msg { return navigateMsg{view: viewSettings} }
	case menuLogout:
		return func() tea.Msg { return logoutMsg{} }
	case menuQuit:
		return tea.Quit
	}
	return nil
}

func (m menuModel) View() string {
	title := zstyle.Title.Render("zcontacts")
	ver := zstyle.MutedText.Render(m.version)

	s := fmt.Sprintf("\n%s\n\n  %s %s\n", logo(), title, ver)
	s += "  " + zstyle.MutedText.Render(fmt.Sprintf("signed in as %s, %d contacts", m.user, m.contacts)) + "\n\n"

	for i, item := range menuItems {
		s += zstyle.RenderMenuItem(zstyle.MenuItem{Label: item, Active: i == m.cursor}, accent) + "\n"
	}

	s += "\n  " + zstyle.MutedText.Render("j/k navigate  enter select  q quit") + "\n\n"
	return s
}
