package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// viewContactMsg opens the detail view for a contact.
type viewContactMsg struct {
	contact contact.Contact
}

// addContactMsg opens an empty contact form.
type addContactMsg struct{}

// deleteStartMsg asks for confirmation before deleting a contact.
type deleteStartMsg struct {
	contact contact.Contact
}

// listModel shows the contacts matching the search term, in insertion order.
type listModel struct {
	search    func(term string) []contact.Contact
	contacts  []contact.Contact
	query     textinput.Model
	searching bool
	cursor    int
	flash     string
}

func newListModel(search func(string) []contact.Contact) listModel {
	q := textinput.New()
	q.Placeholder = "name or cpf"
	q.Prompt = "/ "
	q.CharLimit = 64
	q.Width = 30

	return listModel{
		search:   search,
		contacts: search(""),
		query:    q,
	}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m listModel) handleSearchKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, zstyle.KeyBack):
		m.query.SetValue("")
		m.query.Blur()
		m.searching = false
		return m.refresh(), nil
	case key.Matches(msg, zstyle.KeyEnter):
		m.query.Blur()
		m.searching = false
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m.refresh(), cmd
}

// refresh reruns the search and keeps the cursor in range.
func (m listModel) refresh() listModel {
	m.contacts = m.search(m.query.Value())
	if m.cursor >= len(m.contacts) {
		m.cursor = max(len(m.contacts)-1, 0)
	}
	return m
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.query.Focus()
	case "a":
		return m, func() tea.Msg { return addContactMsg{} }
	}

	if len(m.contacts) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, zstyle.KeyDown):
		if m.cursor < len(m.contacts)-1 {
			m.cursor++
		}
	case key.Matches(msg, zstyle.KeyEnter):
		c := m.contacts[m.cursor]
		return m, func() tea.Msg { return viewContactMsg{contact: c} }
	case msg.String() == "d":
		c := m.contacts[m.cursor]
		return m, func() tea.Msg { return deleteStartMsg{contact: c} }
	}

	return m, nil
}

func (m listModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"
	if m.searching || m.query.Value() != "" {
		s += "  " + m.query.View() + "\n\n"
	}

	if len(m.contacts) == 0 {
		empty := "no saved contacts"
		if m.query.Value() != "" {
			empty = "no matching contacts"
		}
		s += "  " + zstyle.MutedText.Render(empty) + "\n"
	}

	for i, c := range m.contacts {
		line := fmt.Sprintf("%-24s %-14s %s",
			truncate(c.FullName, 24),
			taxid.Format(c.TaxID),
			truncate(placeOf(c), 30),
		)
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

// placeOf renders "city/UF", or the street when no city is known.
func placeOf(c contact.Contact) string {
	if c.Locality == "" {
		return c.StreetAddress
	}
	if c.Region == "" {
		return c.Locality
	}
	return c.Locality + "/" + c.Region
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
