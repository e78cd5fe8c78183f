package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// deleteContactMsg removes a contact after confirmation.
type deleteContactMsg struct {
	id int64
}

// deleteModel asks for confirmation before a contact is removed.
type deleteModel struct {
	contact contact.Contact
	from    viewID
}

func newDeleteModel(c contact.Contact, from viewID) deleteModel {
	return deleteModel{contact: c, from: from}
}

func (m deleteModel) Update(msg tea.Msg) (deleteModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch km.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y":
		id := m.contact.ID
		return m, func() tea.Msg { return deleteContactMsg{id: id} }
	case "n", "esc":
		from := m.from
		return m, func() tea.Msg { return navigateMsg{view: from} }
	}
	return m, nil
}

func (m deleteModel) View() string {
	s := "\n  " + zstyle.StatusWarn.Render("delete this contact?") + "\n\n"
	s += fmt.Sprintf("    %s\n", m.contact.FullName)
	s += "    " + zstyle.MutedText.Render(taxid.Format(m.contact.TaxID)) + "\n"
	s += "\n  " + zstyle.MutedText.Render("y confirm  n cancel") + "\n"
	return s
}
