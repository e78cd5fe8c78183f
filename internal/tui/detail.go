package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/pipeline"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// editContactMsg opens the form for an existing contact.
type editContactMsg struct {
	contact contact.Contact
}

type contactField struct {
	label string
	value string
}

// detailModel shows every field of a contact. After a save it also lists
// the pipeline steps that ran.
type detailModel struct {
	contact contact.Contact
	fields  []contactField
	steps   []pipeline.StepStatus
	cursor  int
	flash   string
}

func newDetailModel(c contact.Contact, steps []pipeline.StepStatus) detailModel {
	return detailModel{
		contact: c,
		fields:  contactFields(c),
		steps:   steps,
	}
}

func contactFields(c contact.Contact) []contactField {
	fields := []contactField{
		{"name", c.FullName},
		{"cpf", taxid.Format(c.TaxID)},
		{"phone", c.Phone},
		{"cep", c.PostalCode},
		{"street", c.StreetAddress},
		{"city", c.Locality},
		{"state", c.Region},
	}
	if c.HasCoordinates() {
		fields = append(fields,
			contactField{"location", fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)},
			contactField{"map", mapURL(c.Latitude, c.Longitude)},
		)
	}
	return fields
}

// mapURL links to the position on OpenStreetMap.
func mapURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=17/%.6f/%.6f", lat, lng, lat, lng)
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	switch {
	case key.Matches(msg, zstyle.KeyQuit):
		return m, tea.Quit
	case key.Matches(msg, zstyle.KeyBack):
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	case key.Matches(msg, zstyle.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, zstyle.KeyDown):
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, zstyle.KeyEnter):
		return m.copy(m.fields[m.cursor].value, "copied!")
	}

	c := m.contact
	switch msg.String() {
	case "c":
		return m.copy(m.allFieldsText(), "copied all!")
	case "e":
		return m, func() tea.Msg { return editContactMsg{contact: c} }
	case "d":
		return m, func() tea.Msg { return deleteStartMsg{contact: c} }
	}

	return m, nil
}

func (m detailModel) copy(text, done string) (detailModel, tea.Cmd) {
	if err := writeClipboard(text); err != nil {
		m.flash = "copy: " + err.Error()
	} else {
		m.flash = done
	}
	return m, clearFlashAfter()
}

func (m detailModel) allFieldsText() string {
	var b strings.Builder
	for _, f := range m.fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func (m detailModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n  " + zstyle.Subtitle.Render(m.contact.FullName) + "\n\n"

	for i, f := range m.fields {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-9s", f.label))
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + label + " " + f.value + "\n"
		} else {
			s += "    " + label + " " + f.value + "\n"
		}
	}

	if len(m.steps) > 0 {
		s += "\n"
		for _, st := range m.steps {
			if st.Err != nil {
				s += "  " + zstyle.StatusErr.Render("✗ "+st.Description+": "+st.Err.Error()) + "\n"
			} else {
				s += "  " + zstyle.StatusOK.Render("✓ "+st.Description) + "\n"
			}
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
