package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/geocode"
	"github.com/zarlcorp/zcontacts/internal/pipeline"
	"github.com/zarlcorp/zcontacts/internal/postal"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

type formField int

const (
	fieldName formField = iota
	fieldTaxID
	fieldPhone
	fieldPostal
	fieldStreet
	fieldLocality
	fieldRegion
	fieldCount
)

var formLabels = [fieldCount]string{
	"name",
	"cpf",
	"phone",
	"cep",
	"street",
	"city",
	"state",
}

// formLookups is what the form needs to resolve addresses while typing.
type formLookups struct {
	postal pipeline.AddressResolver
	geo    geocode.Geocoder
	seq    *pipeline.Sequencer
	check  func(tax string, self int64) contact.Verdict
}

// saveContactMsg asks the root model to run the save pipeline.
type saveContactMsg struct {
	id    int64
	prior contact.Draft
	draft contact.Draft
}

// contactSavedMsg carries the pipeline outcome back to the root model.
type contactSavedMsg struct {
	result pipeline.Result
	err    error
}

// postalResultMsg is the answer to one postal lookup.
type postalResultMsg struct {
	ticket pipeline.Ticket
	code   string
	addr   postal.Address
	err    error
}

// geocodeResultMsg is the answer to one geocoding request.
type geocodeResultMsg struct {
	ticket pipeline.Ticket
	at     contact.Draft
	coords geocode.Coordinates
	err    error
}

// formModel edits a contact. A complete postal code is looked up as soon
// as it is typed and the resulting address is geocoded; only the answer
// to the most recent request of each kind is applied.
type formModel struct {
	id     int64
	inputs [fieldCount]textinput.Model
	focus  formField
	lk     formLookups

	// prior holds the values the lookups last resolved, so saving does
	// not repeat them.
	prior    contact.Draft
	lat, lng float64

	// derived locks city and state once a postal lookup filled them
	derived bool

	lastPostal    string
	postalPending bool
	geoPending    bool
	status        string
	statusErr     bool

	taxHint string
	flash   string
	saving  bool
}

func newFormModel(c *contact.Contact, lk formLookups) formModel {
	m := formModel{lk: lk}

	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		ti.Width = 40
		ti.Placeholder = formLabels[i]
		m.inputs[i] = ti
	}
	m.inputs[fieldTaxID].CharLimit = 14
	m.inputs[fieldTaxID].Placeholder = "000.000.000-00"
	m.inputs[fieldPostal].CharLimit = 9
	m.inputs[fieldPostal].Placeholder = "00000-000"
	m.inputs[fieldRegion].CharLimit = 2
	m.inputs[fieldRegion].Placeholder = "UF"

	if c != nil {
		m.id = c.ID
		m.prior = c.Draft()
		m.lat, m.lng = c.Latitude, c.Longitude
		m.inputs[fieldName].SetValue(c.FullName)
		m.inputs[fieldTaxID].SetValue(taxid.Format(c.TaxID))
		m.inputs[fieldPhone].SetValue(c.Phone)
		m.inputs[fieldPostal].SetValue(c.PostalCode)
		m.inputs[fieldStreet].SetValue(c.StreetAddress)
		m.inputs[fieldLocality].SetValue(c.Locality)
		m.inputs[fieldRegion].SetValue(c.Region)
		m.lastPostal = c.PostalCode
		m.derived = c.PostalCode != "" && c.Locality != ""
		m.taxHint = m.checkTaxID()
	}

	m.inputs[fieldName].Focus()
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case postalResultMsg:
		return m.applyPostal(msg)

	case geocodeResultMsg:
		return m.applyGeocode(msg), nil

	case contactSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.flash = msg.err.Error()
		}
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m formModel) handleKey(msg tea.KeyMsg) (formModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.saving {
		return m, nil
	}

	switch {
	case key.Matches(msg, zstyle.KeyBack):
		m.lk.seq.Invalidate(pipeline.GroupPostal)
		m.lk.seq.Invalidate(pipeline.GroupGeocode)
		if m.id != 0 {
			return m, func() tea.Msg { return navigateMsg{view: viewDetail} }
		}
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	case key.Matches(msg, zstyle.KeyTab), msg.Type == tea.KeyDown:
		return m.focusOn(m.step(1)), nil
	case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
		return m.focusOn(m.step(fieldCount - 1)), nil
	case key.Matches(msg, zstyle.KeyEnter):
		return m.submit()
	}

	if m.locked(m.focus) {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	m, lookup := m.sync()
	return m, tea.Batch(cmd, lookup)
}

// locked reports whether f holds a value the postal lookup owns.
func (m formModel) locked(f formField) bool {
	return m.derived && (f == fieldLocality || f == fieldRegion)
}

// step returns the next editable field delta positions away.
func (m formModel) step(delta formField) formField {
	f := m.focus
	for range fieldCount {
		f = (f + delta) % fieldCount
		if !m.locked(f) {
			return f
		}
	}
	return m.focus
}

func (m formModel) focusOn(f formField) formModel {
	m.inputs[m.focus].Blur()
	m.focus = f
	m.inputs[m.focus].Focus()
	return m
}

// sync reacts to edits: it refreshes the tax id hint and starts a postal
// lookup when the code changed.
func (m formModel) sync() (formModel, tea.Cmd) {
	m.taxHint = m.checkTaxID()

	code := m.inputs[fieldPostal].Value()
	if code == m.lastPostal {
		return m, nil
	}
	m.lastPostal = code
	if code == "" {
		m.derived = false
	}
	return m.postalChanged(postal.Normalize(code))
}

func (m formModel) checkTaxID() string {
	tax := taxid.Strip(m.inputs[fieldTaxID].Value())
	if len(tax) < taxid.Length || m.lk.check == nil {
		return ""
	}
	switch m.lk.check(tax, m.id) {
	case contact.VerdictInvalid:
		return "invalid cpf"
	case contact.VerdictDuplicate:
		return "cpf already registered"
	}
	return "valid"
}

func (m formModel) postalChanged(code string) (formModel, tea.Cmd) {
	// an incomplete code cancels whatever lookup is in flight
	if !postal.Complete(code) || m.lk.postal == nil || code == m.prior.PostalCode {
		m.lk.seq.Invalidate(pipeline.GroupPostal)
		m.postalPending = false
		return m, nil
	}

	t := m.lk.seq.Issue(pipeline.GroupPostal)
	m.postalPending = true
	m.setStatus("looking up "+code, false)
	return m, lookupPostalCmd(m.lk.postal, t, code)
}

func lookupPostalCmd(r pipeline.AddressResolver, t pipeline.Ticket, code string) tea.Cmd {
	return func() tea.Msg {
		addr, err := r.Lookup(context.Background(), code)
		return postalResultMsg{ticket: t, code: code, addr: addr, err: err}
	}
}

func (m formModel) applyPostal(msg postalResultMsg) (formModel, tea.Cmd) {
	if !m.lk.seq.Current(msg.ticket) {
		return m, nil
	}
	m.postalPending = false
	m.prior.PostalCode = msg.code

	if msg.err != nil {
		m.derived = false
		m.setStatus("cep "+msg.code+": "+msg.err.Error(), true)
		return m, nil
	}

	d := pipeline.ApplyAddress(m.draft(), msg.addr)
	m.inputs[fieldStreet].SetValue(d.StreetAddress)
	m.inputs[fieldLocality].SetValue(d.Locality)
	m.inputs[fieldRegion].SetValue(d.Region)
	m.derived = true
	if m.locked(m.focus) {
		m = m.focusOn(fieldStreet)
	}
	m.setStatus(fmt.Sprintf("cep %s: %s/%s", msg.code, d.Locality, d.Region), false)

	return m.startGeocode()
}

func (m formModel) startGeocode() (formModel, tea.Cmd) {
	d := m.draft()
	q := geocode.Query(d.StreetAddress, d.Locality, d.Region)
	if q == "" || m.lk.geo == nil {
		m.lk.seq.Invalidate(pipeline.GroupGeocode)
		m.geoPending = false
		return m, nil
	}

	t := m.lk.seq.Issue(pipeline.GroupGeocode)
	m.geoPending = true
	geo := m.lk.geo
	return m, func() tea.Msg {
		c, err := geo.Geocode(context.Background(), q)
		return geocodeResultMsg{ticket: t, at: d, coords: c, err: err}
	}
}

func (m formModel) applyGeocode(msg geocodeResultMsg) formModel {
	if !m.lk.seq.Current(msg.ticket) {
		return m
	}
	m.geoPending = false

	if msg.err != nil {
		m.setStatus("geocode: "+msg.err.Error(), true)
		return m
	}

	m.lat, m.lng = msg.coords.Latitude, msg.coords.Longitude
	m.prior.StreetAddress = msg.at.StreetAddress
	m.prior.Locality = msg.at.Locality
	m.prior.Region = msg.at.Region
	m.prior.Latitude, m.prior.Longitude = m.lat, m.lng
	m.setStatus(m.status+" at "+msg.coords.String(), false)
	return m
}

func (m *formModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// draft returns the form contents as a contact draft.
func (m formModel) draft() contact.Draft {
	return contact.Normalize(contact.Draft{
		FullName:      m.inputs[fieldName].Value(),
		TaxID:         m.inputs[fieldTaxID].Value(),
		Phone:         m.inputs[fieldPhone].Value(),
		PostalCode:    m.inputs[fieldPostal].Value(),
		StreetAddress: m.inputs[fieldStreet].Value(),
		Locality:      m.inputs[fieldLocality].Value(),
		Region:        m.inputs[fieldRegion].Value(),
		Latitude:      m.lat,
		Longitude:     m.lng,
	})
}

func (m formModel) submit() (formModel, tea.Cmd) {
	if m.postalPending || m.geoPending {
		m.flash = "address lookup in progress"
		return m, clearFlashAfter()
	}

	msg := saveContactMsg{id: m.id, prior: m.prior, draft: m.draft()}
	m.saving = true
	m.flash = ""
	return m, func() tea.Msg { return msg }
}

func (m formModel) View() string {
	s := "\n"

	for i := range fieldCount {
		label := fmt.Sprintf("%-8s", formLabels[i])
		if i == m.focus {
			label = zstyle.Highlight.Render(label)
		} else {
			label = zstyle.MutedText.Render(label)
		}
		line := "  " + label + " " + m.inputs[i].View()

		if i == fieldTaxID && m.taxHint != "" {
			style := zstyle.StatusOK
			if m.taxHint != "valid" {
				style = zstyle.StatusErr
			}
			line += " " + style.Render(m.taxHint)
		}
		if m.locked(i) {
			line += " " + zstyle.MutedText.Render("from cep")
		}
		if i == fieldPostal && m.postalPending {
			line += " " + zstyle.StatusWarn.Render("…")
		}
		s += line + "\n"
	}

	s += "\n"
	switch {
	case m.status != "" && m.statusErr:
		s += "  " + zstyle.StatusErr.Render(m.status) + "\n"
	case m.status != "":
		s += "  " + zstyle.MutedText.Render(m.status) + "\n"
	default:
		s += "\n"
	}

	switch {
	case m.saving:
		s += "  " + zstyle.StatusWarn.Render("saving…") + "\n"
	case m.flash != "":
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	default:
		s += "\n"
	}

	s += "\n  " + zstyle.MutedText.Render("tab next  shift+tab prev  enter save  esc cancel") + "\n"
	return s
}
