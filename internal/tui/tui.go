// Package tui implements the root Bubble Tea model for zcontacts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcontacts/internal/account"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/geocode"
	"github.com/zarlcorp/zcontacts/internal/pipeline"
	"github.com/zarlcorp/zcontacts/internal/store"
)

var errVaultLocked = errors.New("vault is locked")

type viewID int

const (
	viewPassword viewID = iota
	viewLogin
	viewMenu
	viewList
	viewDetail
	viewForm
	viewDelete
	viewSettings
)

// accent colours the header, cursors and logo.
var accent = zstyle.Sapphire

// Deps holds the collaborators the interface needs once the vault is open.
type Deps struct {
	Postal      pipeline.AddressResolver
	NewGeocoder func(apiKey string) geocode.Geocoder

	// DefaultAPIKey is used when no geocoding key is saved in the vault.
	DefaultAPIKey string

	Logger *slog.Logger

	// OpenFS returns the filesystem holding the vault. Defaults to the OS
	// filesystem rooted at the data directory.
	OpenFS func() (zfilesystem.ReadWriteFileFS, error)

	// BcryptCost is passed to the account service. Zero means the default.
	BcryptCost int
}

// Model is the root TUI model.
type Model struct {
	version  string
	dataDir  string
	firstRun bool
	deps     Deps
	log      *slog.Logger

	vault    *store.Vault
	contacts *contact.Store
	accounts *account.Service
	pipe     *pipeline.Pipeline
	geo      geocode.Geocoder
	seq      *pipeline.Sequencer
	user     string

	active   viewID
	password passwordModel
	login    loginModel
	menu     menuModel
	list     listModel
	detail   detailModel
	form     formModel
	confirm  deleteModel
	settings settingsModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(version, dataDir string, firstRun bool, deps Deps) Model {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return Model{
		version:  version,
		dataDir:  dataDir,
		firstRun: firstRun,
		deps:     deps,
		log:      log,
		seq:      pipeline.NewSequencer(),
		active:   viewPassword,
		password: newPasswordModel(firstRun),
	}
}

func (m Model) Init() tea.Cmd {
	return m.password.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case passwordSubmitMsg:
		return m.openVault(msg.password)

	case loginSubmitMsg:
		return m.handleLogin(msg)

	case navigateMsg:
		return m.navigate(msg.view)

	case logoutMsg:
		m.log.Info("logged out", "user", m.user)
		m.user = ""
		return m.showLogin()

	case viewContactMsg:
		m.detail = newDetailModel(msg.contact, nil)
		m.active = viewDetail
		return m, nil

	case addContactMsg:
		m.form = newFormModel(nil, m.lookups())
		m.active = viewForm
		return m, m.form.Init()

	case editContactMsg:
		c := msg.contact
		m.form = newFormModel(&c, m.lookups())
		m.active = viewForm
		return m, m.form.Init()

	case saveContactMsg:
		return m.startSave(msg)

	case contactSavedMsg:
		return m.handleSaved(msg)

	case deleteStartMsg:
		m.confirm = newDeleteModel(msg.contact, m.active)
		m.active = viewDelete
		return m, nil

	case deleteContactMsg:
		return m.handleDelete(msg.id)

	case saveSettingsMsg:
		return m.handleSaveSettings(msg.settings)
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password, login and menu include the logo; render directly
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewLogin:
		return m.login.View()
	case viewMenu:
		return m.menu.View()
	}

	var content string
	switch m.active {
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	case viewForm:
		content = m.form.View()
	case viewDelete:
		content = m.confirm.View()
	case viewSettings:
		content = m.settings.View()
	}

	header := zstyle.RenderHeader("zcontacts", m.viewTitle(), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(m.helpFor())

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func (m Model) viewTitle() string {
	switch m.active {
	case viewList:
		return "Contacts"
	case viewDetail:
		return "Contact"
	case viewForm:
		if m.form.id != 0 {
			return "Edit Contact"
		}
		return "New Contact"
	case viewDelete:
		return "Delete"
	case viewSettings:
		return "Settings"
	}
	return ""
}

// helpFor returns keybinding pairs for the active view's footer.
func (m Model) helpFor() []zstyle.HelpPair {
	switch m.active {
	case viewList:
		if m.list.searching {
			return []zstyle.HelpPair{
				{Key: "enter", Desc: "done"},
				{Key: "esc", Desc: "clear"},
			}
		}
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "/", Desc: "search"},
			{Key: "a", Desc: "add"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy field"},
			{Key: "c", Desc: "copy all"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewForm:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "shift+tab", Desc: "prev"},
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	case viewDelete:
		return []zstyle.HelpPair{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
		}
	case viewSettings:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "back"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewLogin:
		m.login, cmd = m.login.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewForm:
		m.form, cmd = m.form.Update(msg)
	case viewDelete:
		m.confirm, cmd = m.confirm.Update(msg)
	case viewSettings:
		m.settings, cmd = m.settings.Update(msg)
	}

	return m, cmd
}

func (m Model) openFS() (zfilesystem.ReadWriteFileFS, error) {
	if m.deps.OpenFS != nil {
		return m.deps.OpenFS()
	}
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return zfilesystem.NewOSFileSystem(m.dataDir), nil
}

func (m Model) openVault(password string) (tea.Model, tea.Cmd) {
	fsys, err := m.openFS()
	if err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	v, err := store.Open(fsys, []byte(password))
	if err != nil {
		if errors.Is(err, store.ErrWrongPassword) {
			err = errors.New("wrong password")
		}
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	s, err := contact.Open(v.Contacts())
	if err != nil {
		v.Close()
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	m.vault = v
	m.contacts = s
	m.accounts = account.NewService(v.Accounts(), m.deps.BcryptCost)
	m.rebuildPipeline()
	m.log.Info("vault opened", "contacts", s.Len())

	return m.showLogin()
}

// rebuildPipeline picks the geocoder for the current settings.
func (m *Model) rebuildPipeline() {
	m.geo = nil
	if m.deps.NewGeocoder != nil {
		m.geo = m.deps.NewGeocoder(m.vault.GeocodeAPIKey(m.deps.DefaultAPIKey))
	}
	m.pipe = pipeline.New(m.contacts, m.deps.Postal, m.geo, m.log)
}

func (m Model) showLogin() (tea.Model, tea.Cmd) {
	hasUsers, err := m.accounts.HasUsers()
	m.login = newLoginModel(!hasUsers)
	if err != nil {
		m.login.errMsg = err.Error()
	}
	m.active = viewLogin
	return m, tea.Batch(m.login.Init(), tea.ClearScreen)
}

func (m Model) handleLogin(msg loginSubmitMsg) (tea.Model, tea.Cmd) {
	if m.accounts == nil {
		m.login, _ = newLoginModel(false).Update(loginErrMsg{err: errVaultLocked})
		return m, nil
	}

	var (
		u   account.User
		err error
	)
	if msg.register {
		u, err = m.accounts.Register(msg.username, msg.password, msg.confirm)
	} else {
		u, err = m.accounts.Login(msg.username, msg.password)
	}
	if err != nil {
		m.log.Warn("login failed", "user", msg.username, "register", msg.register, "err", err)
		m.login, _ = m.login.Update(loginErrMsg{err: err})
		return m, nil
	}

	m.user = u.Username
	m.log.Info("logged in", "user", u.Username)
	return m.navigate(viewMenu)
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		m.menu = newMenuModel(m.version, m.user, m.contacts.Len())
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewList:
		m.list = newListModel(m.contacts.Search)
		m.active = viewList
		return m, tea.ClearScreen

	case viewDetail:
		// refresh from the store; the contact may have been edited
		if c, err := m.contacts.Get(m.detail.contact.ID); err == nil {
			m.detail = newDetailModel(c, nil)
		}
		m.active = viewDetail
		return m, tea.ClearScreen

	case viewSettings:
		cfg := store.LoadConfig[store.GeocodeSettings](m.vault, store.GeocodeKey)
		m.settings = newSettingsModel(cfg, m.deps.DefaultAPIKey != "")
		m.active = viewSettings
		return m, tea.Batch(m.settings.Init(), tea.ClearScreen)
	}

	return m, nil
}

// lookups returns the form's view of the lookup clients.
func (m Model) lookups() formLookups {
	return formLookups{
		postal: m.deps.Postal,
		geo:    m.geo,
		seq:    m.seq,
		check:  m.contacts.CheckTaxID,
	}
}

func (m Model) startSave(msg saveContactMsg) (tea.Model, tea.Cmd) {
	m.form.saving = true
	pipe := m.pipe
	return m, func() tea.Msg {
		res, err := pipe.Save(context.Background(), msg.id, msg.prior, msg.draft)
		return contactSavedMsg{result: res, err: err}
	}
}

func (m Model) handleSaved(msg contactSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && !errors.Is(msg.err, contact.ErrPersistence) {
		m.form, _ = m.form.Update(msg)
		return m, clearFlashAfter()
	}

	m.detail = newDetailModel(msg.result.Contact, msg.result.Steps)
	m.detail.flash = "saved"
	if msg.result.HasErrors() {
		m.detail.flash = "saved with errors"
	}
	m.active = viewDetail
	return m, tea.Batch(tea.ClearScreen, clearFlashAfter())
}

func (m Model) handleDelete(id int64) (tea.Model, tea.Cmd) {
	flash := "deleted"
	if err := m.contacts.Remove(id); err != nil {
		m.log.Error("delete contact", "id", id, "err", err)
		flash = "delete: " + err.Error()
	}

	mm, cmd := m.navigate(viewList)
	m = mm.(Model)
	m.list.flash = flash
	return m, tea.Batch(cmd, clearFlashAfter())
}

func (m Model) handleSaveSettings(s store.GeocodeSettings) (tea.Model, tea.Cmd) {
	if err := store.SaveConfig(m.vault, store.GeocodeKey, s); err != nil {
		m.settings.flash = "save: " + err.Error()
		m.settings.flashOK = false
		return m, clearFlashAfter()
	}

	m.rebuildPipeline()
	m.settings, _ = m.settings.Update(settingsSavedMsg{})
	return m, clearFlashAfter()
}

// Close releases the vault. Safe to call if it was never opened.
func (m Model) Close() {
	if m.vault != nil {
		m.vault.Close()
	}
}
