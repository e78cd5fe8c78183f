package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcontacts/internal/store"
)

// saveSettingsMsg requests saving the geocoding settings.
type saveSettingsMsg struct {
	settings store.GeocodeSettings
}

// settingsSavedMsg confirms the settings were written.
type settingsSavedMsg struct{}

// settingsModel edits the geocoding API key. An empty key selects
// Nominatim unless one is configured in the environment.
type settingsModel struct {
	apiKey  textinput.Model
	saved   store.GeocodeSettings
	envKey  bool
	flash   string
	flashOK bool
}

func newSettingsModel(cfg store.GeocodeSettings, envKey bool) settingsModel {
	ti := textinput.New()
	ti.Placeholder = "google geocoding api key"
	ti.CharLimit = 256
	ti.Width = 50
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.SetValue(cfg.APIKey)
	ti.Focus()

	return settingsModel{apiKey: ti, saved: cfg, envKey: envKey}
}

func (m settingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(msg, zstyle.KeyBack):
			return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
		case key.Matches(msg, zstyle.KeyEnter):
			s := store.GeocodeSettings{APIKey: strings.TrimSpace(m.apiKey.Value())}
			return m, func() tea.Msg { return saveSettingsMsg{settings: s} }
		}

	case settingsSavedMsg:
		m.saved = store.GeocodeSettings{APIKey: strings.TrimSpace(m.apiKey.Value())}
		m.flash = "saved"
		m.flashOK = true
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.apiKey, cmd = m.apiKey.Update(msg)
	return m, cmd
}

// provider names the geocoder the saved settings select.
func (m settingsModel) provider() string {
	if m.saved.Configured() {
		return "google (saved key)"
	}
	if m.envKey {
		return "google (environment key)"
	}
	return "nominatim"
}

func (m settingsModel) View() string {
	s := "\n  " + zstyle.Subtitle.Render("geocoding") + "\n\n"
	s += "  " + zstyle.MutedText.Render("api key ") + " " + m.apiKey.View() + "\n"
	s += "  " + zstyle.MutedText.Render("provider") + " " + m.provider() + "\n"
	s += "\n"

	switch {
	case m.flash != "" && m.flashOK:
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	case m.flash != "":
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	default:
		s += "\n"
	}

	s += "\n  " + zstyle.MutedText.Render("enter save  esc back") + "\n"
	return s
}
