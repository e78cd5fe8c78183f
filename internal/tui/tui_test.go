package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/geocode"
	"github.com/zarlcorp/zcontacts/internal/postal"
	"github.com/zarlcorp/zcontacts/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// helpers

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func specialKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func enterKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func escKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

var sePostal = postal.Address{
	PostalCode: "01001000",
	Street:     "Praça da Sé",
	District:   "Sé",
	Locality:   "São Paulo",
	Region:     "SP",
}

type fakePostal struct {
	addrs map[string]postal.Address
	calls []string
}

func newFakePostal() *fakePostal {
	return &fakePostal{addrs: map[string]postal.Address{
		"01001000": sePostal,
		"11111111": {PostalCode: "11111111", Street: "Rua Um", Locality: "Santos", Region: "SP"},
		"22222222": {PostalCode: "22222222", Street: "Rua Dois", Locality: "Rio de Janeiro", Region: "RJ"},
	}}
}

func (f *fakePostal) Lookup(_ context.Context, code string) (postal.Address, error) {
	f.calls = append(f.calls, code)
	addr, ok := f.addrs[postal.Normalize(code)]
	if !ok {
		return postal.Address{}, postal.ErrNotFound
	}
	return addr, nil
}

type fakeGeo struct {
	apiKey  string
	err     error
	queries []string
}

func (f *fakeGeo) Geocode(_ context.Context, q string) (geocode.Coordinates, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return geocode.Coordinates{}, f.err
	}
	return geocode.Coordinates{Latitude: -23.5503, Longitude: -46.6342}, nil
}

type testEnv struct {
	fs     *zfilesystem.MemFS
	postal *fakePostal
	geos   []*fakeGeo
}

func (e *testEnv) deps() Deps {
	return Deps{
		Postal: e.postal,
		NewGeocoder: func(apiKey string) geocode.Geocoder {
			g := &fakeGeo{apiKey: apiKey}
			e.geos = append(e.geos, g)
			return g
		},
		OpenFS:     func() (zfilesystem.ReadWriteFileFS, error) { return e.fs, nil },
		BcryptCost: bcrypt.MinCost,
	}
}

func (e *testEnv) lastGeo() *fakeGeo {
	return e.geos[len(e.geos)-1]
}

func newTestEnv() *testEnv {
	return &testEnv{fs: zfilesystem.NewMemFS(), postal: newFakePostal()}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

// signedIn opens a fresh vault and registers an operator.
func signedIn(t *testing.T, env *testEnv) Model {
	t.Helper()
	m := New("1.0.0", t.TempDir(), true, env.deps())
	t.Cleanup(func() { m.Close() })

	m, _ = update(t, m, passwordSubmitMsg{password: "vault-pass"})
	if m.active != viewLogin {
		t.Fatalf("active = %d after unlock, want login (err %q)", m.active, m.password.errMsg)
	}
	if !m.login.register {
		t.Fatal("empty vault should start in register mode")
	}

	m, _ = update(t, m, loginSubmitMsg{username: "ana", password: "s3cret", confirm: "s3cret", register: true})
	if m.active != viewMenu {
		t.Fatalf("active = %d after register, want menu (err %q)", m.active, m.login.errMsg)
	}
	return m
}

// vault tests

func TestOpenVaultWrongPassword(t *testing.T) {
	env := newTestEnv()
	first := signedIn(t, env)
	first.Close()

	m := New("1.0.0", t.TempDir(), false, env.deps())
	m, _ = update(t, m, passwordSubmitMsg{password: "nope"})

	if m.active != viewPassword {
		t.Fatalf("active = %d, want password", m.active)
	}
	if !strings.Contains(m.View(), "wrong password") {
		t.Errorf("view should report wrong password:\n%s", m.View())
	}
}

func TestOpenVaultFSError(t *testing.T) {
	deps := newTestEnv().deps()
	deps.OpenFS = func() (zfilesystem.ReadWriteFileFS, error) {
		return nil, errors.New("disk on fire")
	}

	m := New("1.0.0", t.TempDir(), true, deps)
	m, _ = update(t, m, passwordSubmitMsg{password: "x"})
	if m.password.errMsg != "disk on fire" {
		t.Errorf("errMsg = %q", m.password.errMsg)
	}
}

// login tests

func TestLoginExistingUser(t *testing.T) {
	env := newTestEnv()
	first := signedIn(t, env)
	first.Close()

	m := New("1.0.0", t.TempDir(), false, env.deps())
	t.Cleanup(func() { m.Close() })
	m, _ = update(t, m, passwordSubmitMsg{password: "vault-pass"})
	if m.login.register {
		t.Fatal("vault with users should start in sign-in mode")
	}

	m, _ = update(t, m, loginSubmitMsg{username: "ANA", password: "wrong"})
	if m.active != viewLogin || m.login.errMsg == "" {
		t.Fatalf("bad password: active = %d, err = %q", m.active, m.login.errMsg)
	}

	m, _ = update(t, m, loginSubmitMsg{username: "ANA", password: "s3cret"})
	if m.active != viewMenu {
		t.Fatalf("active = %d, want menu", m.active)
	}
	if m.user != "ana" {
		t.Errorf("user = %q", m.user)
	}
}

func TestLoginWithoutVault(t *testing.T) {
	m := New("1.0.0", t.TempDir(), false, newTestEnv().deps())

	m, _ = update(t, m, loginSubmitMsg{username: "ana", password: "s3cret"})
	if m.user != "" || m.active == viewMenu {
		t.Fatalf("signed in without a vault: active = %d, user = %q", m.active, m.user)
	}
	if m.login.errMsg != "vault is locked" {
		t.Errorf("err = %q", m.login.errMsg)
	}
}

func TestLogout(t *testing.T) {
	m := signedIn(t, newTestEnv())

	m, _ = update(t, m, logoutMsg{})
	if m.active != viewLogin || m.user != "" {
		t.Errorf("active = %d, user = %q", m.active, m.user)
	}
	if m.login.register {
		t.Error("logout should land on sign in")
	}
}

func TestMenuShowsUserAndCount(t *testing.T) {
	m := signedIn(t, newTestEnv())
	view := m.View()
	if !strings.Contains(view, "signed in as ana, 0 contacts") {
		t.Errorf("menu view:\n%s", view)
	}
}

// contact flow tests

func TestAddContactThroughForm(t *testing.T) {
	env := newTestEnv()
	m := signedIn(t, env)

	m, _ = update(t, m, addContactMsg{})
	if m.active != viewForm {
		t.Fatalf("active = %d, want form", m.active)
	}

	m.form.inputs[fieldName].SetValue("Ana Souza")
	m.form.inputs[fieldTaxID].SetValue("529.982.247-25")
	m.form.inputs[fieldPostal].SetValue("01001-000")
	var cmd tea.Cmd
	m.form, cmd = m.form.sync()
	if cmd == nil {
		t.Fatal("complete postal code should start a lookup")
	}

	// postal answer, then geocode answer
	m, cmd = update(t, m, cmd())
	if cmd == nil {
		t.Fatal("resolved address should start geocoding")
	}
	m, _ = update(t, m, cmd())

	if got := m.form.inputs[fieldLocality].Value(); got != "São Paulo" {
		t.Errorf("locality = %q", got)
	}

	m, cmd = update(t, m, enterKey())
	save, ok := cmd().(saveContactMsg)
	if !ok {
		t.Fatal("enter should request a save")
	}

	m, cmd = update(t, m, save)
	if !m.form.saving {
		t.Error("form should be marked saving")
	}
	m, _ = update(t, m, cmd())

	if m.active != viewDetail {
		t.Fatalf("active = %d, want detail (flash %q)", m.active, m.form.flash)
	}
	c := m.detail.contact
	if c.ID != 1 || c.Region != "SP" || c.StreetAddress != "Praça da Sé" || !c.HasCoordinates() {
		t.Errorf("saved contact = %+v", c)
	}
	if len(env.postal.calls) != 1 {
		t.Errorf("postal calls = %v, want one from the form only", env.postal.calls)
	}
	if n := len(env.lastGeo().queries); n != 1 {
		t.Errorf("geocode queries = %d, want 1", n)
	}
	if m.detail.flash != "saved" {
		t.Errorf("flash = %q", m.detail.flash)
	}
}

func TestSaveInvalidStaysOnForm(t *testing.T) {
	m := signedIn(t, newTestEnv())
	m, _ = update(t, m, addContactMsg{})

	m.form.inputs[fieldTaxID].SetValue("123")
	m, cmd := update(t, m, enterKey())
	m, cmd = update(t, m, cmd())
	m, _ = update(t, m, cmd())

	if m.active != viewForm {
		t.Fatalf("active = %d, want form", m.active)
	}
	if m.form.saving {
		t.Error("saving flag not cleared")
	}
	if m.form.flash == "" {
		t.Error("want the validation error in the flash line")
	}
	if m.contacts.Len() != 0 {
		t.Error("invalid contact was stored")
	}
}

func TestSaveWithGeocodeFailureShowsSteps(t *testing.T) {
	env := newTestEnv()
	m := signedIn(t, env)
	env.lastGeo().err = geocode.ErrServiceUnavailable

	m, _ = update(t, m, addContactMsg{})
	m.form.inputs[fieldName].SetValue("Ana")
	m.form.inputs[fieldTaxID].SetValue("52998224725")
	m.form.inputs[fieldStreet].SetValue("Rua Augusta")

	m, cmd := update(t, m, enterKey())
	m, cmd = update(t, m, cmd())
	m, _ = update(t, m, cmd())

	if m.active != viewDetail {
		t.Fatalf("active = %d, want detail", m.active)
	}
	if m.detail.flash != "saved with errors" {
		t.Errorf("flash = %q", m.detail.flash)
	}
	if !strings.Contains(m.View(), "geocode") {
		t.Errorf("detail should list the failed step:\n%s", m.View())
	}
}

func addContact(t *testing.T, m Model, name, tax string) Model {
	t.Helper()
	if _, err := m.pipe.Create(context.Background(), contact.Draft{FullName: name, TaxID: tax}); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return m
}

func TestListSearchAndView(t *testing.T) {
	m := signedIn(t, newTestEnv())
	m = addContact(t, m, "Ana Souza", "52998224725")
	m = addContact(t, m, "Bruno Lima", "11144477735")

	m, _ = update(t, m, navigateMsg{view: viewList})
	if len(m.list.contacts) != 2 {
		t.Fatalf("contacts = %d", len(m.list.contacts))
	}

	m, _ = update(t, m, keyMsg('/'))
	for _, r := range "bru" {
		m, _ = update(t, m, keyMsg(r))
	}
	if len(m.list.contacts) != 1 || m.list.contacts[0].FullName != "Bruno Lima" {
		t.Fatalf("filtered = %+v", m.list.contacts)
	}

	// enter leaves search mode, second enter opens the contact
	m, _ = update(t, m, enterKey())
	m, cmd := update(t, m, enterKey())
	m, _ = update(t, m, cmd())
	if m.active != viewDetail || m.detail.contact.FullName != "Bruno Lima" {
		t.Errorf("active = %d, contact = %+v", m.active, m.detail.contact)
	}
}

func TestListSearchEscClears(t *testing.T) {
	m := signedIn(t, newTestEnv())
	m = addContact(t, m, "Ana Souza", "52998224725")
	m, _ = update(t, m, navigateMsg{view: viewList})

	m, _ = update(t, m, keyMsg('/'))
	m, _ = update(t, m, keyMsg('z'))
	if len(m.list.contacts) != 0 {
		t.Fatal("want no match for z")
	}
	if !strings.Contains(m.View(), "no matching contacts") {
		t.Error("view should say no matching contacts")
	}

	m, _ = update(t, m, escKey())
	if m.list.searching || len(m.list.contacts) != 1 {
		t.Errorf("searching = %v, contacts = %d", m.list.searching, len(m.list.contacts))
	}
}

func TestDeleteFromList(t *testing.T) {
	m := signedIn(t, newTestEnv())
	m = addContact(t, m, "Ana Souza", "52998224725")
	m, _ = update(t, m, navigateMsg{view: viewList})

	m, cmd := update(t, m, keyMsg('d'))
	m, _ = update(t, m, cmd())
	if m.active != viewDelete {
		t.Fatalf("active = %d, want delete", m.active)
	}

	m, cmd = update(t, m, keyMsg('y'))
	m, _ = update(t, m, cmd())
	if m.active != viewList {
		t.Fatalf("active = %d, want list", m.active)
	}
	if len(m.list.contacts) != 0 || m.contacts.Len() != 0 {
		t.Error("contact not removed")
	}
	if m.list.flash != "deleted" {
		t.Errorf("flash = %q", m.list.flash)
	}
}

func TestDeleteCancelReturns(t *testing.T) {
	m := signedIn(t, newTestEnv())
	m = addContact(t, m, "Ana Souza", "52998224725")
	m, _ = update(t, m, viewContactMsg{contact: m.contacts.All()[0]})

	m, cmd := update(t, m, keyMsg('d'))
	m, _ = update(t, m, cmd())
	m, cmd = update(t, m, keyMsg('n'))
	m, _ = update(t, m, cmd())

	if m.active != viewDetail || m.contacts.Len() != 1 {
		t.Errorf("active = %d, contacts = %d", m.active, m.contacts.Len())
	}
}

func TestEditFromDetail(t *testing.T) {
	env := newTestEnv()
	m := signedIn(t, env)
	m = addContact(t, m, "Ana", "52998224725")
	m, _ = update(t, m, viewContactMsg{contact: m.contacts.All()[0]})

	m, cmd := update(t, m, keyMsg('e'))
	m, _ = update(t, m, cmd())
	if m.active != viewForm || m.form.id != 1 {
		t.Fatalf("active = %d, form id = %d", m.active, m.form.id)
	}

	m.form.inputs[fieldName].SetValue("Ana Souza")
	m, cmd = update(t, m, enterKey())
	m, cmd = update(t, m, cmd())
	m, _ = update(t, m, cmd())

	c, err := m.contacts.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if c.FullName != "Ana Souza" {
		t.Errorf("name = %q", c.FullName)
	}
	if m.contacts.Len() != 1 {
		t.Errorf("edit created a new contact")
	}
}

// settings tests

func TestSettingsSaveRebuildsGeocoder(t *testing.T) {
	env := newTestEnv()
	m := signedIn(t, env)

	m, _ = update(t, m, navigateMsg{view: viewSettings})
	if !strings.Contains(m.View(), "nominatim") {
		t.Errorf("settings view:\n%s", m.View())
	}

	m.settings.apiKey.SetValue(" key-123 ")
	m, cmd := update(t, m, enterKey())
	m, _ = update(t, m, cmd())

	if got := env.lastGeo().apiKey; got != "key-123" {
		t.Errorf("geocoder key = %q", got)
	}
	if got := store.LoadConfig[store.GeocodeSettings](m.vault, store.GeocodeKey); got.APIKey != "key-123" {
		t.Errorf("saved settings = %+v", got)
	}
	if !strings.Contains(m.View(), "google (saved key)") {
		t.Errorf("settings view after save:\n%s", m.View())
	}
}

func TestCloseWithoutVault(t *testing.T) {
	m := New("1.0.0", t.TempDir(), true, Deps{})
	m.Close()
}
