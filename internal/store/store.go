// Package store is the durable mirror: an encrypted zstore vault holding the
// contact snapshot, the credential list and settings envelopes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zcontacts/internal/account"
	"github.com/zarlcorp/zcontacts/internal/contact"
)

// collection names and the single key each snapshot lives under
const (
	contactsCollection = "contacts"
	contactsKey        = "all"
	accountsCollection = "accounts"
	accountsKey        = "users"
	configCollection   = "config"
)

// ErrWrongPassword is returned by Open when the passphrase does not unlock
// an existing vault.
var ErrWrongPassword = zstore.ErrWrongPassword

// Vault owns the open zstore and its collections.
type Vault struct {
	db       *zstore.Store
	contacts *zstore.Collection[contact.Snapshot]
	accounts *zstore.Collection[userList]
	configs  *zstore.Collection[configEnvelope]
}

// userList wraps the credential list so it is stored as one value.
type userList struct {
	Users []account.User `json:"users"`
}

// configEnvelope wraps a JSON-encoded config value so heterogeneous settings
// share one collection.
type configEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// Open opens or initializes the vault on fsys. The passphrase bytes are
// erased once the key has been derived.
func Open(fsys zfilesystem.ReadWriteFileFS, passphrase []byte) (*Vault, error) {
	defer zcrypto.Erase(passphrase)

	db, err := zstore.Open(fsys, passphrase)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	contacts, err := zstore.NewCollection[contact.Snapshot](db, contactsCollection)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open vault: %s collection: %w", contactsCollection, err)
	}

	accounts, err := zstore.NewCollection[userList](db, accountsCollection)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open vault: %s collection: %w", accountsCollection, err)
	}

	configs, err := zstore.NewCollection[configEnvelope](db, configCollection)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open vault: %s collection: %w", configCollection, err)
	}

	return &Vault{db: db, contacts: contacts, accounts: accounts, configs: configs}, nil
}

// Close locks the vault.
func (v *Vault) Close() error {
	if v == nil || v.db == nil {
		return nil
	}
	v.db.Close()
	v.db = nil
	return nil
}

// Contacts returns the contact snapshot repository.
func (v *Vault) Contacts() contact.Repository {
	return contactRepo{col: v.contacts}
}

// Accounts returns the credential list repository.
func (v *Vault) Accounts() account.Repository {
	return accountRepo{col: v.accounts}
}

type contactRepo struct {
	col *zstore.Collection[contact.Snapshot]
}

// Load returns the stored snapshot, or an empty one on first run.
func (r contactRepo) Load() (contact.Snapshot, error) {
	snap, err := r.col.Get(contactsKey)
	if errors.Is(err, zstore.ErrNotFound) {
		return contact.Snapshot{}, nil
	}
	if err != nil {
		return contact.Snapshot{}, fmt.Errorf("load contacts: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot in one put.
func (r contactRepo) Save(s contact.Snapshot) error {
	if err := r.col.Put(contactsKey, s); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}

type accountRepo struct {
	col *zstore.Collection[userList]
}

func (r accountRepo) LoadUsers() ([]account.User, error) {
	list, err := r.col.Get(accountsKey)
	if errors.Is(err, zstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return list.Users, nil
}

func (r accountRepo) SaveUsers(users []account.User) error {
	if err := r.col.Put(accountsKey, userList{Users: users}); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

// LoadConfig reads a typed config from the envelope collection. A missing or
// unreadable entry yields the zero value.
func LoadConfig[T any](v *Vault, key string) T {
	var zero T
	if v == nil {
		return zero
	}

	env, err := v.configs.Get(key)
	if err != nil {
		return zero
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero
	}
	return out
}

// SaveConfig persists a typed config into the envelope collection.
func SaveConfig[T any](v *Vault, key string, val T) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("save config %s: marshal: %w", key, err)
	}

	if err := v.configs.Put(key, configEnvelope{Data: data}); err != nil {
		return fmt.Errorf("save config %s: %w", key, err)
	}
	return nil
}
