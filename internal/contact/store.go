package contact

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// Store owns the ordered contact collection. Every successful mutation is
// followed by a full snapshot write to the repository.
type Store struct {
	mu       sync.Mutex
	repo     Repository
	contacts []Contact
	nextID   int64
}

// Open loads the collection from repo.
func Open(repo Repository) (*Store, error) {
	snap, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("open contacts: %w", err)
	}

	s := &Store{
		repo:     repo,
		contacts: slices.Clone(snap.Contacts),
		nextID:   snap.NextID,
	}

	// older snapshots may lack a counter; never hand out an id in use
	for _, c := range s.contacts {
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
	}
	if s.nextID < 1 {
		s.nextID = 1
	}

	return s, nil
}

// Add validates d and appends it as a new contact.
// A persistence failure returns the stored contact together with an error
// wrapping ErrPersistence.
func (s *Store) Add(d Draft) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d = Normalize(d)
	if err := Validate(d); err != nil {
		return Contact{}, fmt.Errorf("add contact: %w", err)
	}

	if s.indexOfTaxID(d.TaxID, 0) >= 0 {
		return Contact{}, fmt.Errorf("add contact: %w", ErrDuplicateTaxID)
	}

	c := d.toContact(s.nextID)
	s.nextID++
	s.contacts = append(s.contacts, c)

	if err := s.persist(); err != nil {
		return c, fmt.Errorf("add contact: %w", err)
	}
	return c, nil
}

// Update replaces every field of contact id with d, keeping its position.
func (s *Store) Update(id int64, d Draft) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Contact{}, fmt.Errorf("update contact %d: %w", id, ErrNotFound)
	}

	d = Normalize(d)
	if err := Validate(d); err != nil {
		return Contact{}, fmt.Errorf("update contact %d: %w", id, err)
	}

	if s.indexOfTaxID(d.TaxID, id) >= 0 {
		return Contact{}, fmt.Errorf("update contact %d: %w", id, ErrDuplicateTaxID)
	}

	c := d.toContact(id)
	s.contacts[i] = c

	if err := s.persist(); err != nil {
		return c, fmt.Errorf("update contact %d: %w", id, err)
	}
	return c, nil
}

// Remove deletes contact id. Removing an absent id is a no-op.
func (s *Store) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}

	s.contacts = slices.Delete(s.contacts, i, i+1)

	if err := s.persist(); err != nil {
		return fmt.Errorf("remove contact %d: %w", id, err)
	}
	return nil
}

// Get returns contact id.
func (s *Store) Get(id int64) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Contact{}, fmt.Errorf("get contact %d: %w", id, ErrNotFound)
	}
	return s.contacts[i], nil
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.contacts)
}

// Len returns the number of stored contacts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

// Search returns contacts whose full name contains term (ignoring case) or
// whose tax id contains term with CPF punctuation removed. An empty term
// matches everything.
func (s *Store) Search(term string) []Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	if term == "" {
		return slices.Clone(s.contacts)
	}

	lower := strings.ToLower(term)
	digits := taxid.Strip(term)
	var out []Contact
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.FullName), lower) || (digits != "" && strings.Contains(c.TaxID, digits)) {
			out = append(out, c)
		}
	}
	return out
}

// CheckTaxID classifies a tax id for a contact being edited. self is the id
// of that contact, or 0 for a new one.
func (s *Store) CheckTaxID(tax string, self int64) Verdict {
	tax = Normalize(Draft{TaxID: tax}).TaxID
	if err := Validate(Draft{FullName: "-", TaxID: tax}); err != nil {
		return VerdictInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfTaxID(tax, self) >= 0 {
		return VerdictDuplicate
	}
	return VerdictValid
}

// Snapshot returns the current collection as it would be persisted.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Persist writes the current collection to the repository.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		NextID:   s.nextID,
		Contacts: append([]Contact{}, s.contacts...),
	}
}

func (s *Store) persist() error {
	if err := s.repo.Save(s.snapshot()); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.contacts, func(c Contact) bool { return c.ID == id })
}

// indexOfTaxID finds a contact with tax, skipping the contact with id except.
func (s *Store) indexOfTaxID(tax string, except int64) int {
	return slices.IndexFunc(s.contacts, func(c Contact) bool {
		return c.TaxID == tax && c.ID != except
	})
}
