// Package contact holds the contact record, its validation rules and the
// ordered in-memory store that mirrors every mutation to a Repository.
package contact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// PostalCodeLength is the number of digits in a CEP.
const PostalCodeLength = 8

var (
	// ErrInvalidInput is returned when a draft fails local validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateTaxID is returned when another contact already has the tax id.
	ErrDuplicateTaxID = errors.New("tax id already registered")

	// ErrNotFound is returned when no contact has the requested id.
	ErrNotFound = errors.New("contact not found")

	// ErrPersistence wraps failures writing the durable mirror. The in-memory
	// mutation has already been applied when it is returned.
	ErrPersistence = errors.New("persist contacts")
)

// Contact is a stored contact record.
type Contact struct {
	ID            int64   `json:"id"`
	FullName      string  `json:"full_name"`
	TaxID         string  `json:"tax_id"`
	Phone         string  `json:"phone"`
	StreetAddress string  `json:"street_address"`
	PostalCode    string  `json:"postal_code"`
	Region        string  `json:"region"`
	Locality      string  `json:"locality"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// Draft carries the editable fields of a contact.
type Draft struct {
	FullName      string
	TaxID         string
	Phone         string
	StreetAddress string
	PostalCode    string
	Region        string
	Locality      string
	Latitude      float64
	Longitude     float64
}

// Draft returns the editable fields of c.
func (c Contact) Draft() Draft {
	return Draft{
		FullName:      c.FullName,
		TaxID:         c.TaxID,
		Phone:         c.Phone,
		StreetAddress: c.StreetAddress,
		PostalCode:    c.PostalCode,
		Region:        c.Region,
		Locality:      c.Locality,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
	}
}

// HasCoordinates reports whether geocoding has set a position.
func (c Contact) HasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

func (d Draft) toContact(id int64) Contact {
	return Contact{
		ID:            id,
		FullName:      d.FullName,
		TaxID:         d.TaxID,
		Phone:         d.Phone,
		StreetAddress: d.StreetAddress,
		PostalCode:    d.PostalCode,
		Region:        d.Region,
		Locality:      d.Locality,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
	}
}

// Normalize trims whitespace and strips the punctuation operators type into
// the tax id and postal code fields.
func Normalize(d Draft) Draft {
	d.FullName = strings.TrimSpace(d.FullName)
	d.TaxID = taxid.Strip(strings.TrimSpace(d.TaxID))
	d.Phone = strings.TrimSpace(d.Phone)
	d.StreetAddress = strings.TrimSpace(d.StreetAddress)
	d.PostalCode = NormalizePostalCode(d.PostalCode)
	d.Region = strings.TrimSpace(d.Region)
	d.Locality = strings.TrimSpace(d.Locality)
	return d
}

// NormalizePostalCode removes the dash and surrounding spaces from a CEP.
func NormalizePostalCode(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "-", "")
}

// ValidationError describes which field of a draft was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Validate checks a normalized draft without consulting the store.
func Validate(d Draft) error {
	if d.FullName == "" {
		return &ValidationError{Field: "full name", Message: "is required"}
	}

	if d.TaxID == "" {
		return &ValidationError{Field: "tax id", Message: "is required"}
	}

	if !taxid.IsValid(d.TaxID) {
		return &ValidationError{Field: "tax id", Message: "is not a valid cpf"}
	}

	if d.PostalCode != "" && !isPostalCode(d.PostalCode) {
		return &ValidationError{
			Field:   "postal code",
			Message: fmt.Sprintf("must be %d digits", PostalCodeLength),
		}
	}

	return nil
}

func isPostalCode(s string) bool {
	if len(s) != PostalCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Verdict is the outcome of checking a tax id against the store.
type Verdict int

const (
	VerdictValid Verdict = iota
	VerdictInvalid
	VerdictDuplicate
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	case VerdictDuplicate:
		return "duplicate"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}
