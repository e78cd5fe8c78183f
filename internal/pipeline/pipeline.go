// Package pipeline runs a contact save end to end: local validation, postal
// lookup, geocoding and the store mutation. Lookups are best-effort; each one
// is reported as a step and never blocks the save.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/geocode"
	"github.com/zarlcorp/zcontacts/internal/postal"
)

// AddressResolver looks up a complete postal code.
type AddressResolver interface {
	Lookup(ctx context.Context, code string) (postal.Address, error)
}

// StepStatus records the outcome of one enrichment or storage step.
type StepStatus struct {
	Description string
	Err         error
}

// Result summarizes a completed save.
type Result struct {
	Contact contact.Contact
	Steps   []StepStatus
}

// HasErrors returns true if any step failed.
func (r Result) HasErrors() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Summary returns a human-readable summary of the save.
func (r Result) Summary() string {
	var b strings.Builder

	if r.HasErrors() {
		fmt.Fprintf(&b, "saved %s (with errors)", r.Contact.FullName)
	} else {
		fmt.Fprintf(&b, "saved %s", r.Contact.FullName)
	}

	for _, s := range r.Steps {
		if s.Err != nil {
			fmt.Fprintf(&b, "\n- %s: %v", s.Description, s.Err)
		} else {
			fmt.Fprintf(&b, "\n- %s", s.Description)
		}
	}

	return b.String()
}

// Pipeline wires the store to the lookup services.
type Pipeline struct {
	store  *contact.Store
	postal AddressResolver
	geo    geocode.Geocoder
	log    *slog.Logger
}

// New creates a pipeline. postal and geo may be nil to skip that lookup.
func New(store *contact.Store, postal AddressResolver, geo geocode.Geocoder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{store: store, postal: postal, geo: geo, log: logger}
}

// Store returns the underlying contact store.
func (p *Pipeline) Store() *contact.Store {
	return p.store
}

// Create saves d as a new contact.
func (p *Pipeline) Create(ctx context.Context, d contact.Draft) (Result, error) {
	return p.Save(ctx, 0, contact.Draft{}, d)
}

// Edit replaces contact id with d, looking up only what changed since the
// stored record.
func (p *Pipeline) Edit(ctx context.Context, id int64, d contact.Draft) (Result, error) {
	cur, err := p.store.Get(id)
	if err != nil {
		return Result{}, fmt.Errorf("edit: %w", err)
	}
	return p.Save(ctx, id, cur.Draft(), d)
}

// Save validates d, enriches it relative to prior and writes it to the
// store. id 0 creates a new contact. prior holds the derived values the
// caller already has; lookups run only for inputs that differ from it.
//
// Validation and uniqueness failures return before any lookup. A
// persistence failure returns the saved result together with the error.
func (p *Pipeline) Save(ctx context.Context, id int64, prior, d contact.Draft) (Result, error) {
	d = contact.Normalize(d)
	if err := contact.Validate(d); err != nil {
		return Result{}, fmt.Errorf("save contact: %w", err)
	}

	if id != 0 {
		if _, err := p.store.Get(id); err != nil {
			return Result{}, fmt.Errorf("save contact: %w", err)
		}
	}

	if p.store.CheckTaxID(d.TaxID, id) == contact.VerdictDuplicate {
		return Result{}, fmt.Errorf("save contact: %w", contact.ErrDuplicateTaxID)
	}

	d, steps := p.Enrich(ctx, prior, d)

	var (
		c   contact.Contact
		err error
	)
	if id == 0 {
		c, err = p.store.Add(d)
	} else {
		c, err = p.store.Update(id, d)
	}

	switch {
	case err == nil:
	case errors.Is(err, contact.ErrPersistence):
		p.log.Error("persist contacts", "id", c.ID, "err", err)
		steps = append(steps, StepStatus{Description: "write contacts", Err: err})
		return Result{Contact: c, Steps: steps}, err
	default:
		return Result{}, err
	}

	p.log.Info("contact saved", "id", c.ID, "steps", len(steps))
	return Result{Contact: c, Steps: steps}, nil
}

// Enrich fills the derived fields of d. The postal lookup runs when the
// postal code is complete and differs from prior; geocoding runs when the
// resulting address differs from prior or no coordinates are known. A
// failed lookup keeps the values d already carries.
func (p *Pipeline) Enrich(ctx context.Context, prior, d contact.Draft) (contact.Draft, []StepStatus) {
	prior = contact.Normalize(prior)
	d = contact.Normalize(d)

	var steps []StepStatus

	if p.postal != nil && postal.Complete(d.PostalCode) && d.PostalCode != prior.PostalCode {
		addr, err := p.postal.Lookup(ctx, d.PostalCode)
		if err != nil {
			p.log.Warn("postal lookup", "code", d.PostalCode, "err", err)
			steps = append(steps, StepStatus{Description: "look up postal code " + d.PostalCode, Err: err})
		} else {
			d = ApplyAddress(d, addr)
			steps = append(steps, StepStatus{
				Description: fmt.Sprintf("resolved %s to %s", d.PostalCode, place(d)),
			})
		}
	}

	query := geocode.Query(d.StreetAddress, d.Locality, d.Region)
	unchanged := query == geocode.Query(prior.StreetAddress, prior.Locality, prior.Region)
	located := d.Latitude != 0 || d.Longitude != 0

	if p.geo != nil && query != "" && !(unchanged && located) {
		coords, err := p.geo.Geocode(ctx, query)
		if err != nil {
			p.log.Warn("geocode", "query", query, "err", err)
			steps = append(steps, StepStatus{Description: "geocode " + query, Err: err})
		} else {
			d = ApplyCoordinates(d, coords)
			steps = append(steps, StepStatus{Description: "located at " + coords.String()})
		}
	}

	return d, steps
}

// ApplyAddress overwrites the address fields of d with a postal lookup
// result. Region and locality are always set together.
func ApplyAddress(d contact.Draft, addr postal.Address) contact.Draft {
	if addr.Street != "" {
		d.StreetAddress = addr.Street
	}
	d.Region = addr.Region
	d.Locality = addr.Locality
	return d
}

// ApplyCoordinates sets the position of d.
func ApplyCoordinates(d contact.Draft, c geocode.Coordinates) contact.Draft {
	d.Latitude = c.Latitude
	d.Longitude = c.Longitude
	return d
}

func place(d contact.Draft) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.StreetAddress, d.Locality, d.Region} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
