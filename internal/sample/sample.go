// Package sample generates plausible fake contacts for trying zcontacts out.
package sample

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/zarlcorp/zcontacts/internal/contact"
	"github.com/zarlcorp/zcontacts/internal/taxid"
)

// Generator produces random contact drafts using crypto/rand.
type Generator struct{}

// New creates a generator.
func New() *Generator {
	return &Generator{}
}

// Draft returns a random contact with a valid CPF and an address in a
// Brazilian capital or large city. The postal code is left empty so saving
// geocodes the street rather than looking up a made-up CEP.
func (g *Generator) Draft() contact.Draft {
	c := cities[randIntn(len(cities))]
	return contact.Draft{
		FullName:      g.Name(),
		TaxID:         taxid.Generate(),
		Phone:         g.phone(c.ddd),
		StreetAddress: g.street(),
		Locality:      c.name,
		Region:        c.region,
	}
}

// Drafts returns n drafts with distinct tax ids.
func (g *Generator) Drafts(n int) []contact.Draft {
	seen := make(map[string]bool, n)
	out := make([]contact.Draft, 0, n)
	for len(out) < n {
		d := g.Draft()
		if seen[d.TaxID] {
			continue
		}
		seen[d.TaxID] = true
		out = append(out, d)
	}
	return out
}

// Name returns a first name followed by two family names.
func (g *Generator) Name() string {
	first := pick(firstNames)
	a, b := pick(lastNames), pick(lastNames)
	for a == b {
		b = pick(lastNames)
	}
	return first + " " + a + " " + b
}

// phone returns a mobile number in the given area code: (DD) 9XXXX-XXXX.
func (g *Generator) phone(ddd int) string {
	return fmt.Sprintf("(%02d) 9%04d-%04d", ddd, randIntn(10000), randIntn(10000))
}

// street returns an address like "Rua Tiradentes, 482".
func (g *Generator) street() string {
	return fmt.Sprintf("%s %s, %d", pick(streetKinds), pick(streetNames), 1+randIntn(2999))
}

func pick(s []string) string {
	return s[randIntn(len(s))]
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failure is unrecoverable
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
