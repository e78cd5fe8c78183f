package pipeline

import "sync"

// Group names a set of form fields filled by one kind of lookup.
type Group string

const (
	GroupPostal  Group = "postal"
	GroupGeocode Group = "geocode"
)

// Ticket tags one outstanding lookup. Its result may be applied only while
// the ticket is still the latest issued for its group.
type Ticket struct {
	Group Group
	Seq   uint64
}

// Sequencer hands out tickets per group. A newer ticket invalidates every
// older one in the same group, so a slow response can never overwrite the
// fields set from a newer request.
type Sequencer struct {
	mu     sync.Mutex
	latest map[Group]uint64
}

// NewSequencer returns a sequencer with no outstanding tickets.
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[Group]uint64)}
}

// Issue returns a new ticket for g.
func (s *Sequencer) Issue(g Group) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[g]++
	return Ticket{Group: g, Seq: s.latest[g]}
}

// Invalidate discards every outstanding ticket for g without starting a
// new lookup.
func (s *Sequencer) Invalidate(g Group) {
	s.Issue(g)
}

// Current reports whether t is the latest ticket issued for its group.
func (s *Sequencer) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Seq != 0 && s.latest[t.Group] == t.Seq
}
