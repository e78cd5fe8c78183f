package contact

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Snapshot is the unit written to durable storage: the whole ordered
// collection plus the id counter.
type Snapshot struct {
	NextID   int64     `json:"next_id"`
	Contacts []Contact `json:"contacts"`
}

// Repository loads and saves whole snapshots. Save must replace the stored
// value atomically so readers never see a partial collection.
type Repository interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// MemRepository keeps the serialized snapshot in memory.
type MemRepository struct {
	mu   sync.Mutex
	data []byte

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

var _ Repository = (*MemRepository)(nil)

// NewMemRepository returns an empty in-memory repository.
func NewMemRepository() *MemRepository {
	return &MemRepository{}
}

// Load decodes the stored snapshot, or returns an empty one.
func (r *MemRepository) Load() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.data) == 0 {
		return Snapshot{}, nil
	}

	var s Snapshot
	if err := json.Unmarshal(r.data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return s, nil
}

// Save encodes and stores s.
func (r *MemRepository) Save(s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("save snapshot: marshal: %w", err)
	}
	r.data = data
	return nil
}

// Bytes returns the serialized form of the last saved snapshot.
func (r *MemRepository) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.data...)
}
