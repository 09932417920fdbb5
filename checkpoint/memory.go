// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package checkpoint

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// MemoryStore keeps snapshots in process memory. It is the backend of choice
// for tests and for runs that only need their final state. Not safe for
// concurrent use.
type MemoryStore struct {
	runs map[uuid.UUID]map[uint64]Snapshot
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[uuid.UUID]map[uint64]Snapshot{}}
}

// Save stores a deep copy of the snapshot.
func (s *MemoryStore) Save(snapshot Snapshot) error {
	if snapshot.Psi == nil {
		return fmt.Errorf("cannot store a snapshot without a state")
	}
	run, ok := s.runs[snapshot.RunID]
	if !ok {
		run = map[uint64]Snapshot{}
		s.runs[snapshot.RunID] = run
	}
	snapshot.Psi = snapshot.Psi.Copy()
	run[snapshot.Step] = snapshot
	return nil
}

// Load retrieves a deep copy of the stored snapshot.
func (s *MemoryStore) Load(run uuid.UUID, step uint64) (Snapshot, error) {
	snapshot, ok := s.runs[run][step]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: run %s step %d", ErrNotFound, run, step)
	}
	snapshot.Psi = snapshot.Psi.Copy()
	return snapshot, nil
}

// Steps lists the stored steps of a run in ascending order.
func (s *MemoryStore) Steps(run uuid.UUID) ([]uint64, error) {
	steps := make([]uint64, 0, len(s.runs[run]))
	for step := range s.runs[run] {
		steps = append(steps, step)
	}
	slices.Sort(steps)
	return steps, nil
}

// Flush is a no-op for the in-memory store.
func (s *MemoryStore) Flush() error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
