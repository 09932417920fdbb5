// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package checkpoint persists simulation snapshots so that long runs can be
// resumed, inspected, and verified after the fact. A snapshot captures the
// full matrix product state of a run at one step together with the simulated
// time. Three backends share the Store interface: an in-memory map for tests
// and short-lived runs, a directory of compressed record files, and a
// LevelDB database for runs with many snapshots.
package checkpoint

import (
	"errors"

	"github.com/google/uuid"
	"github.com/latticeworks/tenet/mps"
)

// ErrNotFound indicates that no snapshot is stored for the requested run and
// step.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the persisted record of a simulation run at one step.
type Snapshot struct {
	// RunID identifies the simulation run the snapshot belongs to.
	RunID uuid.UUID
	// Step is the number of completed engine steps.
	Step uint64
	// Time is the simulated time reached at Step, zero for ground state
	// searches.
	Time float64
	// Psi is the state of the run.
	Psi *mps.MPS
}

// Store persists snapshots keyed by run and step.
//
// Implementations must keep stored snapshots isolated from later mutation of
// the state they were saved from, and must return deep copies on Load.
type Store interface {
	// Save persists a snapshot, replacing any existing snapshot of the same
	// run and step.
	Save(snapshot Snapshot) error
	// Load retrieves the snapshot of the given run and step. It reports
	// ErrNotFound if none is stored.
	Load(run uuid.UUID, step uint64) (Snapshot, error)
	// Steps lists the stored steps of a run in ascending order. An unknown
	// run yields an empty list, not an error.
	Steps(run uuid.UUID) ([]uint64, error)
	// Flush forces buffered writes to durable storage.
	Flush() error
	// Close flushes and releases the store. The store must not be used
	// afterwards.
	Close() error
}

// LatestStep returns the newest stored step of a run, or ErrNotFound if the
// run has no snapshots.
func LatestStep(store Store, run uuid.UUID) (uint64, error) {
	steps, err := store.Steps(run)
	if err != nil {
		return 0, err
	}
	if len(steps) == 0 {
		return 0, ErrNotFound
	}
	return steps[len(steps)-1], nil
}
