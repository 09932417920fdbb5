// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package checkpoint

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
)

// initStoresMap lists the backends covered by the conformance tests below.
// Every factory hands out a fresh, empty store scoped to the test.
func initStoresMap() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"file": func(t *testing.T) Store {
			store, err := NewFileStore(t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() {
				require.NoError(t, store.Close())
			})
			return store
		},
		"leveldb": func(t *testing.T) Store {
			store, err := NewLevelDbStore(t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() {
				require.NoError(t, store.Close())
			})
			return store
		},
	}
}

// entangledPair builds the two-site state with a fully occupied middle bond,
// the smallest fixture whose record carries a multi-dimensional Schmidt
// vector and tensors with more than one entry per slice.
func entangledPair(t *testing.T) *mps.MPS {
	t.Helper()
	h := complex(math.Sqrt(0.5), 0)
	b0 := tensor.FromData([]complex128{h, 0, 0, h}, 1, 2, 2)
	b1 := tensor.FromData([]complex128{1, 0, 0, 1}, 2, 2, 1)
	ss := [][]float64{{1}, {math.Sqrt(0.5), math.Sqrt(0.5)}}
	psi, err := mps.New([]*tensor.Dense{b0, b1}, ss, mps.Finite)
	require.NoError(t, err)
	return psi
}

func requireSameState(t *testing.T, want, got *mps.MPS) {
	t.Helper()
	require := require.New(t)
	require.Equal(want.Len(), got.Len())
	require.Equal(want.Boundary(), got.Boundary())
	for i := 0; i < want.Len(); i++ {
		require.Equal(want.B(i).Shape(), got.B(i).Shape())
		require.Equal(want.B(i).Data(), got.B(i).Data())
		require.Equal(want.S(i), got.S(i))
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	for name, factory := range initStoresMap() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)
			snapshot := Snapshot{
				RunID: uuid.New(),
				Step:  42,
				Time:  1.5,
				Psi:   entangledPair(t),
			}
			require.NoError(store.Save(snapshot))
			require.NoError(store.Flush())

			loaded, err := store.Load(snapshot.RunID, snapshot.Step)
			require.NoError(err)
			require.Equal(snapshot.RunID, loaded.RunID)
			require.Equal(snapshot.Step, loaded.Step)
			require.Equal(snapshot.Time, loaded.Time)
			requireSameState(t, snapshot.Psi, loaded.Psi)
		})
	}
}

func TestStore_HandsOutPrivateCopies(t *testing.T) {
	for name, factory := range initStoresMap() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)
			run := uuid.New()
			psi := entangledPair(t)
			pristine := psi.Copy()
			require.NoError(store.Save(Snapshot{RunID: run, Step: 1, Psi: psi}))

			// Mutations of the caller's state after Save must not reach the
			// stored record, and mutations of a loaded state must not leak
			// into later loads.
			psi.B(0).Data()[0] = 99
			first, err := store.Load(run, 1)
			require.NoError(err)
			first.Psi.S(1)[0] = -1
			first.Psi.B(1).Data()[0] = 0

			second, err := store.Load(run, 1)
			require.NoError(err)
			requireSameState(t, pristine, second.Psi)
		})
	}
}

func TestStore_LoadReportsMissingRecords(t *testing.T) {
	for name, factory := range initStoresMap() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)
			run := uuid.New()
			require.NoError(store.Save(Snapshot{RunID: run, Step: 3, Psi: entangledPair(t)}))

			_, err := store.Load(uuid.New(), 3)
			require.ErrorIs(err, ErrNotFound)
			_, err = store.Load(run, 4)
			require.ErrorIs(err, ErrNotFound)
		})
	}
}

func TestStore_SaveOverwritesSameStep(t *testing.T) {
	for name, factory := range initStoresMap() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)
			run := uuid.New()
			up, err := mps.NewFerromagnet(3, mps.Finite)
			require.NoError(err)
			alternating, err := mps.NewNeelState(3, mps.Finite)
			require.NoError(err)

			require.NoError(store.Save(Snapshot{RunID: run, Step: 7, Psi: up}))
			require.NoError(store.Save(Snapshot{RunID: run, Step: 7, Time: 0.7, Psi: alternating}))

			loaded, err := store.Load(run, 7)
			require.NoError(err)
			require.Equal(0.7, loaded.Time)
			requireSameState(t, alternating, loaded.Psi)

			steps, err := store.Steps(run)
			require.NoError(err)
			require.Equal([]uint64{7}, steps)
		})
	}
}

func TestStore_StepsKeepsRunsApartAndSorted(t *testing.T) {
	for name, factory := range initStoresMap() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)
			first, second := uuid.New(), uuid.New()
			psi := entangledPair(t)
			for _, step := range []uint64{5, 1, 9} {
				require.NoError(store.Save(Snapshot{RunID: first, Step: step, Psi: psi}))
			}
			require.NoError(store.Save(Snapshot{RunID: second, Step: 2, Psi: psi}))

			steps, err := store.Steps(first)
			require.NoError(err)
			require.Equal([]uint64{1, 5, 9}, steps)

			steps, err = store.Steps(second)
			require.NoError(err)
			require.Equal([]uint64{2}, steps)

			steps, err = store.Steps(uuid.New())
			require.NoError(err)
			require.Empty(steps)
		})
	}
}

func TestStore_RejectsSnapshotWithoutState(t *testing.T) {
	for name, factory := range initStoresMap() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			store := factory(t)
			err := store.Save(Snapshot{RunID: uuid.New(), Step: 1})
			require.Error(err)
			require.ErrorContains(err, "without a state")
		})
	}
}

func TestLatestStep_ReturnsHighestStoredStep(t *testing.T) {
	require := require.New(t)
	store := NewMemoryStore()
	run := uuid.New()

	_, err := LatestStep(store, run)
	require.ErrorIs(err, ErrNotFound)

	psi := entangledPair(t)
	for _, step := range []uint64{2, 8, 5} {
		require.NoError(store.Save(Snapshot{RunID: run, Step: step, Psi: psi}))
	}
	latest, err := LatestStep(store, run)
	require.NoError(err)
	require.Equal(uint64(8), latest)
}

func TestCodec_RoundTripPreservesState(t *testing.T) {
	cell, err := mps.NewNeelState(2, mps.Infinite)
	require.NoError(t, err)

	tests := map[string]*mps.MPS{
		"finite entangled pair": entangledPair(t),
		"infinite unit cell":    cell,
	}
	for name, psi := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			snapshot := Snapshot{RunID: uuid.New(), Step: 11, Time: 2.25, Psi: psi}
			encoded, err := Encode(snapshot)
			require.NoError(err)

			decoded, err := Decode(encoded)
			require.NoError(err)
			require.Equal(snapshot.RunID, decoded.RunID)
			require.Equal(snapshot.Step, decoded.Step)
			require.Equal(snapshot.Time, decoded.Time)
			requireSameState(t, psi, decoded.Psi)
		})
	}
}

func TestCodec_RejectsCorruptRecords(t *testing.T) {
	encoded, err := Encode(Snapshot{RunID: uuid.New(), Step: 1, Psi: entangledPair(t)})
	require.NoError(t, err)

	tests := map[string]struct {
		corrupt func([]byte) []byte
		want    string
	}{
		"tampered payload": {
			corrupt: func(b []byte) []byte {
				b[len(b)/2] ^= 0x01
				return b
			},
			want: "integrity",
		},
		"clipped tail": {
			corrupt: func(b []byte) []byte {
				return b[:len(b)-1]
			},
			want: "integrity",
		},
		"wrong magic": {
			corrupt: func(b []byte) []byte {
				b[0] ^= 0xFF
				return b
			},
			want: "wrong magic",
		},
		"unsupported version": {
			corrupt: func(b []byte) []byte {
				b[len(codecMagic)] = 0xFF
				return b
			},
			want: "unsupported snapshot version",
		},
		"far too short": {
			corrupt: func(b []byte) []byte {
				return b[:8]
			},
			want: "too short",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			record := test.corrupt(append([]byte(nil), encoded...))
			_, err := Decode(record)
			require.Error(err)
			require.ErrorContains(err, test.want)
		})
	}
}

func TestEncode_RejectsSnapshotWithoutState(t *testing.T) {
	_, err := Encode(Snapshot{RunID: uuid.New()})
	require.Error(t, err)
	require.ErrorContains(t, err, "without a state")
}

func TestFileStore_IgnoresForeignFilesInRunDirectory(t *testing.T) {
	require := require.New(t)
	root := t.TempDir()
	store, err := NewFileStore(root)
	require.NoError(err)
	run := uuid.New()
	require.NoError(store.Save(Snapshot{RunID: run, Step: 4, Psi: entangledPair(t)}))

	runDir := filepath.Join(root, run.String())
	require.NoError(os.WriteFile(filepath.Join(runDir, "notes.txt"), []byte("scratch"), 0600))
	require.NoError(os.WriteFile(filepath.Join(runDir, "zzzz.snap"), []byte("scratch"), 0600))

	steps, err := store.Steps(run)
	require.NoError(err)
	require.Equal([]uint64{4}, steps)
}
