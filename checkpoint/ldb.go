// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// snapshotTable tags snapshot records, leaving room for other record kinds
// in the same database.
const snapshotTable = byte('S')

const dbKeySize = 1 + 16 + 8

// dbKey is the fixed-width key of a snapshot record: table byte, run id,
// big-endian step. Big-endian steps make LevelDB's byte order the numeric
// step order.
type dbKey [dbKeySize]byte

func newDbKey(run uuid.UUID, step uint64) dbKey {
	var key dbKey
	key[0] = snapshotTable
	copy(key[1:17], run[:])
	binary.BigEndian.PutUint64(key[17:], step)
	return key
}

// LevelDbStore persists snapshots in a LevelDB database, one record per
// step. Listing the steps of a run is a single range scan.
type LevelDbStore struct {
	db *leveldb.DB
}

var _ Store = (*LevelDbStore)(nil)

// NewLevelDbStore opens (or creates) a LevelDB-backed snapshot store at the
// given path.
func NewLevelDbStore(path string) (*LevelDbStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	return &LevelDbStore{db: db}, nil
}

// Save encodes and writes the snapshot record.
func (s *LevelDbStore) Save(snapshot Snapshot) error {
	encoded, err := Encode(snapshot)
	if err != nil {
		return err
	}
	key := newDbKey(snapshot.RunID, snapshot.Step)
	if err := s.db.Put(key[:], encoded, nil); err != nil {
		return fmt.Errorf("failed to write snapshot record: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot record, which includes its integrity
// check.
func (s *LevelDbStore) Load(run uuid.UUID, step uint64) (Snapshot, error) {
	key := newDbKey(run, step)
	encoded, err := s.db.Get(key[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Snapshot{}, fmt.Errorf("%w: run %s step %d", ErrNotFound, run, step)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot record: %w", err)
	}
	return Decode(encoded)
}

// Steps lists the stored steps of a run in ascending order.
func (s *LevelDbStore) Steps(run uuid.UUID) ([]uint64, error) {
	prefix := newDbKey(run, 0)
	iter := s.db.NewIterator(util.BytesPrefix(prefix[:17]), nil)
	defer iter.Release()
	var steps []uint64
	for iter.Next() {
		key := iter.Key()
		if len(key) != dbKeySize {
			continue
		}
		steps = append(steps, binary.BigEndian.Uint64(key[17:]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot records: %w", err)
	}
	return steps, nil
}

// Flush is a no-op; writes go through the database journal.
func (s *LevelDbStore) Flush() error {
	return nil
}

// Close releases the database.
func (s *LevelDbStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot database: %w", err)
	}
	return nil
}
