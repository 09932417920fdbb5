// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/google/uuid"
)

const recordSuffix = ".snap"

// FileStore writes one snappy-compressed record file per snapshot, grouped
// into one directory per run. The hexadecimal step in the file name is zero
// padded so that directory listings sort in step order.
type FileStore struct {
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-based snapshot store rooted at the given
// directory, creating it if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) runDir(run uuid.UUID) string {
	return filepath.Join(s.root, run.String())
}

func (s *FileStore) recordPath(run uuid.UUID, step uint64) string {
	return filepath.Join(s.runDir(run), fmt.Sprintf("%016x%s", step, recordSuffix))
}

// Save encodes, compresses and writes the snapshot record.
func (s *FileStore) Save(snapshot Snapshot) error {
	encoded, err := Encode(snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.runDir(snapshot.RunID), 0700); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	compressed := snappy.Encode(nil, encoded)
	if err := os.WriteFile(s.recordPath(snapshot.RunID, snapshot.Step), compressed, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot record: %w", err)
	}
	return nil
}

// Load reads, decompresses and decodes the snapshot record, which includes
// its integrity check.
func (s *FileStore) Load(run uuid.UUID, step uint64) (Snapshot, error) {
	compressed, err := os.ReadFile(s.recordPath(run, step))
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, fmt.Errorf("%w: run %s step %d", ErrNotFound, run, step)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot record: %w", err)
	}
	encoded, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to decompress snapshot record: %w", err)
	}
	return Decode(encoded)
}

// Steps lists the stored steps of a run in ascending order.
func (s *FileStore) Steps(run uuid.UUID) ([]uint64, error) {
	entries, err := os.ReadDir(s.runDir(run))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list run directory: %w", err)
	}
	steps := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordSuffix) {
			continue
		}
		step, err := strconv.ParseUint(strings.TrimSuffix(name, recordSuffix), 16, 64)
		if err != nil {
			continue // foreign file, not a snapshot record
		}
		steps = append(steps, step)
	}
	slices.Sort(steps)
	return steps, nil
}

// Flush is a no-op; records are written synchronously.
func (s *FileStore) Flush() error {
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}
