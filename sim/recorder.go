// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package sim

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/latticeworks/tenet/common/future"
	"github.com/latticeworks/tenet/common/result"
)

// Measurement is one scheduled observation of a run.
type Measurement struct {
	RunID uuid.UUID
	// Step is the step after which the observation was taken.
	Step uint64
	// Time is the simulated time at the observation, zero for searches.
	Time float64
	// Energy is the total energy for finite chains and the energy per site
	// for infinite chains.
	Energy float64
	// Entropies holds the entanglement entropy of every nontrivial bond.
	Entropies []float64
	// SiteValues holds per-site expectation values of the configured
	// operator, nil when none is configured.
	SiteValues []float64
	// BondDims is the bond dimension profile.
	BondDims []int
}

// Recorder is a sink for measurements. Record queues asynchronously; write
// problems surface at the next Sync or Close.
type Recorder interface {
	Record(m Measurement)
	// Sync blocks until every queued measurement is stored and reports the
	// issues collected since the last call.
	Sync() error
	// Close drains the queue and releases the sink. No other method may be
	// called afterwards.
	Close() error
}

const createMeasurementsTable = `
CREATE TABLE IF NOT EXISTS measurements (
	run_id TEXT NOT NULL,
	step INTEGER NOT NULL,
	time REAL NOT NULL,
	energy REAL NOT NULL,
	entropies BLOB,
	site_values BLOB,
	bond_dims BLOB,
	PRIMARY KEY (run_id, step)
)`

const insertMeasurement = `
INSERT OR REPLACE INTO measurements (run_id, step, time, energy, entropies, site_values, bond_dims)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const selectMeasurements = `
SELECT step, time, energy, entropies, site_values, bond_dims
FROM measurements WHERE run_id = ? ORDER BY step`

// SQLiteRecorder stores measurements in a SQLite database, one row per run
// and step, written by a background goroutine so that the step loop never
// waits for the disk.
type SQLiteRecorder struct {
	db       *sql.DB
	commands chan<- recorderCommand
	done     <-chan struct{}
	issues   issueCollector
}

var _ Recorder = (*SQLiteRecorder)(nil)

// recorderCommand is one unit of work for the background writer: a
// measurement to store, or a written inquiry to answer once the queue ahead
// of it is applied.
type recorderCommand struct {
	measurement *Measurement
	written     *future.Promise[result.Result[uint64]]
}

// NewSQLiteRecorder opens (or creates) the result database at the given
// path and starts the background writer.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result database: %w", err)
	}
	// A single connection serializes the writer with read-backs.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createMeasurementsTable); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create measurement table: %w", err), db.Close())
	}

	r := &SQLiteRecorder{db: db}
	commands := make(chan recorderCommand, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.processCommands(commands)
	}()
	r.commands = commands
	r.done = done
	return r, nil
}

func (r *SQLiteRecorder) processCommands(commands <-chan recorderCommand) {
	var count uint64
	for command := range commands {
		if command.measurement != nil {
			if err := r.store(command.measurement); err != nil {
				r.issues.HandleIssue(fmt.Errorf("failed to store measurement for step %d: %w", command.measurement.Step, err))
			} else {
				count++
			}
		} else if command.written != nil {
			if err := r.issues.Collect(); err != nil {
				command.written.Fulfill(result.Err[uint64](err))
			} else {
				command.written.Fulfill(result.Ok(count))
			}
		}
	}
}

func (r *SQLiteRecorder) store(m *Measurement) error {
	_, err := r.db.Exec(insertMeasurement,
		m.RunID.String(), int64(m.Step), m.Time, m.Energy,
		floatsToBlob(m.Entropies), floatsToBlob(m.SiteValues), intsToBlob(m.BondDims))
	return err
}

// Record queues a measurement for the background writer.
func (r *SQLiteRecorder) Record(m Measurement) {
	r.commands <- recorderCommand{measurement: &m}
}

// Written returns a future that resolves, once all writes queued before the
// call are applied, to the number of measurements stored since opening, or
// to the issues collected so far.
func (r *SQLiteRecorder) Written() future.Future[result.Result[uint64]] {
	promise, f := future.Create[result.Result[uint64]]()
	r.commands <- recorderCommand{written: &promise}
	return f
}

// Sync blocks until every queued measurement reached the database and
// reports the write issues collected since the last call.
func (r *SQLiteRecorder) Sync() error {
	_, err := r.Written().Await().Get()
	return err
}

// Close drains the queue, stops the background writer, and closes the
// database.
func (r *SQLiteRecorder) Close() error {
	err := r.Sync()
	close(r.commands)
	<-r.done
	return errors.Join(err, r.db.Close())
}

// Measurements reads back every stored measurement of a run in step order.
// Call Sync first to observe writes queued by the same goroutine.
func (r *SQLiteRecorder) Measurements(run uuid.UUID) ([]Measurement, error) {
	rows, err := r.db.Query(selectMeasurements, run.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()
	var measurements []Measurement
	for rows.Next() {
		m := Measurement{RunID: run}
		var step int64
		var entropies, siteValues, bondDims []byte
		if err := rows.Scan(&step, &m.Time, &m.Energy, &entropies, &siteValues, &bondDims); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		m.Step = uint64(step)
		m.Entropies = blobToFloats(entropies)
		m.SiteValues = blobToFloats(siteValues)
		m.BondDims = blobToInts(bondDims)
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read measurements: %w", err)
	}
	return measurements, nil
}

// issueCollector keeps the first problems hit by the background writer.
// Beyond a small cap issues are counted but not stored.
type issueCollector struct {
	mutex  sync.Mutex
	issues []error
	extra  int
}

func (c *issueCollector) HandleIssue(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.issues) < 10 {
		c.issues = append(c.issues, err)
	} else {
		c.extra++
	}
}

func (c *issueCollector) Collect() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.extra > 0 {
		c.issues = append(c.issues, fmt.Errorf("%d additional issues truncated", c.extra))
	}
	err := errors.Join(c.issues...)
	c.issues = c.issues[:0]
	c.extra = 0
	return err
}

func floatsToBlob(values []float64) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, 0, 8*len(values))
	for _, v := range values {
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}

func blobToFloats(blob []byte) []float64 {
	if len(blob) == 0 {
		return nil
	}
	values := make([]float64, 0, len(blob)/8)
	for i := 0; i+8 <= len(blob); i += 8 {
		values = append(values, math.Float64frombits(binary.BigEndian.Uint64(blob[i:])))
	}
	return values
}

func intsToBlob(values []int) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, 0, 4*len(values))
	for _, v := range values {
		buf = binary.BigEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}

func blobToInts(blob []byte) []int {
	if len(blob) == 0 {
		return nil
	}
	values := make([]int, 0, len(blob)/4)
	for i := 0; i+4 <= len(blob); i += 4 {
		values = append(values, int(binary.BigEndian.Uint32(blob[i:])))
	}
	return values
}
