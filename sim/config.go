// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/latticeworks/tenet/mps"
)

// Initial state names accepted by RunConfig.Start.
const (
	StartFerromagnet = "ferromagnet"
	StartNeel        = "neel"
	StartCheckpoint  = "checkpoint"
)

// Config is a complete run description, usually loaded from a YAML file:
//
//	run:
//	  start: neel
//	  steps: 200
//	model:
//	  kind: xx
//	  length: 32
//	  boundary: finite
//	engine:
//	  name: tebd2
//	  dt: 0.05
//	  chi-max: 64
//	schedule:
//	  measure-every: 5
//	  checkpoint-every: 50
//	checkpoint:
//	  backend: file
//	  directory: /var/lib/tenet/snapshots
//	results:
//	  database: /var/lib/tenet/results.db
//
// Omitted fields keep the defaults of DefaultConfig; unknown fields are
// rejected.
type Config struct {
	Run        RunConfig        `yaml:"run"`
	Model      ModelConfig      `yaml:"model"`
	Engine     EngineConfig     `yaml:"engine"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Measure    MeasureConfig    `yaml:"measure"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Results    ResultsConfig    `yaml:"results"`
}

// RunConfig identifies the run and its workload.
type RunConfig struct {
	// ID keys the run in snapshot stores and result databases. Empty draws
	// a fresh UUID.
	ID string `yaml:"id"`
	// Start selects the initial state: "ferromagnet", "neel", or
	// "checkpoint" to resume a stored run.
	Start string `yaml:"start"`
	// Steps is the total number of steps, counting any resumed prefix. For
	// ground state searches it caps the number of sweeps.
	Steps int `yaml:"steps"`
	// ResumeStep picks the snapshot to resume from. Zero resumes from the
	// latest stored step.
	ResumeStep uint64 `yaml:"resume-step"`
}

// ModelConfig describes the Hamiltonian.
type ModelConfig struct {
	// Kind names the model: "tfi" for the transverse field Ising chain,
	// "xx" for the XX chain.
	Kind string `yaml:"kind"`
	// Length is the number of sites, or the unit cell size for infinite
	// boundaries.
	Length int `yaml:"length"`
	// Boundary is "finite" or "infinite".
	Boundary string `yaml:"boundary"`
	// J is the coupling strength.
	J float64 `yaml:"j"`
	// G is the transverse field of the tfi model.
	G float64 `yaml:"g"`
	// Hs is the staggered field of the xx model.
	Hs float64 `yaml:"hs"`
}

// EngineConfig selects and tunes the simulation engine.
type EngineConfig struct {
	// Name is a registered engine name like "dmrg2", "tebd2" or
	// "tdvp1"; see GetAllRegisteredConfigurations.
	Name string `yaml:"name"`
	// Dt is the time step of integrators.
	Dt float64 `yaml:"dt"`
	// ImaginaryTime cools the state instead of evolving it in real time.
	ImaginaryTime bool `yaml:"imaginary-time"`
	// ChiMax bounds the bond dimension; zero keeps every Schmidt value.
	ChiMax int `yaml:"chi-max"`
	// Eps drops Schmidt values below this threshold when truncating.
	Eps float64 `yaml:"eps"`
	// Tolerance is the energy convergence threshold of ground state
	// searches.
	Tolerance float64 `yaml:"tolerance"`
}

// ScheduleConfig sets the cadence of measurements and snapshots, both in
// steps. Zero disables the periodic activity; a final snapshot is written
// regardless whenever a checkpoint backend is configured.
type ScheduleConfig struct {
	MeasureEvery    int `yaml:"measure-every"`
	CheckpointEvery int `yaml:"checkpoint-every"`
}

// MeasureConfig selects the observables recorded beyond energy, entropies
// and bond dimensions.
type MeasureConfig struct {
	// SiteOperator records per-site expectation values of a Pauli matrix:
	// "sx", "sy", "sz", or empty for none.
	SiteOperator string `yaml:"site-operator"`
}

// CheckpointConfig selects the snapshot store.
type CheckpointConfig struct {
	// Backend is "memory", "file", "ldb", or empty to run without
	// snapshots.
	Backend string `yaml:"backend"`
	// Directory roots the file and ldb backends.
	Directory string `yaml:"directory"`
}

// ResultsConfig selects the measurement sink.
type ResultsConfig struct {
	// Database is the SQLite file collecting measurements; empty discards
	// them.
	Database string `yaml:"database"`
}

// DefaultConfig returns the configuration a run description starts from: a
// DMRG ground state search on a critical-side transverse field Ising chain
// of 16 sites, measuring every sweep, without snapshots or a result
// database.
func DefaultConfig() Config {
	return Config{
		Run:      RunConfig{Start: StartFerromagnet, Steps: 100},
		Model:    ModelConfig{Kind: "tfi", Length: 16, Boundary: "finite", J: 1, G: 1.5},
		Engine:   EngineConfig{Name: "dmrg2", Dt: 0.05, ChiMax: 64, Eps: 1e-12, Tolerance: 1e-10},
		Schedule: ScheduleConfig{MeasureEvery: 1},
		Measure:  MeasureConfig{SiteOperator: "sz"},
	}
}

// LoadConfig reads a YAML run description, layered over DefaultConfig and
// validated. Unknown fields and trailing documents are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	config := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return Config{}, fmt.Errorf("configuration %s holds more than one document", path)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the configuration and reports every problem found, joined
// into one error.
func (c *Config) Validate() error {
	var issues []error
	report := func(format string, args ...any) {
		issues = append(issues, fmt.Errorf(format, args...))
	}

	if c.Run.ID != "" {
		if _, err := uuid.Parse(c.Run.ID); err != nil {
			report("run.id %q is not a UUID", c.Run.ID)
		}
	}
	switch c.Run.Start {
	case StartFerromagnet, StartNeel, StartCheckpoint:
	default:
		report("run.start %q is not one of %q, %q, %q", c.Run.Start, StartFerromagnet, StartNeel, StartCheckpoint)
	}
	if c.Run.Steps <= 0 {
		report("run.steps must be positive, got %d", c.Run.Steps)
	}

	switch c.Model.Kind {
	case "tfi", "xx":
	default:
		report("model.kind %q is not one of %q, %q", c.Model.Kind, "tfi", "xx")
	}
	if c.Model.Length < 2 {
		report("model.length must be at least 2, got %d", c.Model.Length)
	}
	if _, err := mps.ParseBoundaryCondition(c.Model.Boundary); err != nil {
		report("model.boundary: %v", err)
	}

	config, err := ParseConfiguration(c.Engine.Name)
	switch {
	case err != nil:
		report("engine.name: %v", err)
	default:
		if _, found := lookupFactory(config); !found {
			report("engine.name %q matches no registered engine", c.Engine.Name)
		}
		if config.Algorithm == "dmrg" {
			if c.Engine.Tolerance <= 0 {
				report("engine.tolerance must be positive for ground state searches, got %g", c.Engine.Tolerance)
			}
		} else if c.Engine.Dt <= 0 {
			report("engine.dt must be positive for time evolution, got %g", c.Engine.Dt)
		}
	}
	if c.Engine.ChiMax < 0 {
		report("engine.chi-max must not be negative, got %d", c.Engine.ChiMax)
	}
	if c.Engine.Eps < 0 {
		report("engine.eps must not be negative, got %g", c.Engine.Eps)
	}

	if c.Schedule.MeasureEvery < 0 {
		report("schedule.measure-every must not be negative, got %d", c.Schedule.MeasureEvery)
	}
	if c.Schedule.CheckpointEvery < 0 {
		report("schedule.checkpoint-every must not be negative, got %d", c.Schedule.CheckpointEvery)
	}

	switch c.Measure.SiteOperator {
	case "", "sx", "sy", "sz":
	default:
		report("measure.site-operator %q is not one of %q, %q, %q or empty", c.Measure.SiteOperator, "sx", "sy", "sz")
	}

	switch c.Checkpoint.Backend {
	case "", "memory", "file", "ldb":
	default:
		report("checkpoint.backend %q is not one of %q, %q, %q or empty", c.Checkpoint.Backend, "memory", "file", "ldb")
	}
	if (c.Checkpoint.Backend == "file" || c.Checkpoint.Backend == "ldb") && c.Checkpoint.Directory == "" {
		report("checkpoint.directory is required for the %s backend", c.Checkpoint.Backend)
	}
	if c.Run.Start == StartCheckpoint && c.Checkpoint.Backend == "" {
		report("run.start %q needs a configured checkpoint backend", StartCheckpoint)
	}

	return errors.Join(issues...)
}
