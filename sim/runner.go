// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/latticeworks/tenet/checkpoint"
	"github.com/latticeworks/tenet/common/interrupt"
	"github.com/latticeworks/tenet/common/logging"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
)

// Summary reports the outcome of a run.
type Summary struct {
	RunID uuid.UUID
	// Steps is the number of completed steps, counting any resumed prefix.
	Steps uint64
	// Time is the simulated time reached.
	Time float64
	// Energy is the final energy, per site for infinite chains.
	Energy float64
	// Converged reports whether a ground state search met its tolerance.
	Converged bool
	// MaxBondDim is the largest bond dimension of the final state.
	MaxBondDim int
}

// RunnerOptions inject alternative backends, mostly for tests. Injected
// backends are used as provided and are not closed by the runner.
type RunnerOptions struct {
	// Store overrides the snapshot store built from the configuration.
	Store checkpoint.Store
	// Recorder overrides the measurement sink built from the configuration.
	Recorder Recorder
}

// Runner executes one configured run: it builds the model, the initial
// state and the engine, drives the step loop with scheduled measurements
// and snapshots, and reports a summary.
type Runner struct {
	config Config
	opts   RunnerOptions
	log    zerolog.Logger
}

// NewRunner validates the configuration and prepares a runner.
func NewRunner(config Config, opts RunnerOptions) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Runner{config: config, opts: opts, log: logging.WithComponent("runner")}, nil
}

// Run executes the run under a context that is additionally canceled by
// SIGINT and SIGTERM, so an interrupted simulation stops at the next step
// boundary with its last snapshot intact.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	ctx = interrupt.CancelOnInterrupt(ctx)

	store, ownsStore, err := r.openStore()
	if err != nil {
		return Summary{}, err
	}
	recorder, ownsRecorder, err := r.openRecorder()
	if err != nil {
		if ownsStore {
			err = errors.Join(err, store.Close())
		}
		return Summary{}, err
	}

	summary, err := r.run(ctx, store, recorder)
	if ownsStore {
		err = errors.Join(err, store.Close())
	}
	if ownsRecorder {
		err = errors.Join(err, recorder.Close())
	}
	return summary, err
}

func (r *Runner) run(ctx context.Context, store checkpoint.Store, recorder Recorder) (Summary, error) {
	run, err := r.runID()
	if err != nil {
		return Summary{}, err
	}
	m, err := buildModel(r.config.Model)
	if err != nil {
		return Summary{}, err
	}
	psi, baseStep, baseTime, err := r.initialState(run, store, m.Boundary())
	if err != nil {
		return Summary{}, err
	}
	engine, err := r.buildEngine(m, psi)
	if err != nil {
		return Summary{}, err
	}

	op := siteOperator(r.config.Measure.SiteOperator)
	totalSteps := uint64(r.config.Run.Steps)
	measureEvery := uint64(r.config.Schedule.MeasureEvery)
	checkpointEvery := uint64(r.config.Schedule.CheckpointEvery)

	r.log.Info().Stringer("run", run).
		Str("engine", r.config.Engine.Name).
		Str("model", r.config.Model.Kind).
		Int("length", r.config.Model.Length).
		Uint64("from", baseStep).
		Uint64("to", totalSteps).
		Msg("starting run")

	step := baseStep
	lastSaved, haveSaved := baseStep, r.config.Run.Start == StartCheckpoint
	for step < totalSteps {
		if err := engine.Step(ctx); err != nil {
			return Summary{}, fmt.Errorf("step %d failed: %w", step+1, err)
		}
		step++
		if recorder != nil && measureEvery > 0 && step%measureEvery == 0 {
			if err := r.measure(recorder, run, m, engine, op, step, baseTime); err != nil {
				return Summary{}, err
			}
		}
		if store != nil && checkpointEvery > 0 && step%checkpointEvery == 0 {
			if err := r.snapshot(store, run, engine, step, baseTime); err != nil {
				return Summary{}, err
			}
			lastSaved, haveSaved = step, true
		}
		if engine.Converged() {
			r.log.Info().Uint64("step", step).Msg("search converged")
			break
		}
	}

	if store != nil {
		if !haveSaved || lastSaved != step {
			if err := r.snapshot(store, run, engine, step, baseTime); err != nil {
				return Summary{}, err
			}
		}
		if err := store.Flush(); err != nil {
			return Summary{}, fmt.Errorf("failed to flush snapshots: %w", err)
		}
	}
	if recorder != nil {
		if err := recorder.Sync(); err != nil {
			return Summary{}, fmt.Errorf("failed to drain measurements: %w", err)
		}
	}

	summary := Summary{
		RunID:      run,
		Steps:      step,
		Time:       baseTime + engine.Elapsed(),
		Energy:     energyOf(m, engine.State()),
		Converged:  engine.Converged(),
		MaxBondDim: engine.State().MaxBondDim(),
	}
	r.log.Info().
		Uint64("steps", summary.Steps).
		Float64("energy", summary.Energy).
		Bool("converged", summary.Converged).
		Int("chi", summary.MaxBondDim).
		Msg("run finished")
	return summary, nil
}

func (r *Runner) runID() (uuid.UUID, error) {
	if r.config.Run.ID == "" {
		return uuid.New(), nil
	}
	run, err := uuid.Parse(r.config.Run.ID)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to parse run id: %w", err)
	}
	return run, nil
}

// openStore builds the snapshot store from the configuration, unless one
// was injected. The boolean reports whether the runner owns the store and
// must close it.
func (r *Runner) openStore() (checkpoint.Store, bool, error) {
	if r.opts.Store != nil {
		return r.opts.Store, false, nil
	}
	switch r.config.Checkpoint.Backend {
	case "":
		return nil, false, nil
	case "memory":
		return checkpoint.NewMemoryStore(), true, nil
	case "file":
		store, err := checkpoint.NewFileStore(r.config.Checkpoint.Directory)
		if err != nil {
			return nil, false, err
		}
		return store, true, nil
	case "ldb":
		store, err := checkpoint.NewLevelDbStore(r.config.Checkpoint.Directory)
		if err != nil {
			return nil, false, err
		}
		return store, true, nil
	}
	return nil, false, fmt.Errorf("unknown checkpoint backend %q", r.config.Checkpoint.Backend)
}

func (r *Runner) openRecorder() (Recorder, bool, error) {
	if r.opts.Recorder != nil {
		return r.opts.Recorder, false, nil
	}
	if r.config.Results.Database == "" {
		return nil, false, nil
	}
	recorder, err := NewSQLiteRecorder(r.config.Results.Database)
	if err != nil {
		return nil, false, err
	}
	return recorder, true, nil
}

func (r *Runner) initialState(run uuid.UUID, store checkpoint.Store, bc mps.BoundaryCondition) (*mps.MPS, uint64, float64, error) {
	switch r.config.Run.Start {
	case StartFerromagnet:
		psi, err := mps.NewFerromagnet(r.config.Model.Length, bc)
		return psi, 0, 0, err
	case StartNeel:
		psi, err := mps.NewNeelState(r.config.Model.Length, bc)
		return psi, 0, 0, err
	case StartCheckpoint:
		if store == nil {
			return nil, 0, 0, fmt.Errorf("resuming needs a snapshot store")
		}
		step := r.config.Run.ResumeStep
		if step == 0 {
			latest, err := checkpoint.LatestStep(store, run)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("failed to find the latest snapshot of run %s: %w", run, err)
			}
			step = latest
		}
		snapshot, err := store.Load(run, step)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to resume run %s: %w", run, err)
		}
		r.log.Info().Stringer("run", run).Uint64("step", snapshot.Step).Msg("resuming from snapshot")
		return snapshot.Psi, snapshot.Step, snapshot.Time, nil
	}
	return nil, 0, 0, fmt.Errorf("unknown initial state %q", r.config.Run.Start)
}

func (r *Runner) buildEngine(m model.Model, psi *mps.MPS) (Engine, error) {
	config, err := ParseConfiguration(r.config.Engine.Name)
	if err != nil {
		return nil, err
	}
	dt := complex(r.config.Engine.Dt, 0)
	if !r.config.Engine.ImaginaryTime {
		dt = complex(0, r.config.Engine.Dt)
	}
	return New(config, Parameters{
		Model:      m,
		State:      psi,
		Dt:         dt,
		Truncation: mps.Truncation{ChiMax: r.config.Engine.ChiMax, Eps: r.config.Engine.Eps},
		Tolerance:  r.config.Engine.Tolerance,
	})
}

func (r *Runner) measure(recorder Recorder, run uuid.UUID, m model.Model, engine Engine, op *tensor.Dense, step uint64, baseTime float64) error {
	psi := engine.State()
	measurement := Measurement{
		RunID:    run,
		Step:     step,
		Time:     baseTime + engine.Elapsed(),
		BondDims: psi.BondDims(),
	}
	// The observables only read the state, so they may run concurrently.
	var g errgroup.Group
	g.Go(func() error {
		entropies, err := psi.EntanglementEntropies()
		if err != nil {
			return fmt.Errorf("failed to measure entropies at step %d: %w", step, err)
		}
		measurement.Entropies = entropies
		return nil
	})
	g.Go(func() error {
		measurement.Energy = energyOf(m, psi)
		return nil
	})
	if op != nil {
		g.Go(func() error {
			measurement.SiteValues = psi.SiteExpectations(op)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	recorder.Record(measurement)
	return nil
}

func (r *Runner) snapshot(store checkpoint.Store, run uuid.UUID, engine Engine, step uint64, baseTime float64) error {
	snapshot := checkpoint.Snapshot{
		RunID: run,
		Step:  step,
		Time:  baseTime + engine.Elapsed(),
		Psi:   engine.State(),
	}
	if err := store.Save(snapshot); err != nil {
		return fmt.Errorf("failed to store snapshot at step %d: %w", step, err)
	}
	r.log.Debug().Uint64("step", step).Msg("snapshot stored")
	return nil
}

func buildModel(config ModelConfig) (model.Model, error) {
	bc, err := mps.ParseBoundaryCondition(config.Boundary)
	if err != nil {
		return nil, err
	}
	switch config.Kind {
	case "tfi":
		return model.NewTFIChain(config.Length, config.J, config.G, bc)
	case "xx":
		return model.NewXXChain(config.Length, config.J, config.Hs, bc)
	}
	return nil, fmt.Errorf("unknown model kind %q", config.Kind)
}

func siteOperator(name string) *tensor.Dense {
	switch name {
	case "sx":
		return model.SigmaX()
	case "sy":
		return model.SigmaY()
	case "sz":
		return model.SigmaZ()
	}
	return nil
}

// energyOf follows the reporting convention of the engines: total energy
// for finite chains, energy per site for infinite ones.
func energyOf(m model.Model, psi *mps.MPS) float64 {
	if psi.Boundary() == mps.Finite {
		return model.Energy(m, psi)
	}
	return model.EnergyPerSite(m, psi)
}
