// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package dmrg implements the density matrix renormalization group: a
// variational ground state search that sweeps through the chain optimizing
// two neighboring sites at a time against the rest of the state, which
// enters through boundary environments.
//
// Finite chains sweep back and forth until the energy settles. On infinite
// chains every bond update also absorbs one site into each environment, so
// the environments come to represent semi-infinite chains and the unit cell
// converges to the translation invariant bulk.
package dmrg

import (
	"context"
	"fmt"
	"math"

	"github.com/latticeworks/tenet/env"
	"github.com/latticeworks/tenet/krylov"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
	"github.com/rs/zerolog"
)

// Options configure a DMRG engine.
type Options struct {
	// Truncation bounds the bond growth after every two-site optimization.
	Truncation mps.Truncation
	// Lanczos controls the inner eigensolver.
	Lanczos krylov.Options
	// Logger receives one progress event per sweep. The zero value is
	// silent.
	Logger zerolog.Logger
}

// Stats accumulate over the lifetime of an engine.
type Stats struct {
	// Sweeps counts completed sweeps.
	Sweeps int
	// DiscardedWeight sums the truncated Schmidt weight over all splits.
	DiscardedWeight float64
	// MaxBondDim is the largest bond dimension reached so far.
	MaxBondDim int
}

// Result reports the outcome of a ground state search.
type Result struct {
	// Energy is the total energy for finite chains and the energy per site
	// for infinite chains.
	Energy float64
	// Sweeps is the number of sweeps performed.
	Sweeps int
	// Converged reports whether the energy change dropped below the
	// requested tolerance.
	Converged bool
}

// Engine is a two-site DMRG optimizer. It mutates the state it was created
// with and is not safe for concurrent use.
type Engine struct {
	m     model.Model
	psi   *mps.MPS
	envs  *env.Environment
	opts  Options
	stats Stats
}

// New creates a DMRG engine optimizing psi towards the ground state of m.
func New(m model.Model, psi *mps.MPS, opts Options) (*Engine, error) {
	if psi.NumBonds() < 2 {
		return nil, fmt.Errorf("sweeping needs at least two bonds, got %d", psi.NumBonds())
	}
	envs, err := env.New(m, psi)
	if err != nil {
		return nil, err
	}
	if psi.Boundary() == mps.Infinite {
		// Seed the interior right environments the first pass reads.
		for i := psi.Len() - 1; i >= 2; i-- {
			envs.UpdateRP(psi, i)
		}
	}
	e := &Engine{m: m, psi: psi, envs: envs, opts: opts}
	e.stats.MaxBondDim = psi.MaxBondDim()
	return e, nil
}

// State returns the state the engine optimizes.
func (e *Engine) State() *mps.MPS {
	return e.psi
}

// Stats returns a snapshot of the accumulated statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Energy returns the current variational energy: total for finite chains,
// per site for infinite chains.
func (e *Engine) Energy() float64 {
	if e.psi.Boundary() == mps.Finite {
		return model.Energy(e.m, e.psi)
	}
	return model.EnergyPerSite(e.m, e.psi)
}

// Sweep performs one optimization sweep, left to right and back. Interior
// bonds are optimized twice per sweep, the outermost bonds once.
func (e *Engine) Sweep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := 0; i < e.psi.NumBonds()-1; i++ {
		if err := e.updateBond(i); err != nil {
			return err
		}
	}
	for i := e.psi.NumBonds() - 1; i >= 1; i-- {
		if err := e.updateBond(i); err != nil {
			return err
		}
	}
	e.stats.Sweeps++
	return nil
}

// Run sweeps until the energy change between consecutive sweeps drops below
// tol or maxSweeps is exhausted.
func (e *Engine) Run(ctx context.Context, maxSweeps int, tol float64) (Result, error) {
	previous := e.Energy()
	for sweep := 0; sweep < maxSweeps; sweep++ {
		if err := e.Sweep(ctx); err != nil {
			return Result{}, fmt.Errorf("sweep %d failed: %w", sweep, err)
		}
		energy := e.Energy()
		e.opts.Logger.Debug().
			Int("sweep", sweep+1).
			Float64("energy", energy).
			Float64("discarded", e.stats.DiscardedWeight).
			Int("chi", e.stats.MaxBondDim).
			Msg("sweep done")
		if math.Abs(energy-previous) < tol {
			return Result{Energy: energy, Sweeps: sweep + 1, Converged: true}, nil
		}
		previous = energy
	}
	return Result{Energy: previous, Sweeps: maxSweeps}, nil
}

// updateBond optimizes the two-site wave function on the bond between site
// i and its right neighbor, writes the split result back into the state,
// and refreshes the adjacent environments.
func (e *Engine) updateBond(i int) error {
	psi := e.psi
	j := (i + 1) % psi.Len()
	heff := env.NewTwoSite(e.envs.LP(i), e.m.MPO(i), e.m.MPO(j), e.envs.RP(j))
	guess := psi.Theta2(i)
	_, ground, err := krylov.GroundState(heff, guess.Data(), e.opts.Lanczos)
	if err != nil {
		return fmt.Errorf("failed to optimize bond %d: %w", i, err)
	}
	theta := tensor.FromData(ground, guess.Shape()...)
	a, s, b, discarded, err := mps.SplitTruncateTheta(theta, e.opts.Truncation)
	if err != nil {
		return fmt.Errorf("failed to split bond %d: %w", i, err)
	}

	gi := tensor.MulDiagLeft(mps.InvertSchmidt(psi.S(i)), a)
	psi.SetB(i, tensor.MulDiagRight(gi, s))
	psi.SetS(j, s)
	psi.SetB(j, b)
	e.envs.UpdateLP(psi, i)
	e.envs.UpdateRP(psi, j)

	e.stats.DiscardedWeight += discarded
	if chi := len(s); chi > e.stats.MaxBondDim {
		e.stats.MaxBondDim = chi
	}
	return nil
}
