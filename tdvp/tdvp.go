// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package tdvp implements the time dependent variational principle for
// finite chains: time evolution that never leaves the matrix product state
// manifold. A sweep carries an orthogonality center through the chain,
// evolving it forward under its effective Hamiltonian; between consecutive
// centers the shared bond evolves backward, which undoes the double counting
// of the overlapping environments.
//
// The one-site integrator keeps all bond dimensions fixed and, for real time
// steps, conserves energy and norm to solver precision at any step size. The
// two-site integrator evolves neighboring pairs jointly so bonds can grow,
// subject to truncation, which makes it the right choice while entanglement
// is still building up.
package tdvp

import (
	"context"
	"fmt"
	"math"

	"github.com/latticeworks/tenet/common"
	"github.com/latticeworks/tenet/env"
	"github.com/latticeworks/tenet/krylov"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
	"github.com/latticeworks/tenet/tensor/linalg"
	"github.com/rs/zerolog"
)

// Options configure a TDVP engine.
type Options struct {
	// Truncation bounds bond growth in the two-site integrator. The one-site
	// integrator never changes bond dimensions and ignores it.
	Truncation mps.Truncation
	// Krylov controls the local evolution solver.
	Krylov krylov.Options
	// Logger receives one progress event per step. The zero value is silent.
	Logger zerolog.Logger
}

// Stats accumulate over the lifetime of an engine.
type Stats struct {
	// Steps counts completed time steps.
	Steps int
	// DiscardedWeight sums the truncated Schmidt weight over all two-site
	// splits. The one-site integrator never truncates.
	DiscardedWeight float64
	// MaxBondDim is the largest bond dimension reached so far.
	MaxBondDim int
}

// Engine evolves a matrix product state by sweeping. It mutates the state it
// was created with and is not safe for concurrent use.
type Engine struct {
	m       model.Model
	psi     *mps.MPS
	envs    *env.Environment
	dt      complex128
	opts    Options
	twoSite bool
	stats   Stats
}

// NewOneSite creates a one-site TDVP engine evolving psi by exp(-dt H) per
// step. A purely imaginary dt = i tau performs real time evolution by tau.
func NewOneSite(m model.Model, psi *mps.MPS, dt complex128, opts Options) (*Engine, error) {
	return newEngine(m, psi, dt, opts, false)
}

// NewTwoSite creates a two-site TDVP engine evolving psi by exp(-dt H) per
// step, truncating each bond after the pair update.
func NewTwoSite(m model.Model, psi *mps.MPS, dt complex128, opts Options) (*Engine, error) {
	return newEngine(m, psi, dt, opts, true)
}

func newEngine(m model.Model, psi *mps.MPS, dt complex128, opts Options, twoSite bool) (*Engine, error) {
	if psi.Boundary() != mps.Finite {
		return nil, fmt.Errorf("sweeping integrators support finite chains only, got %s boundaries", psi.Boundary())
	}
	if psi.Len() < 2 {
		return nil, fmt.Errorf("sweeping needs at least two sites, got %d", psi.Len())
	}
	envs, err := env.New(m, psi)
	if err != nil {
		return nil, err
	}
	e := &Engine{m: m, psi: psi, envs: envs, dt: dt, opts: opts, twoSite: twoSite}
	e.stats.MaxBondDim = psi.MaxBondDim()
	return e, nil
}

// State returns the state the engine evolves.
func (e *Engine) State() *mps.MPS {
	return e.psi
}

// Stats returns a snapshot of the accumulated statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Step advances the state by one time step, sweeping left to right and back.
func (e *Engine) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if e.twoSite {
		err = e.stepTwoSite()
	} else {
		err = e.stepOneSite()
	}
	if err != nil {
		return err
	}
	e.stats.Steps++
	e.opts.Logger.Debug().
		Int("step", e.stats.Steps).
		Float64("discarded", e.stats.DiscardedWeight).
		Int("chi", e.stats.MaxBondDim).
		Msg("step done")
	return nil
}

// Run advances the state by the given number of steps.
func (e *Engine) Run(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		if err := e.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// stepOneSite carries the center right and back, evolving each site by half
// a step per visit. The last site takes a full step at the turning point, so
// no backward bond evolution is needed there.
func (e *Engine) stepOneSite() error {
	l := e.psi.Len()
	phi, err := e.evolveCenter(e.psi.Theta1(0), 0, -e.dt/2)
	if err != nil {
		return err
	}
	for i := 0; i < l-1; i++ {
		if phi, err = e.shiftCenterRight(phi, i); err != nil {
			return err
		}
		z := -e.dt / 2
		if i == l-2 {
			z = -e.dt
		}
		if phi, err = e.evolveCenter(phi, i+1, z); err != nil {
			return err
		}
	}
	for s := l - 1; s >= 1; s-- {
		if phi, err = e.shiftCenterLeft(phi, s); err != nil {
			return err
		}
		if phi, err = e.evolveCenter(phi, s-1, -e.dt/2); err != nil {
			return err
		}
	}
	// A trivial left bond makes the unit norm center right canonical as is.
	e.psi.SetB(0, phi)
	return nil
}

// stepTwoSite sweeps neighboring pairs right and back. Each pair evolves
// forward by half a step per pass; between consecutive pairs the shared site
// evolves backward, so every site accumulates exactly one full step.
func (e *Engine) stepTwoSite() error {
	l := e.psi.Len()
	for i := 0; i <= l-2; i++ {
		if err := e.evolvePair(i, true); err != nil {
			return err
		}
	}
	for i := l - 2; i >= 0; i-- {
		if err := e.evolvePair(i, false); err != nil {
			return err
		}
	}
	return nil
}

// evolveCenter applies exp(z Heff) to the center at site i and rescales it
// to unit norm.
func (e *Engine) evolveCenter(phi *tensor.Dense, i int, z complex128) (*tensor.Dense, error) {
	h := env.NewOneSite(e.envs.LP(i), e.m.MPO(i), e.envs.RP(i))
	data, err := krylov.Evolve(h, phi.Data(), z, e.opts.Krylov)
	if err != nil {
		return nil, fmt.Errorf("failed to evolve site %d: %w", i, err)
	}
	return normalized(tensor.FromData(data, phi.Shape()...)), nil
}

// shiftCenterRight splits the center at site i into a left isometry that
// stays behind and a bond matrix, evolves the bond matrix backward by half a
// step, and attaches it to the next site.
func (e *Engine) shiftCenterRight(phi *tensor.Dense, i int) (*tensor.Dense, error) {
	psi := e.psi
	chiL, d, chiR := phi.Dim(0), phi.Dim(1), phi.Dim(2)
	u, sigma, vh, err := linalg.SVD(phi.Reshape(chiL*d, chiR))
	if err != nil {
		return nil, fmt.Errorf("failed to split site %d: %w", i, err)
	}
	s := normalizedSchmidt(sigma)
	a := tensor.FromData(u.Data(), chiL, d, len(s))
	psi.SetB(i, tensor.MulDiagRight(tensor.MulDiagLeft(mps.InvertSchmidt(psi.S(i)), a), s))
	psi.SetS(i+1, s)
	e.envs.UpdateLP(psi, i)

	c := tensor.MulDiagLeft(s, vh)
	evolved, err := krylov.Evolve(env.NewZeroSite(e.envs.LP(i+1), e.envs.RP(i)), c.Data(), e.dt/2, e.opts.Krylov)
	if err != nil {
		return nil, fmt.Errorf("failed to evolve bond %d backward: %w", i, err)
	}
	back := normalized(tensor.FromData(evolved, len(s), chiR))
	return tensor.Contract(back, psi.B(i+1), []int{1}, []int{0}), nil
}

// shiftCenterLeft splits the center at site s into a right isometry that
// stays behind and a bond matrix, evolves the bond matrix backward by half a
// step, and attaches it to the previous site.
func (e *Engine) shiftCenterLeft(phi *tensor.Dense, s int) (*tensor.Dense, error) {
	psi := e.psi
	chiL, d, chiR := phi.Dim(0), phi.Dim(1), phi.Dim(2)
	u, sigma, vh, err := linalg.SVD(phi.Reshape(chiL, d*chiR))
	if err != nil {
		return nil, fmt.Errorf("failed to split site %d: %w", s, err)
	}
	sch := normalizedSchmidt(sigma)
	entry := psi.S(s)
	psi.SetB(s, tensor.FromData(vh.Data(), len(sch), d, chiR))
	psi.SetS(s, sch)
	e.envs.UpdateRP(psi, s)

	c := tensor.MulDiagRight(u, sch)
	evolved, err := krylov.Evolve(env.NewZeroSite(e.envs.LP(s), e.envs.RP(s-1)), c.Data(), e.dt/2, e.opts.Krylov)
	if err != nil {
		return nil, fmt.Errorf("failed to evolve bond %d backward: %w", s-1, err)
	}
	back := normalized(tensor.FromData(evolved, chiL, len(sch)))
	left := tensor.MulDiagRight(tensor.MulDiagLeft(psi.S(s-1), psi.B(s-1)), mps.InvertSchmidt(entry))
	return tensor.Contract(left, back, []int{2}, []int{0}), nil
}

// evolvePair evolves the two-site wave function on the bond between site i
// and its right neighbor forward by half a step and splits it back into the
// state. Where the sweep continues past the pair, the trailing center site
// is retracted by a backward half step.
func (e *Engine) evolvePair(i int, rightward bool) error {
	psi := e.psi
	j := i + 1
	theta := psi.Theta2(i)
	h := env.NewTwoSite(e.envs.LP(i), e.m.MPO(i), e.m.MPO(j), e.envs.RP(j))
	data, err := krylov.Evolve(h, theta.Data(), -e.dt/2, e.opts.Krylov)
	if err != nil {
		return fmt.Errorf("failed to evolve bond %d: %w", i, err)
	}
	a, s, b, discarded, err := mps.SplitTruncateTheta(tensor.FromData(data, theta.Shape()...), e.opts.Truncation)
	if err != nil {
		return fmt.Errorf("failed to split bond %d: %w", i, err)
	}
	psi.SetB(i, tensor.MulDiagRight(tensor.MulDiagLeft(mps.InvertSchmidt(psi.S(i)), a), s))
	psi.SetS(j, s)
	psi.SetB(j, b)
	e.stats.DiscardedWeight += discarded
	if len(s) > e.stats.MaxBondDim {
		e.stats.MaxBondDim = len(s)
	}

	if rightward {
		e.envs.UpdateLP(psi, i)
		if j < psi.Len()-1 {
			return e.retractSite(j, true)
		}
		return nil
	}
	e.envs.UpdateRP(psi, j)
	if i > 0 {
		return e.retractSite(i, false)
	}
	return nil
}

// retractSite evolves the site shared by two consecutive pair updates
// backward by half a step and rotates its left unitary factor into the
// preceding site, keeping the stored state canonical. On the rightward pass
// the rotation invalidates the left environment just grown, so it is rebuilt.
func (e *Engine) retractSite(site int, refreshLP bool) error {
	psi := e.psi
	phi := psi.Theta1(site)
	h := env.NewOneSite(e.envs.LP(site), e.m.MPO(site), e.envs.RP(site))
	data, err := krylov.Evolve(h, phi.Data(), e.dt/2, e.opts.Krylov)
	if err != nil {
		return fmt.Errorf("failed to evolve site %d backward: %w", site, err)
	}
	evolved := normalized(tensor.FromData(data, phi.Shape()...))
	chiL, d, chiR := evolved.Dim(0), evolved.Dim(1), evolved.Dim(2)
	u, sigma, vh, err := linalg.SVD(evolved.Reshape(chiL, d*chiR))
	if err != nil {
		return fmt.Errorf("failed to refactor site %d: %w", site, err)
	}
	sch := normalizedSchmidt(sigma)
	entry := psi.S(site)
	psi.SetB(site, tensor.FromData(vh.Data(), len(sch), d, chiR))
	psi.SetS(site, sch)

	rot := tensor.MulDiagRight(tensor.MulDiagLeft(mps.InvertSchmidt(entry), u), sch)
	prev := site - 1
	psi.SetB(prev, tensor.Contract(psi.B(prev), rot, []int{2}, []int{0}))
	if refreshLP {
		e.envs.UpdateLP(psi, prev)
	}
	return nil
}

func normalized(t *tensor.Dense) *tensor.Dense {
	if n := t.Norm(); n > 0 {
		t.Scale(complex(1/n, 0))
	}
	return t
}

func normalizedSchmidt(sigma []float64) []float64 {
	norm := math.Sqrt(common.SumSquares(sigma))
	s := make([]float64, len(sigma))
	for i, v := range sigma {
		s[i] = v / norm
	}
	return s
}
