// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package sim

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/latticeworks/tenet/common/logging"
	"github.com/latticeworks/tenet/dmrg"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tdvp"
	"github.com/latticeworks/tenet/tebd"
)

// configurations lists the built-in engines. The -seq variants of TEBD apply
// their gates one bond at a time; the plain names fan the gates of one
// parity out over goroutines.
var configurations = map[Configuration]EngineFactory{
	{Algorithm: "dmrg", Variant: "2"}:     newDMRGEngine,
	{Algorithm: "tebd", Variant: "1"}:     newTEBDFactory(1, true),
	{Algorithm: "tebd", Variant: "1-seq"}: newTEBDFactory(1, false),
	{Algorithm: "tebd", Variant: "2"}:     newTEBDFactory(2, true),
	{Algorithm: "tebd", Variant: "2-seq"}: newTEBDFactory(2, false),
	{Algorithm: "tdvp", Variant: "1"}:     newTDVPFactory(false),
	{Algorithm: "tdvp", Variant: "2"}:     newTDVPFactory(true),
}

func init() {
	for config, factory := range configurations {
		RegisterEngineFactory(config, factory)
	}
}

// dmrgEngine adapts the two-site ground state search to the step loop. One
// step is one full sweep; convergence is an energy change below the
// tolerance, measured between consecutive sweeps like dmrg.Run does.
type dmrgEngine struct {
	inner     *dmrg.Engine
	tol       float64
	previous  float64
	converged bool
}

func newDMRGEngine(params Parameters) (Engine, error) {
	inner, err := dmrg.New(params.Model, params.State, dmrg.Options{
		Truncation: params.Truncation,
		Logger:     logging.WithComponent("dmrg"),
	})
	if err != nil {
		return nil, err
	}
	return &dmrgEngine{inner: inner, tol: params.Tolerance, previous: inner.Energy()}, nil
}

func (e *dmrgEngine) Step(ctx context.Context) error {
	if err := e.inner.Sweep(ctx); err != nil {
		return err
	}
	energy := e.inner.Energy()
	if math.Abs(energy-e.previous) < e.tol {
		e.converged = true
	}
	e.previous = energy
	return nil
}

func (e *dmrgEngine) State() *mps.MPS {
	return e.inner.State()
}

func (e *dmrgEngine) Elapsed() float64 {
	return 0
}

func (e *dmrgEngine) Converged() bool {
	return e.converged
}

type tebdEngine struct {
	inner *tebd.Engine
	tau   float64
}

func newTEBDFactory(order int, parallel bool) EngineFactory {
	return func(params Parameters) (Engine, error) {
		inner, err := tebd.New(params.Model, params.State, params.Dt, tebd.Options{
			Truncation: params.Truncation,
			Order:      order,
			Parallel:   parallel,
			Logger:     logging.WithComponent("tebd"),
		})
		if err != nil {
			return nil, err
		}
		return &tebdEngine{inner: inner, tau: cmplx.Abs(params.Dt)}, nil
	}
}

func (e *tebdEngine) Step(ctx context.Context) error {
	return e.inner.Step(ctx)
}

func (e *tebdEngine) State() *mps.MPS {
	return e.inner.State()
}

func (e *tebdEngine) Elapsed() float64 {
	return float64(e.inner.Stats().Steps) * e.tau
}

func (e *tebdEngine) Converged() bool {
	return false
}

type tdvpEngine struct {
	inner *tdvp.Engine
	tau   float64
}

func newTDVPFactory(twoSite bool) EngineFactory {
	return func(params Parameters) (Engine, error) {
		construct := tdvp.NewOneSite
		if twoSite {
			construct = tdvp.NewTwoSite
		}
		inner, err := construct(params.Model, params.State, params.Dt, tdvp.Options{
			Truncation: params.Truncation,
			Logger:     logging.WithComponent("tdvp"),
		})
		if err != nil {
			return nil, err
		}
		return &tdvpEngine{inner: inner, tau: cmplx.Abs(params.Dt)}, nil
	}
}

func (e *tdvpEngine) Step(ctx context.Context) error {
	return e.inner.Step(ctx)
}

func (e *tdvpEngine) State() *mps.MPS {
	return e.inner.State()
}

func (e *tdvpEngine) Elapsed() float64 {
	return float64(e.inner.Stats().Steps) * e.tau
}

func (e *tdvpEngine) Converged() bool {
	return false
}
