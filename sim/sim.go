// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package sim turns the simulation engines of this module into configurable
// runs. It resolves engines from a registry of named configurations, loads
// and validates YAML run descriptions, drives the step loop with scheduled
// measurements and snapshots, and records results in a SQLite database
// through an asynchronous writer.
package sim

import (
	"context"
	"fmt"

	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
)

// Parameters bundle the inputs an engine factory needs.
type Parameters struct {
	// Model is the Hamiltonian to simulate.
	Model model.Model
	// State is the state the engine mutates in place.
	State *mps.MPS
	// Dt is the step generator argument: each step applies exp(-Dt H).
	// A purely imaginary Dt = i tau advances real time by tau, a real Dt
	// cools in imaginary time. Ground state searches ignore it.
	Dt complex128
	// Truncation bounds bond growth where the algorithm truncates.
	Truncation mps.Truncation
	// Tolerance is the convergence threshold of ground state searches on the
	// energy change per sweep. Integrators ignore it.
	Tolerance float64
}

// Engine is one simulation algorithm bound to a model and a state. A step is
// one time step for integrators and one full sweep for ground state
// searches. Engines mutate the state they were created with and are not safe
// for concurrent use.
type Engine interface {
	// Step advances the simulation by one unit of work.
	Step(ctx context.Context) error
	// State returns the state the engine mutates.
	State() *mps.MPS
	// Elapsed returns the simulated time covered since construction.
	// Ground state searches stay at zero.
	Elapsed() float64
	// Converged reports whether further steps are not expected to improve
	// the result. Integrators never report convergence.
	Converged() bool
}

// EngineFactory builds an engine from its parameters.
type EngineFactory func(params Parameters) (Engine, error)

// New resolves the registered factory for the given configuration and builds
// an engine from the parameters. It reports UnsupportedConfiguration for
// unknown configurations.
func New(config Configuration, params Parameters) (Engine, error) {
	factory, found := lookupFactory(config)
	if !found {
		return nil, fmt.Errorf("%w: %s", UnsupportedConfiguration, config)
	}
	return factory(params)
}
