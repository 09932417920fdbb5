// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package tebd

import (
	"context"
	"fmt"

	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
)

// Stage is one leg of an imaginary time cooling schedule: Steps applications
// of exp(-Dt H).
type Stage struct {
	Dt    float64
	Steps int
}

// DefaultSchedule cools coarsely first and refines afterwards. The final
// accuracy is set by the smallest step size.
func DefaultSchedule() []Stage {
	return []Stage{
		{Dt: 0.1, Steps: 100},
		{Dt: 0.01, Steps: 100},
		{Dt: 0.001, Steps: 100},
	}
}

// GroundStateSearch projects psi towards the ground state of m by imaginary
// time evolution, running the stages of the schedule in order. It returns
// the energy after the last stage: total for finite chains, per site for
// infinite chains.
func GroundStateSearch(ctx context.Context, m model.Model, psi *mps.MPS, schedule []Stage, opts Options) (float64, error) {
	if len(schedule) == 0 {
		return 0, fmt.Errorf("cooling schedule is empty")
	}
	var energy float64
	for _, stage := range schedule {
		if stage.Dt <= 0 {
			return 0, fmt.Errorf("cooling step size must be positive, got %g", stage.Dt)
		}
		if stage.Steps <= 0 {
			return 0, fmt.Errorf("cooling stage needs a positive step count, got %d", stage.Steps)
		}
		engine, err := New(m, psi, complex(stage.Dt, 0), opts)
		if err != nil {
			return 0, err
		}
		if err := engine.Run(ctx, stage.Steps); err != nil {
			return 0, fmt.Errorf("cooling with dt %g failed: %w", stage.Dt, err)
		}
		if psi.Boundary() == mps.Finite {
			energy = model.Energy(m, psi)
		} else {
			energy = model.EnergyPerSite(m, psi)
		}
		opts.Logger.Info().
			Float64("dt", stage.Dt).
			Int("steps", stage.Steps).
			Float64("energy", energy).
			Msg("cooling stage done")
	}
	return energy, nil
}
