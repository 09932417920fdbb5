// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/latticeworks/tenet/exact"
	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseConfiguration_SplitsAlgorithmAndVariant(t *testing.T) {
	tests := map[string]Configuration{
		"dmrg2":     {Algorithm: "dmrg", Variant: "2"},
		"tebd1-seq": {Algorithm: "tebd", Variant: "1-seq"},
		"tdvp1":     {Algorithm: "tdvp", Variant: "1"},
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			config, err := ParseConfiguration(name)
			require.NoError(err)
			require.Equal(want, config)
			require.Equal(name, config.String())
		})
	}
}

func TestParseConfiguration_RejectsMalformedNames(t *testing.T) {
	for _, name := range []string{"", "dmrg", "2dmrg", "DMRG2"} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfiguration(name)
			require.ErrorContains(t, err, "invalid engine name")
		})
	}
}

func TestGetAllRegisteredConfigurations_ListsBuiltInEngines(t *testing.T) {
	want := []Configuration{
		{Algorithm: "dmrg", Variant: "2"},
		{Algorithm: "tdvp", Variant: "1"},
		{Algorithm: "tdvp", Variant: "2"},
		{Algorithm: "tebd", Variant: "1"},
		{Algorithm: "tebd", Variant: "1-seq"},
		{Algorithm: "tebd", Variant: "2"},
		{Algorithm: "tebd", Variant: "2-seq"},
	}
	require.Equal(t, want, GetAllRegisteredConfigurations())
}

func TestRegisterEngineFactory_RejectsDuplicates(t *testing.T) {
	require.Panics(t, func() {
		RegisterEngineFactory(Configuration{Algorithm: "dmrg", Variant: "2"}, newDMRGEngine)
	})
}

func testParams(t *testing.T, dt complex128) Parameters {
	t.Helper()
	m, err := model.NewTFIChain(4, 1, 1.5, mps.Finite)
	require.NoError(t, err)
	psi, err := mps.NewFerromagnet(4, mps.Finite)
	require.NoError(t, err)
	return Parameters{
		Model:      m,
		State:      psi,
		Dt:         dt,
		Truncation: mps.Truncation{ChiMax: 16, Eps: 1e-12},
		Tolerance:  1e-8,
	}
}

func TestNew_BuildsEveryRegisteredConfiguration(t *testing.T) {
	for _, config := range GetAllRegisteredConfigurations() {
		t.Run(config.String(), func(t *testing.T) {
			require := require.New(t)
			engine, err := New(config, testParams(t, complex(0.05, 0)))
			require.NoError(err)
			require.NotNil(engine.State())
			require.Equal(4, engine.State().Len())
			require.Zero(engine.Elapsed())
			require.False(engine.Converged())
		})
	}
}

func TestNew_RejectsUnknownConfiguration(t *testing.T) {
	require := require.New(t)
	_, err := New(Configuration{Algorithm: "xxl", Variant: "9"}, testParams(t, 0.05))
	require.ErrorIs(err, UnsupportedConfiguration)
	require.ErrorContains(err, "xxl9")
}

func TestEngine_GroundStateSearchConvergesToExactEnergy(t *testing.T) {
	require := require.New(t)
	params := testParams(t, 0)
	engine, err := New(Configuration{Algorithm: "dmrg", Variant: "2"}, params)
	require.NoError(err)

	ctx := context.Background()
	for i := 0; i < 30 && !engine.Converged(); i++ {
		require.NoError(engine.Step(ctx))
	}
	require.True(engine.Converged())
	require.Zero(engine.Elapsed())

	want, _, err := exact.FiniteGroundState(params.Model)
	require.NoError(err)
	require.InDelta(want, model.Energy(params.Model, engine.State()), 1e-6)
}

func TestEngine_EvolutionAdaptersTrackElapsedTime(t *testing.T) {
	configs := map[string]Configuration{
		"tebd1":     {Algorithm: "tebd", Variant: "1"},
		"tebd2-seq": {Algorithm: "tebd", Variant: "2-seq"},
		"tdvp1":     {Algorithm: "tdvp", Variant: "1"},
		"tdvp2":     {Algorithm: "tdvp", Variant: "2"},
	}
	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			engine, err := New(config, testParams(t, complex(0, 0.1)))
			require.NoError(err)

			ctx := context.Background()
			for i := 0; i < 3; i++ {
				require.NoError(engine.Step(ctx))
				require.False(engine.Converged())
			}
			require.InDelta(0.3, engine.Elapsed(), 1e-12)
			for _, s := range engine.State().SiteExpectations(model.SigmaZ()) {
				require.InDelta(0, s, 1+1e-9)
			}
		})
	}
}
