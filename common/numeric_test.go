// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp_LimitsValuesToTheInterval(t *testing.T) {
	tests := map[string]struct {
		value float64
		want  float64
	}{
		"below":      {value: -0.5, want: 0},
		"inside":     {value: 0.25, want: 0.25},
		"above":      {value: 1.5, want: 1},
		"lower edge": {value: 0, want: 0},
		"upper edge": {value: 1, want: 1},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, test.want, Clamp(test.value, 0, 1))
		})
	}
}

func TestClamp_WorksForIntegers(t *testing.T) {
	require := require.New(t)
	require.Equal(3, Clamp(7, 1, 3))
	require.Equal(1, Clamp(-2, 1, 3))
}

func TestSumSquares_AddsSquaredEntries(t *testing.T) {
	require := require.New(t)

	require.Equal(0.0, SumSquares[float64](nil))
	require.Equal(25.0, SumSquares([]float64{3, 4}))
	require.InDelta(1.0, SumSquares([]float64{0.6, 0.8}), 1e-15)
}
