// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package result

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_Ok_CarriesValue(t *testing.T) {
	result := Ok(1.25)
	value, err := result.Get()
	require.NoError(t, err)
	require.Equal(t, 1.25, value)
}

func TestResult_Err_CarriesError(t *testing.T) {
	issue := fmt.Errorf("sweep diverged")
	result := Err[float64](issue)
	value, err := result.Get()
	require.ErrorIs(t, err, issue)
	require.Zero(t, value)
}
