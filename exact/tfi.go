// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package exact

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// InfiniteTFIEnergy returns the exact ground state energy per site of the
// infinite transverse field Ising chain with coupling j and field g,
//
//	e0 = -1/(2 pi) * integral dk sqrt(j^2 + g^2 - 2 j g cos k)
//
// over the Brillouin zone. At the critical point j = g the value is -4/pi.
func InfiniteTFIEnergy(j, g float64) float64 {
	dispersion := func(k float64) float64 {
		return math.Sqrt(j*j + g*g - 2*j*g*math.Cos(k))
	}
	return -quad.Fixed(dispersion, -math.Pi, math.Pi, 1000, nil, 0) / (2 * math.Pi)
}
