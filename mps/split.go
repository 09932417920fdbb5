// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package mps

import (
	"errors"
	"fmt"
	"math"

	"github.com/latticeworks/tenet/common"
	"github.com/latticeworks/tenet/tensor"
	"github.com/latticeworks/tenet/tensor/linalg"
)

// Truncation bounds the bond dimension growth when splitting two-site wave
// functions. ChiMax caps the number of Schmidt values kept per bond; zero or
// negative means unbounded. Eps discards Schmidt values at or below the
// threshold.
type Truncation struct {
	ChiMax int
	Eps    float64
}

// ErrAllTruncated indicates that a split would discard every Schmidt value,
// which leaves no state to keep.
var ErrAllTruncated = errors.New("all schmidt values fall below the truncation threshold")

// SplitTruncateTheta factorizes a two-site wave function theta with legs
// (vL, i, j, vR) into a left isometry A (vL, i, vC), Schmidt values S on the
// new central bond, and a right isometry B (vC, j, vR). Schmidt values are
// truncated according to trunc, the kept values are renormalized to unit
// norm, and the discarded weight, the summed squares of the dropped values
// relative to the total, is returned alongside.
func SplitTruncateTheta(theta *tensor.Dense, trunc Truncation) (a *tensor.Dense, s []float64, b *tensor.Dense, discarded float64, err error) {
	if theta.Rank() != 4 {
		panic(fmt.Sprintf("mps: cannot split tensor of rank %d", theta.Rank()))
	}
	chiL, dL := theta.Dim(0), theta.Dim(1)
	dR, chiR := theta.Dim(2), theta.Dim(3)
	matrix := theta.Reshape(chiL*dL, dR*chiR)
	u, sigma, vh, err := linalg.SVD(matrix)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("failed to factorize two-site wave function: %w", err)
	}

	// Values arrive in descending order, so a prefix survives the cut.
	eps := trunc.Eps
	if eps < 0 {
		eps = 0
	}
	keep := 0
	for _, v := range sigma {
		if v > eps {
			keep++
		}
	}
	if trunc.ChiMax > 0 && keep > trunc.ChiMax {
		keep = trunc.ChiMax
	}
	if keep == 0 {
		return nil, nil, nil, 0, ErrAllTruncated
	}

	total := common.SumSquares(sigma)
	kept := common.SumSquares(sigma[:keep])
	discarded = (total - kept) / total

	norm := math.Sqrt(kept)
	s = make([]float64, keep)
	for i := range s {
		s[i] = sigma[i] / norm
	}

	a = tensor.New(chiL, dL, keep)
	aData := a.Data()
	uData := u.Data()
	full := len(sigma)
	for row := 0; row < chiL*dL; row++ {
		copy(aData[row*keep:(row+1)*keep], uData[row*full:row*full+keep])
	}
	b = tensor.FromData(append([]complex128(nil), vh.Data()[:keep*dR*chiR]...), keep, dR, chiR)
	return a, s, b, discarded, nil
}

// InvertSchmidt returns the elementwise inverse of a Schmidt vector. Values
// surviving truncation are strictly positive, so the inverse is well defined.
func InvertSchmidt(s []float64) []float64 {
	inv := make([]float64, len(s))
	for i, v := range s {
		inv[i] = 1 / v
	}
	return inv
}
