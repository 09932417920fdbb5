// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package mps

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/latticeworks/tenet/tensor"
	"github.com/latticeworks/tenet/tensor/linalg"
)

// ErrBondDimensionTooLarge indicates a state whose transfer matrix is too
// large for a dense spectrum computation.
var ErrBondDimensionTooLarge = errors.New("bond dimension too large for transfer matrix spectrum")

// maxTransferChi bounds the dense transfer matrix eigenvalue computation in
// CorrelationLength to chi^2 x chi^2 systems of at most 1024 x 1024.
const maxTransferChi = 32

// CorrelationFunction evaluates the two-point correlator
// <psi| opI_i opJ_j |psi> for sites i < j. For infinite chains j may exceed
// the unit cell length and then refers to the periodic continuation of the
// chain; for finite chains both sites must lie within the chain.
func (m *MPS) CorrelationFunction(opI *tensor.Dense, i int, opJ *tensor.Dense, j int) (complex128, error) {
	if i < 0 || j <= i {
		return 0, fmt.Errorf("correlation function needs 0 <= i < j, got i=%d j=%d", i, j)
	}
	if m.bc == Finite && j >= len(m.bs) {
		return 0, fmt.Errorf("site %d outside the finite chain of length %d", j, len(m.bs))
	}
	l := len(m.bs)

	theta := m.Theta1(i % l)                                  // vL p vR
	c := tensor.Contract(opI, theta, []int{1}, []int{1})      // p vL vR
	c = tensor.Contract(theta.Conj(), c, []int{0, 1}, []int{1, 0}) // vR* vR
	for k := i + 1; k < j; k++ {
		b := m.bs[k%l]
		c = tensor.Contract(c, b, []int{1}, []int{0})                // vR* p vR
		c = tensor.Contract(b.Conj(), c, []int{0, 1}, []int{0, 1})   // vR* vR
	}
	b := m.bs[j%l]
	c = tensor.Contract(c, b, []int{1}, []int{0})       // vR* p vR
	c = tensor.Contract(opJ, c, []int{1}, []int{1})     // p vR* vR
	value := tensor.Contract(b.Conj(), c, []int{0, 1, 2}, []int{1, 0, 2})
	return value.At(), nil
}

// CorrelationLength extracts the asymptotic decay length of correlations
// from the second largest transfer matrix eigenvalue of an infinite chain,
// in units of sites. It returns +Inf for states whose correlations do not
// decay on any resolvable scale.
func (m *MPS) CorrelationLength() (float64, error) {
	if m.bc != Infinite {
		return 0, fmt.Errorf("correlation length is only defined for infinite chains")
	}
	chi := m.bs[0].Dim(0)
	if chi > maxTransferChi {
		return 0, fmt.Errorf("%w: %d > %d", ErrBondDimensionTooLarge, chi, maxTransferChi)
	}
	if chi == 1 {
		// A product state has no correlations to decay.
		return 0, nil
	}

	// Build the unit cell transfer matrix with legs (vL, vL*, vR, vR*).
	b := m.bs[0]
	transfer := tensor.Contract(b, b.Conj(), []int{1}, []int{1}).Transpose(0, 2, 1, 3)
	for i := 1; i < len(m.bs); i++ {
		b = m.bs[i]
		t := tensor.Contract(transfer, b, []int{2}, []int{0})    // vL vL* vR* p vR
		transfer = tensor.Contract(t, b.Conj(), []int{2, 3}, []int{0, 1}) // vL vL* vR vR*
	}
	eta, err := linalg.EigenvaluesGeneral(transfer.Reshape(chi*chi, chi*chi))
	if err != nil {
		return 0, fmt.Errorf("failed to diagonalize transfer matrix: %w", err)
	}
	moduli := make([]float64, len(eta))
	for i, v := range eta {
		moduli[i] = cmplx.Abs(v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(moduli)))

	// Eigenvalues of the real embedding come in duplicated conjugate pairs,
	// so the second distinct level sits at index two.
	leading, second := moduli[0], moduli[2]
	if leading == 0 {
		return 0, fmt.Errorf("transfer matrix has vanishing spectrum")
	}
	ratio := second / leading
	if ratio >= 1 {
		return math.Inf(1), nil
	}
	xi := -float64(len(m.bs)) / math.Log(ratio)
	if xi > 1000 {
		return math.Inf(1), nil
	}
	return xi, nil
}
