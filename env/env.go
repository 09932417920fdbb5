// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package env maintains the boundary environments of an MPS-MPO sandwich and
// derives the effective Hamiltonians that sweeping algorithms diagonalize or
// integrate on one or two sites at a time.
//
// The left environment of site i contracts bra, operator, and ket over all
// sites left of i into a tensor with legs (b, w, k), where b faces the bra,
// w the operator chain, and k the ket. The right environment of site i
// contracts everything right of i into legs (k, w, b). Environments are
// updated incrementally as a sweep moves through the chain, one site tensor
// at a time.
package env

import (
	"fmt"

	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
)

// Environment holds the left and right boundary environments of every site
// of a chain under a fixed model.
type Environment struct {
	m   model.Model
	lps []*tensor.Dense
	rps []*tensor.Dense
}

// New creates the environments of a state under a model. For finite chains
// all right environments are precomputed from the state, so a sweep can
// start at the left end immediately; the left environments begin at the
// boundary and grow as the sweep proceeds. For infinite chains only the two
// boundary environments are initialized, ready for the growth pattern of
// infinite algorithms.
func New(m model.Model, psi *mps.MPS) (*Environment, error) {
	if psi.Len() != m.Len() || psi.Boundary() != m.Boundary() {
		return nil, fmt.Errorf("state of %d %s sites does not match model of %d %s sites",
			psi.Len(), psi.Boundary(), m.Len(), m.Boundary())
	}
	l := m.Len()
	e := &Environment{
		m:   m,
		lps: make([]*tensor.Dense, l),
		rps: make([]*tensor.Dense, l),
	}
	e.lps[0] = BoundaryLP(psi.B(0).Dim(0), m.MPOBondDim())
	e.rps[l-1] = BoundaryRP(psi.B(l-1).Dim(2), m.MPOBondDim())
	if m.Boundary() == mps.Finite {
		for i := l - 1; i >= 1; i-- {
			e.UpdateRP(psi, i)
		}
	}
	return e, nil
}

// BoundaryLP returns the trivial left environment: bra and ket legs joined
// by an identity, with the operator chain in its starting state.
func BoundaryLP(chi, dw int) *tensor.Dense {
	lp := tensor.New(chi, dw, chi)
	for a := 0; a < chi; a++ {
		lp.Set(1, a, 0, a)
	}
	return lp
}

// BoundaryRP returns the trivial right environment with the operator chain
// in its accepting state.
func BoundaryRP(chi, dw int) *tensor.Dense {
	rp := tensor.New(chi, dw, chi)
	for a := 0; a < chi; a++ {
		rp.Set(1, a, dw-1, a)
	}
	return rp
}

// LP returns the left environment of site i.
func (e *Environment) LP(i int) *tensor.Dense {
	return e.lps[i]
}

// RP returns the right environment of site i.
func (e *Environment) RP(i int) *tensor.Dense {
	return e.rps[i]
}

// SetLP overwrites the left environment of site i. Infinite algorithms use
// this to install grown environments.
func (e *Environment) SetLP(i int, lp *tensor.Dense) {
	e.lps[i] = lp
}

// SetRP overwrites the right environment of site i.
func (e *Environment) SetRP(i int, rp *tensor.Dense) {
	e.rps[i] = rp
}

// UpdateLP recomputes the left environment of the site right of i by
// absorbing site i of the state, using the left-canonical form
// diag(S_i) B_i diag(S_j)^-1 of the site tensor.
func (e *Environment) UpdateLP(psi *mps.MPS, i int) {
	l := e.m.Len()
	j := (i + 1) % l
	a := tensor.MulDiagRight(tensor.MulDiagLeft(psi.S(i), psi.B(i)), mps.InvertSchmidt(psi.S(j)))
	t1 := tensor.Contract(e.lps[i], a, []int{2}, []int{0})            // b w p vR
	t2 := tensor.Contract(t1, e.m.MPO(i), []int{1, 2}, []int{0, 3})   // b vR wR p
	t3 := tensor.Contract(t2, a.Conj(), []int{0, 3}, []int{0, 1})     // vR wR vR*
	e.lps[j] = t3.Transpose(2, 1, 0)
}

// UpdateRP recomputes the right environment of the site left of i by
// absorbing the right-canonical site tensor B_i.
func (e *Environment) UpdateRP(psi *mps.MPS, i int) {
	l := e.m.Len()
	j := (i - 1 + l) % l
	b := psi.B(i)
	t1 := tensor.Contract(b, e.rps[i], []int{2}, []int{0})            // vL p w b
	t2 := tensor.Contract(t1, e.m.MPO(i), []int{2, 1}, []int{1, 3})   // vL b wL p
	t3 := tensor.Contract(t2, b.Conj(), []int{1, 3}, []int{2, 1})     // vL wL vL*
	e.rps[j] = t3
}
