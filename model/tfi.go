// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package model

import (
	"fmt"

	"github.com/latticeworks/tenet/mps"
	"github.com/latticeworks/tenet/tensor"
)

// TFIChain is the transverse field Ising chain
//
//	H = -J * sum_i sigmax_i sigmax_{i+1} - g * sum_i sigmaz_i
//
// with ferromagnetic coupling J and transverse field g. At g = J the model
// sits at its quantum critical point.
type TFIChain struct {
	l     int
	j, g  float64
	bc    mps.BoundaryCondition
	bonds []*tensor.Dense
	w     *tensor.Dense
}

// NewTFIChain creates a transverse field Ising chain over l sites.
func NewTFIChain(l int, j, g float64, bc mps.BoundaryCondition) (*TFIChain, error) {
	if err := validateChainLength(l, bc); err != nil {
		return nil, err
	}
	m := &TFIChain{l: l, j: j, g: g, bc: bc}
	m.bonds = make([]*tensor.Dense, numBonds(l, bc))
	for i := range m.bonds {
		gL, gR := bondWeights(i, l, bc)
		h := tensor.Kron(SigmaX(), SigmaX()).Scale(complex(-j, 0))
		h.Add(tensor.Kron(SigmaZ(), Identity()).Scale(complex(-g*gL, 0)))
		h.Add(tensor.Kron(Identity(), SigmaZ()).Scale(complex(-g*gR, 0)))
		m.bonds[i] = h.Reshape(2, 2, 2, 2)
	}

	// The MPO is site independent: rows reach the accepting state 2 either
	// directly through the field term or via one hop through the coupling.
	w := tensor.New(3, 3, 2, 2)
	setMPOBlock(w, 0, 0, Identity())
	setMPOBlock(w, 2, 2, Identity())
	setMPOBlock(w, 0, 1, SigmaX())
	setMPOBlock(w, 0, 2, SigmaZ().Scale(complex(-g, 0)))
	setMPOBlock(w, 1, 2, SigmaX().Scale(complex(-j, 0)))
	m.w = w
	return m, nil
}

func (m *TFIChain) Len() int                        { return m.l }
func (m *TFIChain) PhysDim() int                    { return 2 }
func (m *TFIChain) Boundary() mps.BoundaryCondition { return m.bc }
func (m *TFIChain) NumBonds() int                   { return len(m.bonds) }
func (m *TFIChain) BondOperator(i int) *tensor.Dense { return m.bonds[i] }
func (m *TFIChain) MPO(int) *tensor.Dense           { return m.w }
func (m *TFIChain) MPOBondDim() int                 { return 3 }

func (m *TFIChain) String() string {
	return fmt.Sprintf("tfi[L=%d J=%g g=%g %s]", m.l, m.j, m.g, m.bc)
}

func validateChainLength(l int, bc mps.BoundaryCondition) error {
	min := 1
	if bc == mps.Finite {
		min = 2
	}
	if l < min {
		return fmt.Errorf("a %s chain needs at least %d sites, got %d", bc, min, l)
	}
	return nil
}

// setMPOBlock writes a 2x2 operator into the (wL, wR) block of an MPO
// tensor.
func setMPOBlock(w *tensor.Dense, wl, wr int, op *tensor.Dense) {
	for p := 0; p < op.Dim(0); p++ {
		for q := 0; q < op.Dim(1); q++ {
			w.Set(op.At(p, q), wl, wr, p, q)
		}
	}
}
