// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package env

import (
	"github.com/latticeworks/tenet/tensor"
)

// TwoSite is the effective Hamiltonian on two neighboring sites between a
// left and a right environment. It acts on vectors shaped like the two-site
// wave function (vL, i, j, vR) and implements the operator interface of the
// Lanczos routines.
type TwoSite struct {
	lp, wi, wj, rp     *tensor.Dense
	chiL, di, dj, chiR int
}

// NewTwoSite builds the effective Hamiltonian from the left environment of
// the left site, the MPO tensors of both sites, and the right environment
// of the right site.
func NewTwoSite(lp, wi, wj, rp *tensor.Dense) *TwoSite {
	return &TwoSite{
		lp: lp, wi: wi, wj: wj, rp: rp,
		chiL: lp.Dim(2), di: wi.Dim(2), dj: wj.Dim(2), chiR: rp.Dim(0),
	}
}

func (h *TwoSite) Dim() int {
	return h.chiL * h.di * h.dj * h.chiR
}

func (h *TwoSite) Apply(dst, src []complex128) {
	theta := tensor.FromData(src, h.chiL, h.di, h.dj, h.chiR)
	x := tensor.Contract(h.lp, theta, []int{2}, []int{0})  // b w i j vR
	x = tensor.Contract(x, h.wi, []int{1, 2}, []int{0, 3}) // b j vR wR i
	x = tensor.Contract(x, h.wj, []int{3, 1}, []int{0, 3}) // b vR i wR j
	x = tensor.Contract(x, h.rp, []int{1, 3}, []int{0, 1}) // vL i j vR
	copy(dst, x.Data())
}

// OneSite is the effective Hamiltonian on a single site between a left and
// a right environment, acting on vectors shaped (vL, p, vR).
type OneSite struct {
	lp, w, rp     *tensor.Dense
	chiL, d, chiR int
}

// NewOneSite builds the effective Hamiltonian from the environments
// enclosing a single site and its MPO tensor.
func NewOneSite(lp, w, rp *tensor.Dense) *OneSite {
	return &OneSite{
		lp: lp, w: w, rp: rp,
		chiL: lp.Dim(2), d: w.Dim(2), chiR: rp.Dim(0),
	}
}

func (h *OneSite) Dim() int {
	return h.chiL * h.d * h.chiR
}

func (h *OneSite) Apply(dst, src []complex128) {
	theta := tensor.FromData(src, h.chiL, h.d, h.chiR)
	x := tensor.Contract(h.lp, theta, []int{2}, []int{0}) // b w p vR
	x = tensor.Contract(x, h.w, []int{1, 2}, []int{0, 3}) // b vR wR p
	x = tensor.Contract(x, h.rp, []int{1, 2}, []int{0, 1}) // vL p vR
	copy(dst, x.Data())
}

// ZeroSite is the effective Hamiltonian on a bond with no site in between,
// acting on the center matrix (vL, vR) that connects two canonical halves.
// For the bond between sites i and i+1 it encloses the left environment of
// site i+1 and the right environment of site i.
type ZeroSite struct {
	lp, rp     *tensor.Dense
	chiL, chiR int
}

// NewZeroSite builds the effective Hamiltonian of a bare bond.
func NewZeroSite(lp, rp *tensor.Dense) *ZeroSite {
	return &ZeroSite{lp: lp, rp: rp, chiL: lp.Dim(2), chiR: rp.Dim(0)}
}

func (h *ZeroSite) Dim() int {
	return h.chiL * h.chiR
}

func (h *ZeroSite) Apply(dst, src []complex128) {
	c := tensor.FromData(src, h.chiL, h.chiR)
	x := tensor.Contract(h.lp, c, []int{2}, []int{0})     // b w vR
	x = tensor.Contract(x, h.rp, []int{2, 1}, []int{0, 1}) // vL vR
	copy(dst, x.Data())
}
