// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package mps

import (
	"fmt"
	"math"
	"testing"

	"github.com/latticeworks/tenet/tensor"
)

// To run the benchmarks in this package use:
//
//  go test ./mps -run='^$' -bench=.

var schmidtSink []float64

func Benchmark_SplitTruncateTheta(b *testing.B) {
	for _, chi := range []int{8, 16, 32, 64} {
		b.Run(fmt.Sprintf("chi=%d", chi), func(b *testing.B) {
			theta := benchTheta(chi)
			trunc := Truncation{ChiMax: chi, Eps: 1e-12}
			for i := 0; i < b.N; i++ {
				_, s, _, _, err := SplitTruncateTheta(theta, trunc)
				if err != nil {
					b.Fatalf("failed to split: %v", err)
				}
				schmidtSink = s
			}
		})
	}
}

func benchTheta(chi int) *tensor.Dense {
	theta := tensor.New(chi, 2, 2, chi)
	data := theta.Data()
	for i := range data {
		data[i] = complex(math.Sin(float64(i+1)), math.Cos(float64(2*i+1)))
	}
	return theta.Scale(complex(1/theta.Norm(), 0))
}
