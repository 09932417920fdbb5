// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

package tebd

import (
	"context"
	"testing"

	"github.com/latticeworks/tenet/model"
	"github.com/latticeworks/tenet/mps"
)

// To run the benchmarks in this package use:
//
//  go test ./tebd -run='^$' -bench=.

func Benchmark_Step(b *testing.B) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			m, err := model.NewTFIChain(16, 1, 1.2, mps.Finite)
			if err != nil {
				b.Fatalf("failed to build model: %v", err)
			}
			psi, err := mps.NewFerromagnet(16, mps.Finite)
			if err != nil {
				b.Fatalf("failed to build state: %v", err)
			}
			engine, err := New(m, psi, complex(0.05, 0), Options{
				Truncation: mps.Truncation{ChiMax: 32, Eps: 1e-12},
				Parallel:   parallel,
			})
			if err != nil {
				b.Fatalf("failed to create engine: %v", err)
			}
			ctx := context.Background()
			for i := 0; i < b.N; i++ {
				if err := engine.Step(ctx); err != nil {
					b.Fatalf("step failed: %v", err)
				}
			}
		})
	}
}
