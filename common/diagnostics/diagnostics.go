// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package diagnostics wires optional runtime diagnostics (pprof server, CPU
// profile, execution trace) into CLI commands.
package diagnostics

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/latticeworks/tenet/common/logging"
)

// WrapAction extends a CLI action with performance diagnostics controlled by
// the given flags: diagnosticsFlag carries a port for a pprof HTTP server,
// cpuProfileFlag and traceFlag carry output file names for a CPU profile and
// an execution trace. Empty or zero flag values disable the respective
// feature.
func WrapAction(action cli.ActionFunc, diagnosticsFlag *cli.IntFlag, cpuProfileFlag, traceFlag *cli.StringFlag) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		port := ctx.Int(diagnosticsFlag.Names()[0])
		startDiagnosticServer(port)

		cpuProfileFile := strings.TrimSpace(ctx.String(cpuProfileFlag.Names()[0]))
		if cpuProfileFile != "" {
			if err := startCPUProfiler(cpuProfileFile); err != nil {
				return err
			}
			defer pprof.StopCPUProfile()
		}

		traceFile := strings.TrimSpace(ctx.String(traceFlag.Names()[0]))
		if traceFile != "" {
			if err := startTracer(traceFile); err != nil {
				return err
			}
			defer trace.Stop()
		}

		return action(ctx)
	}
}

func startDiagnosticServer(port int) {
	if port <= 0 || port >= (1<<16) {
		return
	}
	log := logging.WithComponent("diagnostics")
	log.Info().Int("port", port).Msg("starting pprof server, block and mutex sampling set to 100%")
	go func() {
		addr := fmt.Sprintf("localhost:%d", port)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error().Err(err).Msg("diagnostic server stopped")
		}
	}()
	runtime.SetBlockProfileRate(1)
	runtime.SetMutexProfileFraction(1)
}

func startCPUProfiler(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("failed to start CPU profiling: %w", err)
	}
	return nil
}

func startTracer(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	if err := trace.Start(f); err != nil {
		return fmt.Errorf("failed to start tracing: %w", err)
	}
	return nil
}
