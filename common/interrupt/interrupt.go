// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package interrupt links OS termination signals to context cancellation so
// that long-running sweeps can stop at the next safe point instead of being
// killed mid-write.
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// CancelOnInterrupt returns a context that is canceled when the process
// receives SIGINT or SIGTERM, or when the parent context is canceled.
func CancelOnInterrupt(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
