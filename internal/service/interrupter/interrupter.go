// Package interrupter provides an app.Service that blocks until the
// process receives SIGINT or SIGTERM, used to let the actor group shut
// down the rest of the daemon's services on Ctrl-C.
package interrupter

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ErrInterrupted is returned when a termination signal was received.
var ErrInterrupted = fmt.Errorf("got interrupt signal")

// Interrupter is an app.Service that watches for OS termination signals.
type Interrupter struct{}

// Run blocks until SIGINT, SIGTERM, or context cancellation.
func (i Interrupter) Run(ctx context.Context) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		return fmt.Errorf("%w: %s", ErrInterrupted, sig.String())
	case <-ctx.Done():
		return fmt.Errorf("interrupter: %w", ctx.Err())
	}
}
