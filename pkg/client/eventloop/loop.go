// Package eventloop ties the rpcclient, bootstrap controller, scheduler,
// and local server together on one goroutine: a cooperative multiplexer
// that polls each source, drains ready events, and advances time-driven
// housekeeping, per §4.5 and §5's single-threaded cooperative model.
package eventloop

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper is implemented by localserver.Server: removes clients flagged
// for deletion at the poll boundary.
type Sweeper interface {
	Sweep()
}

// CycleRunner is implemented by scheduler.Scheduler: issues one round of
// publishes.
type CycleRunner interface {
	RunCycle()
}

// Reconnector is implemented by rpcclient.Client: dials again if no
// session is live and enough time has passed since the last attempt.
type Reconnector interface {
	MaybeReconnect(ctx context.Context)
}

// Loop is the daemon's cooperative event loop.
type Loop struct {
	logger      zerolog.Logger
	reconnector Reconnector
	scheduler   CycleRunner
	sweeper     Sweeper
	slotPeriod  time.Duration
}

// New constructs a Loop. slotPeriod is the interval at which Run calls
// Poll, and so paces how often a scheduler cycle and client sweep run;
// Poll itself applies no timeout.
func New(reconnector Reconnector, scheduler CycleRunner, sweeper Sweeper, slotPeriod time.Duration, logger zerolog.Logger) *Loop {
	return &Loop{
		logger:      logger.With().Str("component", "eventloop").Logger(),
		reconnector: reconnector,
		scheduler:   scheduler,
		sweeper:     sweeper,
		slotPeriod:  slotPeriod,
	}
}

// Run implements app.Service: it loops, calling Poll(true) with a bounded
// timeout, until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.slotPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Poll(ctx, true)
		}
	}
}

// Poll drains one round of housekeeping: reconnect if due, run one
// scheduler cycle, and sweep clients marked for deletion. wait is
// retained in the signature to mirror the source's poll(wait) contract;
// this cooperative implementation has no separate non-blocking path since
// every step here is already non-blocking.
func (l *Loop) Poll(ctx context.Context, wait bool) {
	_ = wait
	l.reconnector.MaybeReconnect(ctx)
	l.scheduler.RunCycle()
	if l.sweeper != nil {
		l.sweeper.Sweep()
	}
}
