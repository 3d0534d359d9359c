// Package scheduler issues one upd_price (or agg_price) instruction per
// registered price account per slot, round-robin, with no retained
// backpressure: a missed cycle is simply lost.
package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/priceoracle/oracle/pkg/metrics"
)

// Quote is the new value a publisher wants submitted for one entry; a nil
// Quote means "no new value, consider agg_price instead".
type Quote struct {
	Price      int64
	Confidence uint64
	Status     uint32
}

// QuoteSource supplies the most recent quote for a price account key, if
// any, and reports whether an agg_price (aggregate-only, no write) should
// be sent instead when no new quote is available.
type QuoteSource interface {
	Quote(key [32]byte) *Quote
}

// Publisher submits one instruction for a single price account entry;
// satisfied by the daemon's transaction-building + rpcclient.SendTransaction
// path, kept opaque here since signing is an external collaborator.
type Publisher interface {
	PublishUpdate(key [32]byte, q Quote) error
	PublishAggregateOnly(key [32]byte) error
}

// entry is one price_sched slot: a non-owning back-reference to a
// registry.Price, looked up fresh on every publish so the scheduler never
// duplicates registry ownership.
type entry struct {
	key [32]byte
}

// Scheduler maintains the round-robin price_sched vector and rotating
// cursor kidx_.
type Scheduler struct {
	logger    zerolog.Logger
	entries   []entry
	byKey     map[[32]byte]bool
	kidx      int
	source    QuoteSource
	publisher Publisher
}

// New constructs an empty Scheduler.
func New(source QuoteSource, publisher Publisher, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		logger:    logger.With().Str("component", "scheduler").Logger(),
		byKey:     make(map[[32]byte]bool),
		source:    source,
		publisher: publisher,
	}
}

// Register adds a newly-discovered price account to the rotation, a
// no-op if it is already registered.
func (s *Scheduler) Register(key [32]byte) {
	if s.byKey[key] {
		return
	}
	s.byKey[key] = true
	s.entries = append(s.entries, entry{key: key})
}

// Len reports how many entries are in rotation.
func (s *Scheduler) Len() int { return len(s.entries) }

// RunCycle issues one publish per entry, advancing kidx_ round-robin so
// that across a full cycle every entry gets exactly one publish
// opportunity. Errors from individual entries are logged and do not halt
// the cycle; per §4.8, a missed cycle is simply lost.
func (s *Scheduler) RunCycle() {
	n := len(s.entries)
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		e := s.entries[s.kidx]
		s.kidx = (s.kidx + 1) % n

		if q := s.source.Quote(e.key); q != nil {
			if err := s.publisher.PublishUpdate(e.key, *q); err != nil {
				s.logger.Warn().Err(err).Msg("upd_price publish failed")
				metrics.RecordPublisherQuoteRejection("publish_failed")
				continue
			}
			metrics.RecordPublisherQuote(registryKeyLabel(e.key), "")
			continue
		}

		if err := s.publisher.PublishAggregateOnly(e.key); err != nil {
			s.logger.Debug().Err(err).Msg("agg_price publish skipped")
		}
	}
}

func registryKeyLabel(key [32]byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 0; i < 4; i++ {
		out[i*2] = hexDigits[key[i]>>4]
		out[i*2+1] = hexDigits[key[i]&0xf]
	}
	return string(out)
}
