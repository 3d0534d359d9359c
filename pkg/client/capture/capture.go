// Package capture provides an optional write-through sink of account
// updates to a compressed append-only file, and a strictly-sequential
// reader over the same format.
package capture

import (
	"compress/gzip"
	"encoding/gob"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/priceoracle/oracle/pkg/metrics"
	"github.com/priceoracle/oracle/pkg/program"
)

// Record is one captured account observation: a timestamp, the account's
// public key, and its raw decoded contents at that moment.
type Record struct {
	Timestamp int64
	Key       program.PubKey
	Account   program.PriceAccount
}

// Sink appends Records to a gzip-compressed file. Each Write flushes the
// gzip frame so a crash mid-run still leaves prior records readable.
type Sink struct {
	logger zerolog.Logger

	mu      sync.Mutex
	file    *os.File
	gz      *gzip.Writer
	enc     *gob.Encoder
}

// Open creates (or truncates) path and returns a Sink ready to accept
// Records.
func Open(path string, logger zerolog.Logger) (*Sink, error) {
	f, err := os.Create(path) // #nosec G304 -- operator-provided capture path
	if err != nil {
		return nil, err
	}
	gz := gzip.NewWriter(f)
	return &Sink{
		logger: logger.With().Str("component", "capture").Logger(),
		file:   f,
		gz:     gz,
		enc:    gob.NewEncoder(gz),
	}, nil
}

// Write appends one Record and flushes the underlying gzip stream.
func (s *Sink) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(&rec); err != nil {
		return err
	}
	if err := s.gz.Flush(); err != nil {
		return err
	}
	metrics.RecordCaptureEvent("account_update")
	return nil
}

// Close flushes and closes the underlying gzip stream and file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gz.Close(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
