package capture

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"io"
	"os"
)

// ErrNoRecord indicates the replay cursor has no record loaded, either
// because Init was never called or GetNext has exhausted the file.
var ErrNoRecord = errors.New("capture: no record loaded")

// Replay is a strictly-sequential, one-record-at-a-time reader over a
// capture file, mirroring the original implementation's replay surface.
// It never mutates the underlying file or rewinds: audits and test
// harnesses consume it forward-only.
type Replay struct {
	file    *os.File
	gz      *gzip.Reader
	dec     *gob.Decoder
	current *Record
	done    bool
}

// SetFile opens path for sequential replay. Call Init to load the first
// record.
func SetFile(path string) (*Replay, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-provided capture path
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Replay{
		file: f,
		gz:   gz,
		dec:  gob.NewDecoder(gz),
	}, nil
}

// Init loads the first record, readying GetTime/GetAccount/GetUpdate.
func (r *Replay) Init() error {
	return r.GetNext()
}

// GetNext advances the cursor to the next record. After the last record,
// subsequent calls return io.EOF and leave the cursor with no record
// loaded.
func (r *Replay) GetNext() error {
	if r.done {
		return io.EOF
	}
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		r.done = true
		r.current = nil
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return err
	}
	r.current = &rec
	return nil
}

// GetTime returns the currently-loaded record's capture timestamp.
func (r *Replay) GetTime() (int64, error) {
	if r.current == nil {
		return 0, ErrNoRecord
	}
	return r.current.Timestamp, nil
}

// GetAccount returns the currently-loaded record's account key.
func (r *Replay) GetAccount() ([32]byte, error) {
	if r.current == nil {
		return [32]byte{}, ErrNoRecord
	}
	return r.current.Key, nil
}

// GetUpdate returns the currently-loaded record's decoded price account.
func (r *Replay) GetUpdate() (Record, error) {
	if r.current == nil {
		return Record{}, ErrNoRecord
	}
	return *r.current, nil
}

// Close releases the underlying file and gzip reader.
func (r *Replay) Close() error {
	if err := r.gz.Close(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}
