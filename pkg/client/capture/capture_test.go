package capture

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceoracle/oracle/pkg/program"
)

func tempCapturePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "capture.gz")
}

func TestSinkWriteThenReplayRoundTrip(t *testing.T) {
	path := tempCapturePath(t)

	sink, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	var key program.PubKey
	key[0] = 0x42

	rec := Record{Timestamp: 1000, Key: key}
	rec.Account.Agg.Price = 555
	require.NoError(t, sink.Write(rec))
	require.NoError(t, sink.Close())

	replay, err := SetFile(path)
	require.NoError(t, err)
	defer replay.Close()

	require.NoError(t, replay.Init())

	ts, err := replay.GetTime()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ts)

	gotKey, err := replay.GetAccount()
	require.NoError(t, err)
	assert.Equal(t, [32]byte(key), gotKey)

	update, err := replay.GetUpdate()
	require.NoError(t, err)
	assert.Equal(t, int64(555), update.Account.Agg.Price)

	assert.Equal(t, io.EOF, replay.GetNext())
}

func TestReplayBeforeInitReturnsNoRecord(t *testing.T) {
	path := tempCapturePath(t)
	sink, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, sink.Write(Record{Timestamp: 1}))
	require.NoError(t, sink.Close())

	replay, err := SetFile(path)
	require.NoError(t, err)
	defer replay.Close()

	_, err = replay.GetTime()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestSinkAppendsMultipleRecordsSequentially(t *testing.T) {
	path := tempCapturePath(t)
	sink, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	for i := int64(0); i < 3; i++ {
		require.NoError(t, sink.Write(Record{Timestamp: i}))
	}
	require.NoError(t, sink.Close())

	replay, err := SetFile(path)
	require.NoError(t, err)
	defer replay.Close()

	var seen []int64
	for err := replay.Init(); err == nil; err = replay.GetNext() {
		ts, terr := replay.GetTime()
		require.NoError(t, terr)
		seen = append(seen, ts)
	}
	assert.Equal(t, []int64{0, 1, 2}, seen)
}

func TestSetFileMissingPathErrors(t *testing.T) {
	_, err := SetFile(filepath.Join(t.TempDir(), "missing.gz"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
