package localserver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls []string
	err   error
}

func (f *fakeSubmitter) SubmitUpdate(symbol string, priceType uint32, price int64, conf uint64, status uint32) error {
	f.calls = append(f.calls, symbol)
	return f.err
}

func TestDelUserMarksClientWithoutRemovingIt(t *testing.T) {
	s := New(":0", &fakeSubmitter{}, nil, zerolog.Nop())
	c := newPublisherClient(nil)
	s.register(c)

	s.DelUser(c.ID)

	require.Len(t, s.Clients(), 1)
	assert.True(t, c.isPendingDeletion())
}

func TestSweepRemovesOnlyPendingClients(t *testing.T) {
	s := New(":0", &fakeSubmitter{}, nil, zerolog.Nop())
	keep := newPublisherClient(nil)
	drop := newPublisherClient(nil)
	s.register(keep)
	s.register(drop)

	s.DelUser(drop.ID)
	s.Sweep()

	clients := s.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, keep.ID, clients[0].ID)
}

func TestDelUserOnUnknownIDIsNoop(t *testing.T) {
	s := New(":0", &fakeSubmitter{}, nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		s.DelUser(uuid.New())
	})
}
