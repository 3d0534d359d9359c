package rpcclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	connects    int
	disconnects int
	lastErr     error
}

func (r *recordingObserver) OnConnect()             { r.connects++ }
func (r *recordingObserver) OnDisconnect(err error) { r.disconnects++; r.lastErr = err }

func TestSubmitWithoutConnectionReturnsTransportError(t *testing.T) {
	c := New("http://localhost", "ws://localhost", time.Second, nil, zerolog.Nop())

	err := c.Submit(MethodGetAccountInfo, nil, func(json.RawMessage, error) {})
	require.Error(t, err)

	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, ErrKindTransport, rpcErr.Kind)
}

func TestDisconnectFlushesPendingWithDisconnectedError(t *testing.T) {
	c := New("http://localhost", "ws://localhost", time.Second, &recordingObserver{}, zerolog.Nop())

	var gotErr error
	req := newRequest(c.allocID(), MethodGetAccountInfo, func(_ json.RawMessage, err error) {
		gotErr = err
	})
	el := c.pending.PushBack(req)
	c.pendingByID[req.ID] = el

	c.disconnect(assert.AnError)

	require.Error(t, gotErr)
	var rpcErr *Error
	require.ErrorAs(t, gotErr, &rpcErr)
	assert.Equal(t, ErrKindTransport, rpcErr.Kind)
	assert.Equal(t, 0, c.PendingCount())
}

func TestDisconnectNotifiesObserverAndClearsSubs(t *testing.T) {
	obs := &recordingObserver{}
	c := New("http://localhost", "ws://localhost", time.Second, obs, zerolog.Nop())
	c.subs[1] = &subscription{id: 1, kind: SubKindSlot}

	c.disconnect(assert.AnError)

	assert.Equal(t, 1, obs.disconnects)
	assert.Empty(t, c.subs)
}

func TestMaybeReconnectRespectsCtimeout(t *testing.T) {
	c := New("http://localhost", "ws://invalid", 50*time.Millisecond, nil, zerolog.Nop())
	c.lastReconnect = time.Now()

	c.MaybeReconnect(nil) //nolint:staticcheck // ctx unused on the fast path

	assert.WithinDuration(t, time.Now(), c.lastReconnect, 10*time.Millisecond)
}
